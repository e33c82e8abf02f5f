package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/examportal/internal/app/controllers"
	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/middleware"
	"github.com/yigit/examportal/internal/pkg/auth"
	"github.com/yigit/examportal/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	importController *controllers.ImportController,
	hierarchyController *controllers.HierarchyController,
	authMiddleware *middleware.AuthMiddleware,
	eventHandler *websocket.Handler,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public hierarchy routes ---
	colleges := v1.Group("/colleges")
	{
		colleges.GET("", hierarchyController.GetColleges)
		colleges.GET("/:id", hierarchyController.GetCollegeTree)
	}
	v1.GET("/departments", hierarchyController.GetDepartments)
	v1.GET("/programs", hierarchyController.GetPrograms)
	v1.GET("/levels", hierarchyController.GetLevels)
	v1.GET("/courses", hierarchyController.GetCourses)
	v1.GET("/hierarchy/counts", hierarchyController.GetCounts)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		imports := authenticated.Group("/imports")
		imports.Use(authMiddleware.RoleRequired(auth.RoleAdmin))
		{
			imports.POST("/analyzed",
				middleware.ValidateRequest[dto.SaveAnalyzedDataRequest](),
				importController.SaveAnalyzedData,
			)
			imports.GET("/events", eventHandler.HandleConnection)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewAPIResponse(gin.H{"status": "ok"}))
	})
}
