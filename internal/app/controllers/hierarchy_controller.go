package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/app/services"
	"github.com/yigit/examportal/internal/middleware"
	"github.com/yigit/examportal/internal/pkg/helpers"
)

// HierarchyController serves read-only hierarchy listings
type HierarchyController struct {
	hierarchyService services.HierarchyService
}

// NewHierarchyController creates a new HierarchyController
func NewHierarchyController(hierarchyService services.HierarchyService) *HierarchyController {
	return &HierarchyController{
		hierarchyService: hierarchyService,
	}
}

// bindFilter reads the optional parent filters from the query string
func bindFilter(ctx *gin.Context) (dto.HierarchyFilter, bool) {
	var filter dto.HierarchyFilter
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid filter")
		errorDetail = errorDetail.WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return filter, false
	}
	return filter, true
}

// GetColleges lists all colleges
// @Summary List colleges
// @Tags hierarchy
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.College}
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /colleges [get]
func (c *HierarchyController) GetColleges(ctx *gin.Context) {
	colleges, err := c.hierarchyService.ListColleges(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(colleges))
}

// GetCollegeTree returns a college with everything below it
// @Summary Get college tree
// @Tags hierarchy
// @Produce json
// @Param id path string true "College ID"
// @Success 200 {object} dto.APIResponse{data=dto.CollegeTree}
// @Failure 404 {object} dto.ErrorResponse "College not found"
// @Router /colleges/{id} [get]
func (c *HierarchyController) GetCollegeTree(ctx *gin.Context) {
	tree, err := c.hierarchyService.GetCollegeTree(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(tree))
}

// GetDepartments lists departments
// @Summary List departments
// @Tags hierarchy
// @Produce json
// @Param collegeId query string false "College ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Department}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /departments [get]
func (c *HierarchyController) GetDepartments(ctx *gin.Context) {
	filter, ok := bindFilter(ctx)
	if !ok {
		return
	}
	departments, err := c.hierarchyService.ListDepartments(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(departments))
}

// GetPrograms lists programs
// @Summary List programs
// @Tags hierarchy
// @Produce json
// @Param departmentId query string false "Department ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Program}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /programs [get]
func (c *HierarchyController) GetPrograms(ctx *gin.Context) {
	filter, ok := bindFilter(ctx)
	if !ok {
		return
	}
	programs, err := c.hierarchyService.ListPrograms(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(programs))
}

// GetLevels lists levels
// @Summary List levels
// @Tags hierarchy
// @Produce json
// @Param programId query string false "Program ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Level}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /levels [get]
func (c *HierarchyController) GetLevels(ctx *gin.Context) {
	filter, ok := bindFilter(ctx)
	if !ok {
		return
	}
	levels, err := c.hierarchyService.ListLevels(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(levels))
}

// GetCourses lists courses
// @Summary List courses
// @Tags hierarchy
// @Produce json
// @Param programId query string false "Program ID"
// @Param levelId query string false "Level ID"
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse{items=[]models.Course}}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /courses [get]
func (c *HierarchyController) GetCourses(ctx *gin.Context) {
	filter, ok := bindFilter(ctx)
	if !ok {
		return
	}
	courses, err := c.hierarchyService.ListCourses(ctx.Request.Context(), filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	page, size := helpers.ParsePaginationParams(ctx)
	items, pagination := helpers.Paginate(courses, page, size)
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.PagedResponse{Items: items, Pagination: pagination}))
}

// GetCounts returns record counts per collection
// @Summary Hierarchy counts
// @Tags hierarchy
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HierarchyCounts}
// @Router /hierarchy/counts [get]
func (c *HierarchyController) GetCounts(ctx *gin.Context) {
	counts, err := c.hierarchyService.Counts(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(counts))
}
