package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/app/services"
	"github.com/yigit/examportal/internal/middleware"
	"github.com/yigit/examportal/internal/pkg/websocket"
)

// ImportEventPublisher receives one event per finished import
type ImportEventPublisher interface {
	Publish(event *websocket.Event)
}

// ImportController handles analyzed batch imports
type ImportController struct {
	importService services.ImportService
	events        ImportEventPublisher
}

// NewImportController creates a new ImportController. events may be nil.
func NewImportController(importService services.ImportService, events ImportEventPublisher) *ImportController {
	return &ImportController{
		importService: importService,
		events:        events,
	}
}

// SaveAnalyzedData reconciles an analyzed entity batch into the hierarchy
// @Summary Save analyzed hierarchy data
// @Description Resolves colleges, departments, programs, levels and courses against stored records and commits all new records atomically
// @Tags imports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveAnalyzedDataRequest true "Analyzed entities"
// @Success 200 {object} dto.APIResponse{data=dto.ImportResult} "Batch committed"
// @Failure 400 {object} dto.ErrorResponse "Malformed request body"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 403 {object} dto.ErrorResponse "Forbidden - Admin role required"
// @Failure 422 {object} dto.APIResponse{data=dto.ImportResult} "Batch rejected, nothing committed"
// @Router /imports/analyzed [post]
func (c *ImportController) SaveAnalyzedData(ctx *gin.Context) {
	req, ok := middleware.ValidatedBody[dto.SaveAnalyzedDataRequest](ctx)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result := c.importService.SaveAnalyzedData(ctx.Request.Context(), req.Entities)
	c.publish(ctx.GetString(middleware.ContextSubject), result)

	if !result.Success {
		ctx.JSON(http.StatusUnprocessableEntity, dto.APIResponse{
			Success:   false,
			Data:      result,
			Error:     dto.NewErrorDetail(dto.ErrorCodeImportRejected, result.Message),
			Timestamp: time.Now(),
		})
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(result))
}

func (c *ImportController) publish(subject string, result *dto.ImportResult) {
	if c.events == nil {
		return
	}
	event := &websocket.Event{
		Type:    websocket.EventImportCommitted,
		Subject: subject,
		Message: result.Message,
		Created: result.Created,
		Reused:  result.Reused,
	}
	if !result.Success {
		event.Type = websocket.EventImportRejected
	}
	c.events.Publish(event)
}
