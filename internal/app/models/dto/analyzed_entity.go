package dto

import "github.com/yigit/examportal/internal/app/models"

// AnalyzedEntity is one node produced by the document-analysis step.
// ID and ParentID are only meaningful inside a single batch.
type AnalyzedEntity struct {
	ID         string                 `json:"id" validate:"required"`
	Type       models.EntityType      `json:"type" validate:"required,entitytype"`
	Name       string                 `json:"name" validate:"required,notblank"`
	Properties map[string]interface{} `json:"properties"`
	ParentID   *string                `json:"parentId"`
	Confidence float64                `json:"confidence,omitempty"`
	Reasoning  string                 `json:"reasoning,omitempty"`
	Status     string                 `json:"status,omitempty"`
}

// HasParent reports whether the entity names a parent in the batch
func (e AnalyzedEntity) HasParent() bool {
	return e.ParentID != nil && *e.ParentID != ""
}

// SaveAnalyzedDataRequest is the body of the import endpoint
type SaveAnalyzedDataRequest struct {
	Entities []AnalyzedEntity `json:"entities" binding:"required"`
}
