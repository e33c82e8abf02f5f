package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/app/services"
	"github.com/yigit/examportal/internal/pkg/apperrors"
)

// DefaultBatch returns the colleges and departments every fresh install starts with
func DefaultBatch() []dto.AnalyzedEntity {
	engineering, science := "seed-eng", "seed-sci"
	return []dto.AnalyzedEntity{
		{ID: engineering, Type: models.EntityCollege, Name: "College of Engineering", Properties: map[string]interface{}{"code": "ENG"}},
		{ID: "seed-ceng", Type: models.EntityDepartment, Name: "Computer Engineering", ParentID: &engineering},
		{ID: "seed-eee", Type: models.EntityDepartment, Name: "Electrical Engineering", ParentID: &engineering},
		{ID: science, Type: models.EntityCollege, Name: "College of Science", Properties: map[string]interface{}{"code": "SCI"}},
		{ID: "seed-phy", Type: models.EntityDepartment, Name: "Physics", ParentID: &science},
		{ID: "seed-chem", Type: models.EntityDepartment, Name: "Chemistry", ParentID: &science},
	}
}

// CreateDefaultData pushes DefaultBatch through the import engine.
// Existing records are reused, so running it on every start is safe.
func CreateDefaultData(ctx context.Context, importService services.ImportService, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (Colleges/Departments)...")

	result := importService.SaveAnalyzedData(ctx, DefaultBatch())
	if !result.Success {
		return fmt.Errorf("%w: %s", apperrors.ErrImportRejected, result.Message)
	}

	lgr.Info().Int("created", result.Created).Int("reused", result.Reused).Msg("Default data ready")
	return nil
}
