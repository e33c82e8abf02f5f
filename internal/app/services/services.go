package services

import (
	"context"

	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/app/repositories"
)

// Services defined in this package:
// - ImportService: Reconciles analyzed entity batches into the hierarchy
// - HierarchyService: Read-only listings of colleges, departments, programs, levels and courses

// HierarchyStore is the persistence contract shared by the PostgreSQL
// repository and the in-memory store.
type HierarchyStore interface {
	ListColleges(ctx context.Context) ([]*models.College, error)
	GetCollege(ctx context.Context, id string) (*models.College, error)
	ListDepartments(ctx context.Context, collegeID string) ([]*models.Department, error)
	ListPrograms(ctx context.Context, departmentID string) ([]*models.Program, error)
	ListLevels(ctx context.Context, programID string) ([]*models.Level, error)
	ListCourses(ctx context.Context, programID, levelID string) ([]*models.Course, error)
	NewID() string
	Commit(ctx context.Context, batch *repositories.WriteBatch) error
}

// dryRunStore reads through to the wrapped store and discards commits
type dryRunStore struct {
	HierarchyStore
}

// NewDryRunStore wraps store so that Commit never writes
func NewDryRunStore(store HierarchyStore) HierarchyStore {
	return dryRunStore{HierarchyStore: store}
}

func (dryRunStore) Commit(context.Context, *repositories.WriteBatch) error {
	return nil
}
