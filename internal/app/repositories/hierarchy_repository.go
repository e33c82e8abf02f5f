package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/db"
	"github.com/yigit/examportal/internal/pkg/dberrors"
	"github.com/yigit/examportal/internal/pkg/logger"
)

// HierarchyRepository exposes the academic hierarchy tables as one store.
// Reads go through the per-table repositories; Commit applies a WriteBatch
// in a single transaction.
type HierarchyRepository struct {
	db          *db.PostgresDB
	colleges    *CollegeRepository
	departments *DepartmentRepository
	programs    *ProgramRepository
	levels      *LevelRepository
	courses     *CourseRepository
}

// NewHierarchyRepository creates a HierarchyRepository on top of database
func NewHierarchyRepository(database *db.PostgresDB) *HierarchyRepository {
	return &HierarchyRepository{
		db:          database,
		colleges:    NewCollegeRepository(database.Pool),
		departments: NewDepartmentRepository(database.Pool),
		programs:    NewProgramRepository(database.Pool),
		levels:      NewLevelRepository(database.Pool),
		courses:     NewCourseRepository(database.Pool),
	}
}

// NewID returns a fresh identifier for a record that has not been written yet
func (r *HierarchyRepository) NewID() string {
	return uuid.NewString()
}

// ListColleges returns every college
func (r *HierarchyRepository) ListColleges(ctx context.Context) ([]*models.College, error) {
	return r.colleges.GetAll(ctx)
}

// GetCollege returns one college or ErrCollegeNotFound
func (r *HierarchyRepository) GetCollege(ctx context.Context, id string) (*models.College, error) {
	return r.colleges.GetByID(ctx, id)
}

// ListDepartments returns departments, all of them when collegeID is empty
func (r *HierarchyRepository) ListDepartments(ctx context.Context, collegeID string) ([]*models.Department, error) {
	return r.departments.GetAll(ctx, collegeID)
}

// ListPrograms returns programs, all of them when departmentID is empty
func (r *HierarchyRepository) ListPrograms(ctx context.Context, departmentID string) ([]*models.Program, error) {
	return r.programs.GetAll(ctx, departmentID)
}

// ListLevels returns levels, all of them when programID is empty
func (r *HierarchyRepository) ListLevels(ctx context.Context, programID string) ([]*models.Level, error) {
	return r.levels.GetAll(ctx, programID)
}

// ListCourses returns courses matching the non-empty filters
func (r *HierarchyRepository) ListCourses(ctx context.Context, programID, levelID string) ([]*models.Course, error) {
	return r.courses.GetAll(ctx, programID, levelID)
}

// Commit writes every staged record or none of them
func (r *HierarchyRepository) Commit(ctx context.Context, batch *WriteBatch) error {
	if batch.Empty() {
		return nil
	}

	queued := &pgx.Batch{}
	if err := r.queue(queued, batch); err != nil {
		return err
	}

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		results := tx.SendBatch(ctx, queued)
		for i := 0; i < queued.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("staged write %d of %d failed: %w", i+1, queued.Len(), err)
			}
		}
		return results.Close()
	})
	if err != nil {
		logger.Error().Err(err).Int("records", batch.Len()).Msg("Hierarchy batch commit failed")
		return dberrors.Classify(err)
	}

	return nil
}

// queue translates the staged records into SQL, parents first
func (r *HierarchyRepository) queue(queued *pgx.Batch, batch *WriteBatch) error {
	for _, c := range batch.Colleges {
		if err := r.colleges.queueCreate(queued, c); err != nil {
			return err
		}
	}
	for _, d := range batch.Departments {
		if err := r.departments.queueCreate(queued, d); err != nil {
			return err
		}
	}
	for _, p := range batch.Programs {
		if err := r.programs.queueCreate(queued, p); err != nil {
			return err
		}
	}
	for _, l := range batch.Levels {
		if err := r.levels.queueCreate(queued, l); err != nil {
			return err
		}
	}
	for _, c := range batch.Courses {
		if err := r.courses.queueCreate(queued, c); err != nil {
			return err
		}
	}
	return nil
}
