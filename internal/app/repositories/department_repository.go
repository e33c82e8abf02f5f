package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/examportal/internal/app/models"
)

var departmentColumns = []string{"id", "college_id", "name"}

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetAll retrieves departments, optionally limited to one college
func (r *DepartmentRepository) GetAll(ctx context.Context, collegeID string) ([]*models.Department, error) {
	query := r.sb.Select(departmentColumns...).From("departments").OrderBy("name ASC")
	if collegeID != "" {
		query = query.Where(squirrel.Eq{"college_id": collegeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get departments query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying departments: %w", err)
	}
	defer rows.Close()

	departments := []*models.Department{}
	for rows.Next() {
		var department models.Department
		if err := rows.Scan(&department.ID, &department.CollegeID, &department.Name); err != nil {
			return nil, err
		}
		departments = append(departments, &department)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return departments, nil
}

func (r *DepartmentRepository) queueCreate(batch *pgx.Batch, department *models.Department) error {
	sql, args, err := r.sb.Insert("departments").
		Columns(departmentColumns...).
		Values(department.ID, department.CollegeID, department.Name).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create department query: %w", err)
	}
	batch.Queue(sql, args...)
	return nil
}
