package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/examportal/internal/app/models"
)

var programColumns = []string{"id", "department_id", "name", "max_level"}

// ProgramRepository handles database operations for programs
type ProgramRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewProgramRepository creates a new program repository
func NewProgramRepository(db *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetAll retrieves programs, optionally limited to one department
func (r *ProgramRepository) GetAll(ctx context.Context, departmentID string) ([]*models.Program, error) {
	query := r.sb.Select(programColumns...).From("programs").OrderBy("name ASC")
	if departmentID != "" {
		query = query.Where(squirrel.Eq{"department_id": departmentID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get programs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying programs: %w", err)
	}
	defer rows.Close()

	programs := []*models.Program{}
	for rows.Next() {
		var program models.Program
		if err := rows.Scan(&program.ID, &program.DepartmentID, &program.Name, &program.MaxLevel); err != nil {
			return nil, fmt.Errorf("error scanning program row: %w", err)
		}
		programs = append(programs, &program)
	}

	return programs, rows.Err()
}

func (r *ProgramRepository) queueCreate(batch *pgx.Batch, program *models.Program) error {
	sql, args, err := r.sb.Insert("programs").
		Columns(programColumns...).
		Values(program.ID, program.DepartmentID, program.Name, program.MaxLevel).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create program query: %w", err)
	}
	batch.Queue(sql, args...)
	return nil
}
