package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/examportal/internal/app/models"
)

var levelColumns = []string{"id", "program_id", "level", "students_count"}

// LevelRepository handles database operations for program levels
type LevelRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewLevelRepository creates a new level repository
func NewLevelRepository(db *pgxpool.Pool) *LevelRepository {
	return &LevelRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetAll retrieves levels, optionally limited to one program
func (r *LevelRepository) GetAll(ctx context.Context, programID string) ([]*models.Level, error) {
	query := r.sb.Select(levelColumns...).From("levels").OrderBy("program_id ASC", "level ASC")
	if programID != "" {
		query = query.Where(squirrel.Eq{"program_id": programID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get levels query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying levels: %w", err)
	}
	defer rows.Close()

	levels := []*models.Level{}
	for rows.Next() {
		var level models.Level
		if err := rows.Scan(&level.ID, &level.ProgramID, &level.Level, &level.StudentsCount); err != nil {
			return nil, fmt.Errorf("error scanning level row: %w", err)
		}
		levels = append(levels, &level)
	}

	return levels, rows.Err()
}

func (r *LevelRepository) queueCreate(batch *pgx.Batch, level *models.Level) error {
	sql, args, err := r.sb.Insert("levels").
		Columns(levelColumns...).
		Values(level.ID, level.ProgramID, level.Level, level.StudentsCount).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create level query: %w", err)
	}
	batch.Queue(sql, args...)
	return nil
}
