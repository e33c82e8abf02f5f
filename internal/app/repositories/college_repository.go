package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/pkg/apperrors"
	"github.com/yigit/examportal/internal/pkg/logger"
)

// ErrCollegeNotFound is returned when a college is not found.
var ErrCollegeNotFound = apperrors.NewResourceNotFoundError("college not found")

var collegeColumns = []string{"id", "name", "code"}

// CollegeRepository handles college database operations
type CollegeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCollegeRepository creates a new CollegeRepository
func NewCollegeRepository(db *pgxpool.Pool) *CollegeRepository {
	return &CollegeRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID retrieves a college by ID
func (r *CollegeRepository) GetByID(ctx context.Context, id string) (*models.College, error) {
	sql, args, err := r.sb.Select(collegeColumns...).
		From("colleges").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get college query: %w", err)
	}

	college := &models.College{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&college.ID, &college.Name, &college.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCollegeNotFound
		}
		logger.Error().Err(err).Str("collegeID", id).Msg("Error scanning college row")
		return nil, fmt.Errorf("error getting college by ID: %w", err)
	}

	return college, nil
}

// GetAll retrieves all colleges ordered by name
func (r *CollegeRepository) GetAll(ctx context.Context) ([]*models.College, error) {
	sql, args, err := r.sb.Select(collegeColumns...).
		From("colleges").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all colleges query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all colleges query")
		return nil, fmt.Errorf("error querying colleges: %w", err)
	}
	defer rows.Close()

	colleges := []*models.College{}
	for rows.Next() {
		college := &models.College{}
		if err := rows.Scan(&college.ID, &college.Name, &college.Code); err != nil {
			return nil, fmt.Errorf("error scanning college row: %w", err)
		}
		colleges = append(colleges, college)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating college rows: %w", err)
	}

	return colleges, nil
}

// queueCreate appends an insert for college to batch
func (r *CollegeRepository) queueCreate(batch *pgx.Batch, college *models.College) error {
	sql, args, err := r.sb.Insert("colleges").
		Columns(collegeColumns...).
		Values(college.ID, college.Name, college.Code).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create college query: %w", err)
	}
	batch.Queue(sql, args...)
	return nil
}
