package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/examportal/internal/app/models"
)

var courseColumns = []string{"id", "level_id", "program_id", "course_code", "course_name", "credit_unit", "exam_type"}

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetAll retrieves courses filtered by program and/or level
func (r *CourseRepository) GetAll(ctx context.Context, programID, levelID string) ([]*models.Course, error) {
	where := squirrel.Eq{}
	if programID != "" {
		where["program_id"] = programID
	}
	if levelID != "" {
		where["level_id"] = levelID
	}

	query := r.sb.Select(courseColumns...).From("courses").OrderBy("course_code ASC")
	if len(where) > 0 {
		query = query.Where(where)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID,
			&course.LevelID,
			&course.ProgramID,
			&course.CourseCode,
			&course.CourseName,
			&course.CreditUnit,
			&course.ExamType,
		); err != nil {
			return nil, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, &course)
	}

	return courses, rows.Err()
}

func (r *CourseRepository) queueCreate(batch *pgx.Batch, course *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns(courseColumns...).
		Values(
			course.ID,
			course.LevelID,
			course.ProgramID,
			course.CourseCode,
			course.CourseName,
			course.CreditUnit,
			string(course.ExamType),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create course query: %w", err)
	}
	batch.Queue(sql, args...)
	return nil
}
