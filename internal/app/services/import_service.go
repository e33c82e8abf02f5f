package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/pkg/props"
	"github.com/yigit/examportal/internal/pkg/textnorm"
)

const (
	maxCollegeCodeLength = 10
	defaultCreditUnit    = 3
)

// ImportService defines the interface for saving analyzed hierarchy batches
type ImportService interface {
	// SaveAnalyzedData reconciles entities against the store and commits every
	// new record atomically. Failures are reported in the result, never returned.
	SaveAnalyzedData(ctx context.Context, entities []dto.AnalyzedEntity) *dto.ImportResult
}

// importServiceImpl implements the ImportService interface
type importServiceImpl struct {
	store    HierarchyStore
	validate *validator.Validate
	log      zerolog.Logger
	timeout  time.Duration
}

// NewImportService creates a new import service instance.
// A zero timeout leaves the caller's context untouched.
func NewImportService(store HierarchyStore, validate *validator.Validate, log zerolog.Logger, timeout time.Duration) ImportService {
	return &importServiceImpl{
		store:    store,
		validate: validate,
		log:      log.With().Str("component", "import").Logger(),
		timeout:  timeout,
	}
}

func (s *importServiceImpl) SaveAnalyzedData(ctx context.Context, entities []dto.AnalyzedEntity) *dto.ImportResult {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.log.Info().Int("entities", len(entities)).Msg("Import batch received")

	// Schema and id checks run before anything is read
	if problems := s.validateBatch(entities); len(problems) > 0 {
		s.log.Warn().Int("errors", len(problems)).Str("first", problems[0]).Msg("Import batch rejected by validation")
		return rejected(len(problems), problems[0], nil)
	}

	if len(entities) == 0 {
		return succeeded(newReconcileContext(s.store))
	}

	// Load existing records once per type
	rc := newReconcileContext(s.store)
	if err := rc.prefetch(ctx); err != nil {
		return s.unexpected(err, rc)
	}

	// Ancestors first, so every parent is resolved before its children
	groups := groupByType(entities)
	for _, typ := range models.HierarchyOrder {
		if err := ctx.Err(); err != nil {
			return s.unexpected(err, rc)
		}

		group := groups[typ]
		if len(group) == 0 {
			continue
		}
		s.log.Debug().Str("type", string(typ)).Int("count", len(group)).Msg("Reconciling entity group")

		for _, entity := range group {
			itemErr := s.reconcile(rc, entity)
			if itemErr == nil {
				continue
			}
			rc.fail(itemErr)
			s.log.Warn().
				Str("entityID", entity.ID).
				Str("type", string(entity.Type)).
				Str("severity", string(itemErr.severity)).
				Msg(itemErr.reason)
			// Hard failures stop the pass immediately
			if itemErr.severity == dto.SeverityHard {
				return rejected(len(rc.errs), rc.errs[0].reason, rc)
			}
		}
	}

	// Any failure, soft or hard, blocks the commit
	if len(rc.errs) > 0 {
		return rejected(len(rc.errs), rc.errs[0].reason, rc)
	}

	// Single atomic write of everything staged
	if !rc.batch.Empty() {
		if err := s.store.Commit(ctx, rc.batch); err != nil {
			return s.unexpected(err, rc)
		}
	}

	s.log.Info().Int("created", rc.batch.Len()).Int("reused", rc.reused).Msg("Import batch committed")
	return succeeded(rc)
}

// validateBatch checks the schema of every entity and the uniqueness of
// batch-local ids. It returns one message per problem.
func (s *importServiceImpl) validateBatch(entities []dto.AnalyzedEntity) []string {
	var problems []string
	seen := make(map[string]int, len(entities))

	for i, entity := range entities {
		if err := s.validate.Struct(entity); err != nil {
			var fieldErrs validator.ValidationErrors
			if !errors.As(err, &fieldErrs) {
				problems = append(problems, fmt.Sprintf("Entity #%d is invalid: %v", i+1, err))
				continue
			}
			for _, fe := range fieldErrs {
				problems = append(problems, fmt.Sprintf("Entity #%d (%q) has an invalid %s: failed the '%s' rule.", i+1, entity.ID, fe.Field(), fe.Tag()))
			}
			continue
		}

		if first, dup := seen[entity.ID]; dup {
			problems = append(problems, fmt.Sprintf("Entity #%d reuses id %q already used by entity #%d.", i+1, entity.ID, first))
			continue
		}
		seen[entity.ID] = i + 1
	}

	return problems
}

func groupByType(entities []dto.AnalyzedEntity) map[models.EntityType][]dto.AnalyzedEntity {
	groups := make(map[models.EntityType][]dto.AnalyzedEntity, len(models.HierarchyOrder))
	for _, e := range entities {
		groups[e.Type] = append(groups[e.Type], e)
	}
	return groups
}

func (s *importServiceImpl) reconcile(rc *reconcileContext, entity dto.AnalyzedEntity) *itemError {
	switch entity.Type {
	case models.EntityCollege:
		return s.reconcileCollege(rc, entity)
	case models.EntityDepartment:
		return s.reconcileDepartment(rc, entity)
	case models.EntityProgram:
		return s.reconcileProgram(rc, entity)
	case models.EntityLevel:
		return s.reconcileLevel(rc, entity)
	case models.EntityCourse:
		return s.reconcileCourse(rc, entity)
	default:
		return hardError(entity, "Entity %q has unsupported type %q.", entity.Name, entity.Type)
	}
}

func (s *importServiceImpl) reconcileCollege(rc *reconcileContext, entity dto.AnalyzedEntity) *itemError {
	name := textnorm.Upper(entity.Name)

	code := textnorm.CollegeCode(name)
	if explicit := props.String(entity.Properties, "code", ""); explicit != "" {
		code = textnorm.Truncate(textnorm.Upper(explicit), maxCollegeCodeLength)
	}

	college, created := rc.findOrCreateCollege(name, code)
	rc.resolve(entity, college.ID, created)
	return nil
}

func (s *importServiceImpl) reconcileDepartment(rc *reconcileContext, entity dto.AnalyzedEntity) *itemError {
	parentID, parentType, ok := rc.parentOf(entity)
	if !ok || parentType != models.EntityCollege {
		return softError(entity, "Department %q is missing a valid College parent.", entity.Name)
	}

	dept, created := rc.findOrCreateDepartment(parentID, textnorm.Title(entity.Name))
	rc.resolve(entity, dept.ID, created)
	return nil
}

func (s *importServiceImpl) reconcileProgram(rc *reconcileContext, entity dto.AnalyzedEntity) *itemError {
	name := textnorm.Title(entity.Name)

	departmentID := s.programDepartment(rc, entity, name)

	maxLevel := clamp(props.Int(entity.Properties, "max_level", models.DefaultMaxLevel), models.MinLevel, models.MaxLevel)
	program, created := rc.findOrCreateProgram(departmentID, name, maxLevel)
	rc.resolve(entity, program.ID, created)
	return nil
}

// programDepartment resolves the department a program belongs to,
// fabricating the department and, if needed, the college above it.
func (s *importServiceImpl) programDepartment(rc *reconcileContext, entity dto.AnalyzedEntity, programName string) string {
	parentID, parentType, ok := rc.parentOf(entity)
	if ok && parentType == models.EntityDepartment {
		return parentID
	}

	// No usable parent at all: fabricate the college too
	collegeID := parentID
	if !ok || parentType != models.EntityCollege {
		collegeName := "COLLEGE OF " + programName
		college, created := rc.findOrCreateCollege(collegeName, textnorm.CollegeCode(collegeName))
		if created {
			rc.recordFabricated(models.EntityCollege, college.Name, college.ID, entity)
		}
		collegeID = college.ID
	}

	dept, created := rc.findOrCreateDepartment(collegeID, "Department of "+programName)
	if created {
		rc.recordFabricated(models.EntityDepartment, dept.Name, dept.ID, entity)
	}
	s.log.Debug().Str("entityID", entity.ID).Str("departmentID", dept.ID).Bool("created", created).Msg("Program attached to default department")
	return dept.ID
}

func (s *importServiceImpl) reconcileLevel(rc *reconcileContext, entity dto.AnalyzedEntity) *itemError {
	parentID, parentType, ok := rc.parentOf(entity)
	if !ok || parentType != models.EntityProgram {
		return hardError(entity, "Level %q is missing a valid Program parent.", entity.Name)
	}

	number := textnorm.LevelNumber(entity.Name, models.MaxLevel)
	students := props.Int(entity.Properties, "students_count", 0)
	if students < 0 {
		students = 0
	}

	level, created := rc.findOrCreateLevel(parentID, number, students)
	rc.resolve(entity, level.ID, created)
	return nil
}

func (s *importServiceImpl) reconcileCourse(rc *reconcileContext, entity dto.AnalyzedEntity) *itemError {
	parentID, parentType, ok := rc.parentOf(entity)
	if !ok || parentType != models.EntityLevel {
		return hardError(entity, "Course %q is missing a valid Level parent.", entity.Name)
	}
	level, ok := rc.levelsByID[parentID]
	if !ok {
		return hardError(entity, "Course %q references a Level that could not be loaded.", entity.Name)
	}

	// Normalize the free-form properties
	creditUnit := props.Int(entity.Properties, "credit_unit", defaultCreditUnit)
	if creditUnit < 0 {
		creditUnit = defaultCreditUnit
	}

	// Program is copied from the level
	course, created := rc.findOrCreateCourse(models.Course{
		LevelID:    level.ID,
		ProgramID:  level.ProgramID,
		CourseCode: textnorm.Upper(props.String(entity.Properties, "course_code", textnorm.CodeNotAvailable)),
		CourseName: textnorm.Title(props.String(entity.Properties, "course_name", entity.Name)),
		CreditUnit: creditUnit,
		ExamType:   examType(props.String(entity.Properties, "exam_type", "")),
	})
	rc.resolve(entity, course.ID, created)
	return nil
}

func examType(raw string) models.ExamType {
	if textnorm.Key(raw) == strings.ToLower(string(models.ExamTypeCBT)) {
		return models.ExamTypeCBT
	}
	return models.ExamTypeWritten
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *importServiceImpl) unexpected(err error, rc *reconcileContext) *dto.ImportResult {
	s.log.Error().Err(err).Int("staged", rc.batch.Len()).Msg("Import batch failed")
	return &dto.ImportResult{
		Success:  false,
		Message:  fmt.Sprintf("An unexpected error occurred: %v", err),
		Outcomes: rc.outcomes,
	}
}

func rejected(count int, first string, rc *reconcileContext) *dto.ImportResult {
	result := &dto.ImportResult{
		Success: false,
		Message: fmt.Sprintf("Found %d error(s). First error: %s", count, first),
	}
	if rc != nil {
		result.Outcomes = rc.outcomes
	}
	return result
}

func succeeded(rc *reconcileContext) *dto.ImportResult {
	created := rc.batch.Len()
	return &dto.ImportResult{
		Success:    true,
		Message:    fmt.Sprintf("Successfully created %d new records.", created),
		Created:    created,
		Reused:     rc.reused,
		Outcomes:   rc.outcomes,
		Fabricated: rc.fabricated,
	}
}
