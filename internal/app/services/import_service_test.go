package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/app/repositories"
	"github.com/yigit/examportal/internal/app/repositories/memory"
	"github.com/yigit/examportal/internal/pkg/logger"
	"github.com/yigit/examportal/internal/pkg/validation"
)

func newImportService(store HierarchyStore) ImportService {
	return NewImportService(store, validation.New(), logger.Nop(), 0)
}

func entity(id string, typ models.EntityType, name, parent string, properties map[string]interface{}) dto.AnalyzedEntity {
	e := dto.AnalyzedEntity{ID: id, Type: typ, Name: name, Properties: properties}
	if parent != "" {
		e.ParentID = &parent
	}
	return e
}

func scienceBatch() []dto.AnalyzedEntity {
	return []dto.AnalyzedEntity{
		entity("a", models.EntityCollege, "College of Science", "", map[string]interface{}{}),
		entity("b", models.EntityDepartment, "Computer Science", "a", map[string]interface{}{}),
		entity("c", models.EntityProgram, "B.Sc CS", "b", map[string]interface{}{"max_level": 4}),
		entity("d", models.EntityLevel, "100 Level", "c", map[string]interface{}{"students_count": 120}),
		entity("e", models.EntityCourse, "Intro to CS", "d", map[string]interface{}{"course_code": "CSC101", "credit_unit": 3}),
	}
}

func outcomeFor(t *testing.T, result *dto.ImportResult, entityID string) dto.EntityOutcome {
	t.Helper()
	for _, o := range result.Outcomes {
		if o.EntityID == entityID {
			return o
		}
	}
	t.Fatalf("no outcome for entity %q", entityID)
	return dto.EntityOutcome{}
}

func TestSaveAnalyzedData_FullHierarchy(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(context.Background(), scienceBatch())

	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Successfully created 5 new records.", result.Message)
	assert.Equal(t, 5, result.Created)
	assert.Zero(t, result.Reused)

	snap := store.Snapshot()
	require.Len(t, snap.Colleges, 1)
	require.Len(t, snap.Departments, 1)
	require.Len(t, snap.Programs, 1)
	require.Len(t, snap.Levels, 1)
	require.Len(t, snap.Courses, 1)

	college, dept, program, level, course := snap.Colleges[0], snap.Departments[0], snap.Programs[0], snap.Levels[0], snap.Courses[0]

	assert.Equal(t, "COLLEGE OF SCIENCE", college.Name)
	assert.Equal(t, "S", college.Code)
	assert.Equal(t, "Computer Science", dept.Name)
	assert.Equal(t, college.ID, dept.CollegeID)
	assert.Equal(t, "B.sc Cs", program.Name)
	assert.Equal(t, dept.ID, program.DepartmentID)
	assert.Equal(t, 4, program.MaxLevel)
	assert.Equal(t, 1, level.Level)
	assert.Equal(t, 120, level.StudentsCount)
	assert.Equal(t, program.ID, level.ProgramID)

	assert.Equal(t, level.ID, course.LevelID)
	assert.Equal(t, program.ID, course.ProgramID)
	assert.Equal(t, "CSC101", course.CourseCode)
	assert.Equal(t, "Intro To Cs", course.CourseName)
	assert.Equal(t, 3, course.CreditUnit)
	assert.Equal(t, models.ExamTypeWritten, course.ExamType)

	assert.Equal(t, program.ID, outcomeFor(t, result, "c").PersistentID)
	assert.Equal(t, dto.OutcomeCreated, outcomeFor(t, result, "e").Status)
	assert.Empty(t, result.Fabricated)
}

func TestSaveAnalyzedData_CollegeResolutionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newImportService(store)

	first := svc.SaveAnalyzedData(ctx, []dto.AnalyzedEntity{
		entity("x", models.EntityCollege, "COLLEGE OF SCIENCE", "", nil),
	})
	require.True(t, first.Success, first.Message)

	second := svc.SaveAnalyzedData(ctx, []dto.AnalyzedEntity{
		entity("y", models.EntityCollege, "  college of   science ", "", nil),
	})
	require.True(t, second.Success, second.Message)
	assert.Equal(t, "Successfully created 0 new records.", second.Message)
	assert.Equal(t, 1, second.Reused)

	assert.Len(t, store.Snapshot().Colleges, 1)
	assert.Equal(t, outcomeFor(t, first, "x").PersistentID, outcomeFor(t, second, "y").PersistentID)
}

func TestSaveAnalyzedData_NameVariantsResolveToOneCollege(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(context.Background(), []dto.AnalyzedEntity{
		entity("1", models.EntityCollege, "COLLEGE OF SCIENCE", "", nil),
		entity("2", models.EntityCollege, "  college of   science ", "", nil),
		entity("3", models.EntityCollege, "College Of Science", "", nil),
	})

	require.True(t, result.Success, result.Message)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.Reused)
	assert.Len(t, store.Snapshot().Colleges, 1)

	id := outcomeFor(t, result, "1").PersistentID
	assert.Equal(t, id, outcomeFor(t, result, "2").PersistentID)
	assert.Equal(t, id, outcomeFor(t, result, "3").PersistentID)
}

func TestSaveAnalyzedData_OrphanProgramFabricatesAncestors(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(context.Background(), []dto.AnalyzedEntity{
		entity("p", models.EntityProgram, "computer science", "", nil),
	})

	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Successfully created 3 new records.", result.Message)

	snap := store.Snapshot()
	require.Len(t, snap.Colleges, 1)
	require.Len(t, snap.Departments, 1)
	require.Len(t, snap.Programs, 1)

	assert.Equal(t, "COLLEGE OF Computer Science", snap.Colleges[0].Name)
	assert.Equal(t, "CS", snap.Colleges[0].Code)
	assert.Equal(t, "Department of Computer Science", snap.Departments[0].Name)
	assert.Equal(t, snap.Colleges[0].ID, snap.Departments[0].CollegeID)
	assert.Equal(t, snap.Departments[0].ID, snap.Programs[0].DepartmentID)
	assert.Equal(t, models.DefaultMaxLevel, snap.Programs[0].MaxLevel)

	require.Len(t, result.Fabricated, 2)
	assert.Equal(t, models.EntityCollege, result.Fabricated[0].Type)
	assert.Equal(t, models.EntityDepartment, result.Fabricated[1].Type)
	assert.Equal(t, "p", result.Fabricated[1].ForEntityID)
}

func TestSaveAnalyzedData_ProgramUnderCollegeGetsDefaultDepartment(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(context.Background(), []dto.AnalyzedEntity{
		entity("c", models.EntityCollege, "College of Engineering", "", nil),
		entity("p", models.EntityProgram, "Civil Engineering", "c", nil),
	})

	require.True(t, result.Success, result.Message)
	assert.Equal(t, 3, result.Created)

	snap := store.Snapshot()
	require.Len(t, snap.Colleges, 1)
	require.Len(t, snap.Departments, 1)
	assert.Equal(t, "Department of Civil Engineering", snap.Departments[0].Name)
	assert.Equal(t, outcomeFor(t, result, "c").PersistentID, snap.Departments[0].CollegeID)
	require.Len(t, result.Fabricated, 1)
	assert.Equal(t, models.EntityDepartment, result.Fabricated[0].Type)
}

func TestSaveAnalyzedData_FabricationReusesExistingAncestors(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	college := &models.College{ID: store.NewID(), Name: "COLLEGE OF COMPUTER SCIENCE", Code: "CS"}
	dept := &models.Department{ID: store.NewID(), CollegeID: college.ID, Name: "Department Of Computer Science"}
	seed := repositories.NewWriteBatch()
	seed.CreateCollege(college)
	seed.CreateDepartment(dept)
	require.NoError(t, store.Commit(ctx, seed))

	result := newImportService(store).SaveAnalyzedData(ctx, []dto.AnalyzedEntity{
		entity("p", models.EntityProgram, "Computer Science", "", nil),
	})

	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Successfully created 1 new records.", result.Message)
	assert.Empty(t, result.Fabricated)

	snap := store.Snapshot()
	assert.Len(t, snap.Colleges, 1)
	assert.Len(t, snap.Departments, 1)
	require.Len(t, snap.Programs, 1)
	assert.Equal(t, dept.ID, snap.Programs[0].DepartmentID)
}

func TestSaveAnalyzedData_HardFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newImportService(store)
	require.True(t, svc.SaveAnalyzedData(ctx, scienceBatch()).Success)
	before := store.Snapshot()

	result := svc.SaveAnalyzedData(ctx, []dto.AnalyzedEntity{
		entity("a", models.EntityCollege, "College of Arts", "", nil),
		entity("l", models.EntityLevel, "200 Level", "ghost", nil),
		entity("x", models.EntityCourse, "Orphan Course", "nowhere", nil),
	})

	assert.False(t, result.Success)
	assert.Equal(t, `Found 1 error(s). First error: Level "200 Level" is missing a valid Program parent.`, result.Message)
	assert.Equal(t, before, store.Snapshot())

	failed := outcomeFor(t, result, "l")
	assert.Equal(t, dto.OutcomeFailed, failed.Status)
	assert.Equal(t, dto.SeverityHard, failed.Severity)
	for _, o := range result.Outcomes {
		assert.NotEqual(t, "x", o.EntityID, "courses must not be processed after a hard failure")
	}
}

func TestSaveAnalyzedData_HardFailureOnWrongParentType(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(context.Background(), []dto.AnalyzedEntity{
		entity("a", models.EntityCollege, "College of Science", "", nil),
		entity("b", models.EntityDepartment, "Physics", "a", nil),
		entity("c", models.EntityCourse, "Mechanics", "b", nil),
	})

	assert.False(t, result.Success)
	assert.Equal(t, `Found 1 error(s). First error: Course "Mechanics" is missing a valid Level parent.`, result.Message)
	assert.Zero(t, store.Snapshot().Len())
}

func TestSaveAnalyzedData_SoftFailureBlocksCommit(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(context.Background(), []dto.AnalyzedEntity{
		entity("a", models.EntityCollege, "College of Science", "", nil),
		entity("b", models.EntityDepartment, "Physics", "", nil),
		entity("c", models.EntityDepartment, "Chemistry", "a", nil),
		entity("p", models.EntityProgram, "Applied Chemistry", "c", nil),
	})

	assert.False(t, result.Success)
	assert.Equal(t, `Found 1 error(s). First error: Department "Physics" is missing a valid College parent.`, result.Message)
	assert.Zero(t, store.Snapshot().Len())
	assert.Zero(t, store.Commits())

	soft := outcomeFor(t, result, "b")
	assert.Equal(t, dto.SeveritySoft, soft.Severity)
	// later groups still run after a soft failure
	assert.Equal(t, dto.OutcomeCreated, outcomeFor(t, result, "p").Status)
}

func TestSaveAnalyzedData_ErrorCountIncludesSoftAndHard(t *testing.T) {
	result := newImportService(memory.NewStore()).SaveAnalyzedData(context.Background(), []dto.AnalyzedEntity{
		entity("b", models.EntityDepartment, "Physics", "missing", nil),
		entity("l", models.EntityLevel, "Level 3", "", nil),
	})

	assert.False(t, result.Success)
	assert.Equal(t, `Found 2 error(s). First error: Department "Physics" is missing a valid College parent.`, result.Message)
}

func TestSaveAnalyzedData_CommitFailure(t *testing.T) {
	store := memory.NewStore()
	store.FailNextCommit(errors.New("disk full"))

	result := newImportService(store).SaveAnalyzedData(context.Background(), scienceBatch())

	assert.False(t, result.Success)
	assert.Equal(t, "An unexpected error occurred: disk full", result.Message)
	assert.Zero(t, store.Snapshot().Len())
}

func TestSaveAnalyzedData_DuplicatesWithinBatch(t *testing.T) {
	store := memory.NewStore()
	batch := append(scienceBatch(),
		entity("d2", models.EntityLevel, "Level 1", "c", nil),
		entity("e2", models.EntityCourse, "Intro To CS", "d2", map[string]interface{}{"course_code": "csc101"}),
		entity("n1", models.EntityCourse, "Seminar", "d", nil),
		entity("n2", models.EntityCourse, "Workshop", "d", nil),
	)

	result := newImportService(store).SaveAnalyzedData(context.Background(), batch)

	require.True(t, result.Success, result.Message)
	assert.Equal(t, 7, result.Created)
	assert.Equal(t, 2, result.Reused)

	snap := store.Snapshot()
	assert.Len(t, snap.Levels, 1)
	assert.Len(t, snap.Courses, 3, "two N/A courses are never merged")
	assert.Equal(t, outcomeFor(t, result, "d").PersistentID, outcomeFor(t, result, "d2").PersistentID)
	assert.Equal(t, outcomeFor(t, result, "e").PersistentID, outcomeFor(t, result, "e2").PersistentID)
}

func TestSaveAnalyzedData_AddsCourseToStoredLevel(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newImportService(store)
	require.True(t, svc.SaveAnalyzedData(ctx, scienceBatch()).Success)

	batch := append(scienceBatch(),
		entity("f", models.EntityCourse, "Data Structures", "d", map[string]interface{}{"course_code": "CSC102", "exam_type": "cbt"}),
	)
	result := svc.SaveAnalyzedData(ctx, batch)

	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Successfully created 1 new records.", result.Message)
	assert.Equal(t, 5, result.Reused)

	courses, err := store.ListCourses(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "CSC102", courses[1].CourseCode)
	assert.Equal(t, models.ExamTypeCBT, courses[1].ExamType)
	assert.Equal(t, courses[0].ProgramID, courses[1].ProgramID)
}

func TestSaveAnalyzedData_PropertyNormalization(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(context.Background(), []dto.AnalyzedEntity{
		entity("a", models.EntityCollege, "College of Health Sciences", "", map[string]interface{}{"code": "chs-faculty-2024"}),
		entity("b", models.EntityDepartment, "NURSING", "a", nil),
		entity("c", models.EntityProgram, "nursing science", "b", map[string]interface{}{"max_level": "12"}),
		entity("d", models.EntityLevel, "Level 2", "c", map[string]interface{}{"students_count": -5}),
		entity("e", models.EntityCourse, "anatomy", "d", map[string]interface{}{
			"course_code": " nsc 201 ",
			"credit_unit": "4",
			"exam_type":   "CBT",
		}),
	})

	require.True(t, result.Success, result.Message)
	snap := store.Snapshot()

	assert.Equal(t, "CHS-FACULT", snap.Colleges[0].Code)
	assert.Equal(t, "Nursing", snap.Departments[0].Name)
	assert.Equal(t, "Nursing Science", snap.Programs[0].Name)
	assert.Equal(t, models.MaxLevel, snap.Programs[0].MaxLevel)
	assert.Equal(t, 2, snap.Levels[0].Level)
	assert.Zero(t, snap.Levels[0].StudentsCount)
	assert.Equal(t, "NSC 201", snap.Courses[0].CourseCode)
	assert.Equal(t, "Anatomy", snap.Courses[0].CourseName)
	assert.Equal(t, 4, snap.Courses[0].CreditUnit)
	assert.Equal(t, models.ExamTypeCBT, snap.Courses[0].ExamType)
}

func TestSaveAnalyzedData_LevelNameWithoutDigits(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(context.Background(), []dto.AnalyzedEntity{
		entity("p", models.EntityProgram, "Law", "", nil),
		entity("l", models.EntityLevel, "Foundation Year", "p", nil),
	})

	require.True(t, result.Success, result.Message)
	require.Len(t, store.Snapshot().Levels, 1)
	assert.Equal(t, 1, store.Snapshot().Levels[0].Level)
}

func TestSaveAnalyzedData_ValidationRejectsBatch(t *testing.T) {
	tests := []struct {
		name     string
		entities []dto.AnalyzedEntity
		message  string
	}{
		{
			name: "unknown type",
			entities: []dto.AnalyzedEntity{
				entity("a", "Faculty", "Engineering", "", nil),
			},
			message: `Found 1 error(s). First error: Entity #1 ("a") has an invalid type: failed the 'entitytype' rule.`,
		},
		{
			name: "duplicate ids",
			entities: []dto.AnalyzedEntity{
				entity("a", models.EntityCollege, "College of Science", "", nil),
				entity("a", models.EntityCollege, "College of Arts", "", nil),
			},
			message: `Found 1 error(s). First error: Entity #2 reuses id "a" already used by entity #1.`,
		},
		{
			name: "blank name and missing id",
			entities: []dto.AnalyzedEntity{
				entity("a", models.EntityCollege, "  ", "", nil),
				entity("", models.EntityCollege, "College of Arts", "", nil),
			},
			message: `Found 2 error(s). First error: Entity #1 ("a") has an invalid name: failed the 'notblank' rule.`,
		},
		{
			name: "names without letters or digits",
			entities: []dto.AnalyzedEntity{
				entity("a", models.EntityCollege, "???", "", nil),
				entity("b", models.EntityCollege, "!!!", "", nil),
			},
			message: `Found 2 error(s). First error: Entity #1 ("a") has an invalid name: failed the 'notblank' rule.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewStore()
			result := newImportService(store).SaveAnalyzedData(context.Background(), tt.entities)

			assert.False(t, result.Success)
			assert.Equal(t, tt.message, result.Message)
			assert.Zero(t, store.Snapshot().Len())
		})
	}
}

func TestSaveAnalyzedData_EmptyBatch(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(context.Background(), nil)

	assert.True(t, result.Success)
	assert.Equal(t, "Successfully created 0 new records.", result.Message)
	assert.Zero(t, store.Commits())
}

func TestSaveAnalyzedData_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := memory.NewStore()
	result := newImportService(store).SaveAnalyzedData(ctx, scienceBatch())

	assert.False(t, result.Success)
	assert.Equal(t, "An unexpected error occurred: context canceled", result.Message)
	assert.Zero(t, store.Snapshot().Len())
}

func TestSaveAnalyzedData_DryRunStoreNeverWrites(t *testing.T) {
	store := memory.NewStore()
	result := newImportService(NewDryRunStore(store)).SaveAnalyzedData(context.Background(), scienceBatch())

	require.True(t, result.Success, result.Message)
	assert.Equal(t, 5, result.Created)
	assert.Zero(t, store.Snapshot().Len())
}

func TestSaveAnalyzedData_PercentageConfidenceAccepted(t *testing.T) {
	store := memory.NewStore()
	college := entity("a", models.EntityCollege, "College of Science", "", nil)
	college.Confidence = 85

	result := newImportService(store).SaveAnalyzedData(context.Background(), []dto.AnalyzedEntity{college})

	require.True(t, result.Success, result.Message)
	assert.Len(t, store.Snapshot().Colleges, 1)
}

// barrierStore holds every Commit until all expected callers have arrived,
// so concurrent imports are guaranteed to prefetch before either writes.
type barrierStore struct {
	*memory.Store
	arrived sync.WaitGroup
}

func (s *barrierStore) Commit(ctx context.Context, batch *repositories.WriteBatch) error {
	s.arrived.Done()
	s.arrived.Wait()
	return s.Store.Commit(ctx, batch)
}

func TestSaveAnalyzedData_ConcurrentImportsOfSameCollege(t *testing.T) {
	store := &barrierStore{Store: memory.NewStore()}
	store.arrived.Add(2)
	svc := newImportService(store)

	batch := []dto.AnalyzedEntity{
		entity("a", models.EntityCollege, "College of Science", "", nil),
	}

	results := make([]*dto.ImportResult, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.SaveAnalyzedData(context.Background(), batch)
		}(i)
	}
	wg.Wait()

	var committed, rejected int
	for _, r := range results {
		if r.Success {
			committed++
			assert.Equal(t, "Successfully created 1 new records.", r.Message)
			continue
		}
		rejected++
		assert.True(t, strings.HasPrefix(r.Message, "An unexpected error occurred: "), r.Message)
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, rejected)

	snap := store.Snapshot()
	require.Len(t, snap.Colleges, 1)
	assert.Equal(t, "COLLEGE OF SCIENCE", snap.Colleges[0].Name)
	assert.Equal(t, 1, store.Commits())
}
