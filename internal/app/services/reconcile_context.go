package services

import (
	"context"
	"fmt"

	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/app/models/dto"
	"github.com/yigit/examportal/internal/app/repositories"
	"github.com/yigit/examportal/internal/pkg/textnorm"
)

// itemError is a failure attached to one analyzed entity
type itemError struct {
	entity   dto.AnalyzedEntity
	severity dto.FailureSeverity
	reason   string
}

func (e *itemError) Error() string {
	return e.reason
}

func softError(entity dto.AnalyzedEntity, format string, args ...interface{}) *itemError {
	return &itemError{entity: entity, severity: dto.SeveritySoft, reason: fmt.Sprintf(format, args...)}
}

func hardError(entity dto.AnalyzedEntity, format string, args ...interface{}) *itemError {
	return &itemError{entity: entity, severity: dto.SeverityHard, reason: fmt.Sprintf(format, args...)}
}

type departmentKey struct {
	collegeID string
	name      string
}

type programKey struct {
	departmentID string
	name         string
}

type levelKey struct {
	programID string
	level     int
}

type courseKey struct {
	programID string
	code      string
}

// reconcileContext holds the state of one reconciliation pass. It is built
// per call and dropped once the pass has committed or aborted.
type reconcileContext struct {
	store HierarchyStore
	batch *repositories.WriteBatch

	// batch-local id -> persistent id
	persistentIDs map[string]string
	// persistent id -> type, for stored and staged records
	resolvedTypes map[string]models.EntityType

	colleges    map[string]*models.College
	departments map[departmentKey]*models.Department
	programs    map[programKey]*models.Program
	levels      map[levelKey]*models.Level
	levelsByID  map[string]*models.Level
	courses     map[courseKey]*models.Course

	outcomes   []dto.EntityOutcome
	fabricated []dto.FabricatedEntity
	errs       []*itemError
	reused     int
}

func newReconcileContext(store HierarchyStore) *reconcileContext {
	return &reconcileContext{
		store:         store,
		batch:         repositories.NewWriteBatch(),
		persistentIDs: map[string]string{},
		resolvedTypes: map[string]models.EntityType{},
		colleges:      map[string]*models.College{},
		departments:   map[departmentKey]*models.Department{},
		programs:      map[programKey]*models.Program{},
		levels:        map[levelKey]*models.Level{},
		levelsByID:    map[string]*models.Level{},
		courses:       map[courseKey]*models.Course{},
	}
}

// prefetch loads every stored record once so lookups during the pass never
// go back to the store.
func (rc *reconcileContext) prefetch(ctx context.Context) error {
	colleges, err := rc.store.ListColleges(ctx)
	if err != nil {
		return fmt.Errorf("failed to load colleges: %w", err)
	}
	for _, c := range colleges {
		rc.indexCollege(c)
	}

	departments, err := rc.store.ListDepartments(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load departments: %w", err)
	}
	for _, d := range departments {
		rc.indexDepartment(d)
	}

	programs, err := rc.store.ListPrograms(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load programs: %w", err)
	}
	for _, p := range programs {
		rc.indexProgram(p)
	}

	levels, err := rc.store.ListLevels(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}
	for _, l := range levels {
		rc.indexLevel(l)
	}

	courses, err := rc.store.ListCourses(ctx, "", "")
	if err != nil {
		return fmt.Errorf("failed to load courses: %w", err)
	}
	for _, c := range courses {
		rc.indexCourse(c)
	}

	return nil
}

func (rc *reconcileContext) indexCollege(c *models.College) {
	rc.resolvedTypes[c.ID] = models.EntityCollege
	key := textnorm.Key(c.Name)
	if _, exists := rc.colleges[key]; !exists {
		rc.colleges[key] = c
	}
}

func (rc *reconcileContext) indexDepartment(d *models.Department) {
	rc.resolvedTypes[d.ID] = models.EntityDepartment
	key := departmentKey{collegeID: d.CollegeID, name: textnorm.Key(d.Name)}
	if _, exists := rc.departments[key]; !exists {
		rc.departments[key] = d
	}
}

func (rc *reconcileContext) indexProgram(p *models.Program) {
	rc.resolvedTypes[p.ID] = models.EntityProgram
	key := programKey{departmentID: p.DepartmentID, name: textnorm.Key(p.Name)}
	if _, exists := rc.programs[key]; !exists {
		rc.programs[key] = p
	}
}

func (rc *reconcileContext) indexLevel(l *models.Level) {
	rc.resolvedTypes[l.ID] = models.EntityLevel
	rc.levelsByID[l.ID] = l
	key := levelKey{programID: l.ProgramID, level: l.Level}
	if _, exists := rc.levels[key]; !exists {
		rc.levels[key] = l
	}
}

func (rc *reconcileContext) indexCourse(c *models.Course) {
	rc.resolvedTypes[c.ID] = models.EntityCourse
	if c.CourseCode == textnorm.CodeNotAvailable {
		return
	}
	key := courseKey{programID: c.ProgramID, code: c.CourseCode}
	if _, exists := rc.courses[key]; !exists {
		rc.courses[key] = c
	}
}

// parentOf returns the persistent id and type the entity's parent resolved
// to earlier in the pass. ok is false when the parent is absent or failed.
func (rc *reconcileContext) parentOf(entity dto.AnalyzedEntity) (id string, typ models.EntityType, ok bool) {
	if !entity.HasParent() {
		return "", "", false
	}
	id, ok = rc.persistentIDs[*entity.ParentID]
	if !ok {
		return "", "", false
	}
	return id, rc.resolvedTypes[id], true
}

func (rc *reconcileContext) resolve(entity dto.AnalyzedEntity, persistentID string, created bool) {
	rc.persistentIDs[entity.ID] = persistentID

	status := dto.OutcomeReused
	if created {
		status = dto.OutcomeCreated
	} else {
		rc.reused++
	}
	rc.outcomes = append(rc.outcomes, dto.EntityOutcome{
		EntityID:     entity.ID,
		Type:         entity.Type,
		Name:         entity.Name,
		Status:       status,
		PersistentID: persistentID,
	})
}

func (rc *reconcileContext) fail(err *itemError) {
	rc.errs = append(rc.errs, err)
	rc.outcomes = append(rc.outcomes, dto.EntityOutcome{
		EntityID: err.entity.ID,
		Type:     err.entity.Type,
		Name:     err.entity.Name,
		Status:   dto.OutcomeFailed,
		Severity: err.severity,
		Reason:   err.reason,
	})
}

// findOrCreateCollege returns the college matching name, staging a new one
// when none exists. code is only used for new colleges.
func (rc *reconcileContext) findOrCreateCollege(name, code string) (*models.College, bool) {
	if existing, ok := rc.colleges[textnorm.Key(name)]; ok {
		return existing, false
	}
	college := &models.College{ID: rc.store.NewID(), Name: name, Code: code}
	rc.batch.CreateCollege(college)
	rc.indexCollege(college)
	return college, true
}

func (rc *reconcileContext) findOrCreateDepartment(collegeID, name string) (*models.Department, bool) {
	key := departmentKey{collegeID: collegeID, name: textnorm.Key(name)}
	if existing, ok := rc.departments[key]; ok {
		return existing, false
	}
	dept := &models.Department{ID: rc.store.NewID(), CollegeID: collegeID, Name: name}
	rc.batch.CreateDepartment(dept)
	rc.indexDepartment(dept)
	return dept, true
}

func (rc *reconcileContext) findOrCreateProgram(departmentID, name string, maxLevel int) (*models.Program, bool) {
	key := programKey{departmentID: departmentID, name: textnorm.Key(name)}
	if existing, ok := rc.programs[key]; ok {
		return existing, false
	}
	program := &models.Program{ID: rc.store.NewID(), DepartmentID: departmentID, Name: name, MaxLevel: maxLevel}
	rc.batch.CreateProgram(program)
	rc.indexProgram(program)
	return program, true
}

func (rc *reconcileContext) findOrCreateLevel(programID string, level, studentsCount int) (*models.Level, bool) {
	if existing, ok := rc.levels[levelKey{programID: programID, level: level}]; ok {
		return existing, false
	}
	l := &models.Level{ID: rc.store.NewID(), ProgramID: programID, Level: level, StudentsCount: studentsCount}
	rc.batch.CreateLevel(l)
	rc.indexLevel(l)
	return l, true
}

func (rc *reconcileContext) findOrCreateCourse(course models.Course) (*models.Course, bool) {
	if course.CourseCode != textnorm.CodeNotAvailable {
		if existing, ok := rc.courses[courseKey{programID: course.ProgramID, code: course.CourseCode}]; ok {
			return existing, false
		}
	}
	course.ID = rc.store.NewID()
	rc.batch.CreateCourse(&course)
	rc.indexCourse(&course)
	return &course, true
}

func (rc *reconcileContext) recordFabricated(typ models.EntityType, name, persistentID string, forEntity dto.AnalyzedEntity) {
	rc.fabricated = append(rc.fabricated, dto.FabricatedEntity{
		Type:         typ,
		Name:         name,
		PersistentID: persistentID,
		ForEntityID:  forEntity.ID,
	})
}
