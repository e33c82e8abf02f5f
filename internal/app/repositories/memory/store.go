// Package memory provides an in-process hierarchy store with the same
// all-or-nothing Commit semantics as the PostgreSQL repository. It backs the
// tests and the "memory" storage driver.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/yigit/examportal/internal/app/models"
	"github.com/yigit/examportal/internal/app/repositories"
	"github.com/yigit/examportal/internal/pkg/apperrors"
	"github.com/yigit/examportal/internal/pkg/textnorm"
)

const maxCollegeCodeLength = 10

// Store keeps the hierarchy in maps keyed by record ID
type Store struct {
	mu          sync.RWMutex
	colleges    map[string]models.College
	departments map[string]models.Department
	programs    map[string]models.Program
	levels      map[string]models.Level
	courses     map[string]models.Course

	commits    int
	failCommit error
}

// Snapshot is a point-in-time copy of the store contents, each slice sorted by ID
type Snapshot struct {
	Colleges    []models.College
	Departments []models.Department
	Programs    []models.Program
	Levels      []models.Level
	Courses     []models.Course
}

// Len returns the total number of records in the snapshot
func (s Snapshot) Len() int {
	return len(s.Colleges) + len(s.Departments) + len(s.Programs) + len(s.Levels) + len(s.Courses)
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		colleges:    map[string]models.College{},
		departments: map[string]models.Department{},
		programs:    map[string]models.Program{},
		levels:      map[string]models.Level{},
		courses:     map[string]models.Course{},
	}
}

// NewID returns a fresh identifier
func (s *Store) NewID() string {
	return uuid.NewString()
}

// FailNextCommit makes the next Commit return err without applying anything
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCommit = err
}

// Commits returns how many times Commit applied a batch
func (s *Store) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// GetCollege returns one college
func (s *Store) GetCollege(_ context.Context, id string) (*models.College, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colleges[id]
	if !ok {
		return nil, repositories.ErrCollegeNotFound
	}
	return &c, nil
}

// ListColleges returns every college ordered by name
func (s *Store) ListColleges(_ context.Context) ([]*models.College, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.College, 0, len(s.colleges))
	for _, c := range s.colleges {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListDepartments returns departments, optionally for one college
func (s *Store) ListDepartments(_ context.Context, collegeID string) ([]*models.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Department, 0, len(s.departments))
	for _, d := range s.departments {
		if collegeID != "" && d.CollegeID != collegeID {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListPrograms returns programs, optionally for one department
func (s *Store) ListPrograms(_ context.Context, departmentID string) ([]*models.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Program, 0, len(s.programs))
	for _, p := range s.programs {
		if departmentID != "" && p.DepartmentID != departmentID {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListLevels returns levels, optionally for one program
func (s *Store) ListLevels(_ context.Context, programID string) ([]*models.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Level, 0, len(s.levels))
	for _, l := range s.levels {
		if programID != "" && l.ProgramID != programID {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProgramID != out[j].ProgramID {
			return out[i].ProgramID < out[j].ProgramID
		}
		return out[i].Level < out[j].Level
	})
	return out, nil
}

// ListCourses returns courses matching the non-empty filters
func (s *Store) ListCourses(_ context.Context, programID, levelID string) ([]*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Course, 0, len(s.courses))
	for _, c := range s.courses {
		if programID != "" && c.ProgramID != programID {
			continue
		}
		if levelID != "" && c.LevelID != levelID {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseCode < out[j].CourseCode })
	return out, nil
}

// Commit validates the whole batch against current contents and applies it
// only if every record passes.
func (s *Store) Commit(ctx context.Context, batch *repositories.WriteBatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if batch.Empty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failCommit != nil {
		err := s.failCommit
		s.failCommit = nil
		return err
	}

	next := s.clone()
	if err := next.apply(batch); err != nil {
		return err
	}

	s.colleges = next.colleges
	s.departments = next.departments
	s.programs = next.programs
	s.levels = next.levels
	s.courses = next.courses
	s.commits++
	return nil
}

// Snapshot copies the current contents
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Colleges:    make([]models.College, 0, len(s.colleges)),
		Departments: make([]models.Department, 0, len(s.departments)),
		Programs:    make([]models.Program, 0, len(s.programs)),
		Levels:      make([]models.Level, 0, len(s.levels)),
		Courses:     make([]models.Course, 0, len(s.courses)),
	}
	for _, c := range s.colleges {
		snap.Colleges = append(snap.Colleges, c)
	}
	for _, d := range s.departments {
		snap.Departments = append(snap.Departments, d)
	}
	for _, p := range s.programs {
		snap.Programs = append(snap.Programs, p)
	}
	for _, l := range s.levels {
		snap.Levels = append(snap.Levels, l)
	}
	for _, c := range s.courses {
		snap.Courses = append(snap.Courses, c)
	}
	sort.Slice(snap.Colleges, func(i, j int) bool { return snap.Colleges[i].ID < snap.Colleges[j].ID })
	sort.Slice(snap.Departments, func(i, j int) bool { return snap.Departments[i].ID < snap.Departments[j].ID })
	sort.Slice(snap.Programs, func(i, j int) bool { return snap.Programs[i].ID < snap.Programs[j].ID })
	sort.Slice(snap.Levels, func(i, j int) bool { return snap.Levels[i].ID < snap.Levels[j].ID })
	sort.Slice(snap.Courses, func(i, j int) bool { return snap.Courses[i].ID < snap.Courses[j].ID })
	return snap
}

type tables struct {
	colleges    map[string]models.College
	departments map[string]models.Department
	programs    map[string]models.Program
	levels      map[string]models.Level
	courses     map[string]models.Course
}

func (s *Store) clone() *tables {
	t := &tables{
		colleges:    make(map[string]models.College, len(s.colleges)),
		departments: make(map[string]models.Department, len(s.departments)),
		programs:    make(map[string]models.Program, len(s.programs)),
		levels:      make(map[string]models.Level, len(s.levels)),
		courses:     make(map[string]models.Course, len(s.courses)),
	}
	for k, v := range s.colleges {
		t.colleges[k] = v
	}
	for k, v := range s.departments {
		t.departments[k] = v
	}
	for k, v := range s.programs {
		t.programs[k] = v
	}
	for k, v := range s.levels {
		t.levels[k] = v
	}
	for k, v := range s.courses {
		t.courses[k] = v
	}
	return t
}

// apply mirrors the primary key, foreign key, unique and check constraints
// declared in migrations/001_init.sql.
func (t *tables) apply(batch *repositories.WriteBatch) error {
	for _, c := range batch.Colleges {
		if err := t.insertCollege(*c); err != nil {
			return err
		}
	}
	for _, d := range batch.Departments {
		if err := t.insertDepartment(*d); err != nil {
			return err
		}
	}
	for _, p := range batch.Programs {
		if err := t.insertProgram(*p); err != nil {
			return err
		}
	}
	for _, l := range batch.Levels {
		if err := t.insertLevel(*l); err != nil {
			return err
		}
	}
	for _, c := range batch.Courses {
		if err := t.insertCourse(*c); err != nil {
			return err
		}
	}
	return nil
}

func (t *tables) insertCollege(c models.College) error {
	if _, dup := t.colleges[c.ID]; dup || c.ID == "" {
		return fmt.Errorf("%w: college id %q", apperrors.ErrConflict, c.ID)
	}
	if len([]rune(c.Code)) > maxCollegeCodeLength {
		return fmt.Errorf("%w: college code %q longer than %d", apperrors.ErrValidationFailed, c.Code, maxCollegeCodeLength)
	}
	for _, existing := range t.colleges {
		if existing.Name == c.Name {
			return fmt.Errorf("%w: college %q already exists", apperrors.ErrConflict, c.Name)
		}
	}
	t.colleges[c.ID] = c
	return nil
}

func (t *tables) insertDepartment(d models.Department) error {
	if _, dup := t.departments[d.ID]; dup || d.ID == "" {
		return fmt.Errorf("%w: department id %q", apperrors.ErrConflict, d.ID)
	}
	if _, ok := t.colleges[d.CollegeID]; !ok {
		return fmt.Errorf("%w: department %q references unknown college %q", apperrors.ErrInvalidReference, d.Name, d.CollegeID)
	}
	for _, existing := range t.departments {
		if existing.CollegeID == d.CollegeID && existing.Name == d.Name {
			return fmt.Errorf("%w: department %q already exists in college", apperrors.ErrConflict, d.Name)
		}
	}
	t.departments[d.ID] = d
	return nil
}

func (t *tables) insertProgram(p models.Program) error {
	if _, dup := t.programs[p.ID]; dup || p.ID == "" {
		return fmt.Errorf("%w: program id %q", apperrors.ErrConflict, p.ID)
	}
	if _, ok := t.departments[p.DepartmentID]; !ok {
		return fmt.Errorf("%w: program %q references unknown department %q", apperrors.ErrInvalidReference, p.Name, p.DepartmentID)
	}
	if p.MaxLevel < models.MinLevel || p.MaxLevel > models.MaxLevel {
		return fmt.Errorf("%w: program max_level %d out of range", apperrors.ErrValidationFailed, p.MaxLevel)
	}
	for _, existing := range t.programs {
		if existing.DepartmentID == p.DepartmentID && existing.Name == p.Name {
			return fmt.Errorf("%w: program %q already exists in department", apperrors.ErrConflict, p.Name)
		}
	}
	t.programs[p.ID] = p
	return nil
}

func (t *tables) insertLevel(l models.Level) error {
	if _, dup := t.levels[l.ID]; dup || l.ID == "" {
		return fmt.Errorf("%w: level id %q", apperrors.ErrConflict, l.ID)
	}
	if _, ok := t.programs[l.ProgramID]; !ok {
		return fmt.Errorf("%w: level references unknown program %q", apperrors.ErrInvalidReference, l.ProgramID)
	}
	if l.Level < models.MinLevel || l.Level > models.MaxLevel || l.StudentsCount < 0 {
		return fmt.Errorf("%w: level %d with %d students", apperrors.ErrValidationFailed, l.Level, l.StudentsCount)
	}
	for _, existing := range t.levels {
		if existing.ProgramID == l.ProgramID && existing.Level == l.Level {
			return fmt.Errorf("%w: level %d already exists in program", apperrors.ErrConflict, l.Level)
		}
	}
	t.levels[l.ID] = l
	return nil
}

func (t *tables) insertCourse(c models.Course) error {
	if _, dup := t.courses[c.ID]; dup || c.ID == "" {
		return fmt.Errorf("%w: course id %q", apperrors.ErrConflict, c.ID)
	}
	level, ok := t.levels[c.LevelID]
	if !ok {
		return fmt.Errorf("%w: course %q references unknown level %q", apperrors.ErrInvalidReference, c.CourseCode, c.LevelID)
	}
	if level.ProgramID != c.ProgramID {
		return fmt.Errorf("%w: course %q program does not match its level", apperrors.ErrInvalidReference, c.CourseCode)
	}
	if c.ExamType != models.ExamTypeCBT && c.ExamType != models.ExamTypeWritten {
		return fmt.Errorf("%w: exam type %q", apperrors.ErrValidationFailed, c.ExamType)
	}
	if c.CourseCode != textnorm.CodeNotAvailable {
		for _, existing := range t.courses {
			if existing.ProgramID == c.ProgramID && existing.CourseCode == c.CourseCode {
				return fmt.Errorf("%w: course %q already exists in program", apperrors.ErrConflict, c.CourseCode)
			}
		}
	}
	t.courses[c.ID] = c
	return nil
}
