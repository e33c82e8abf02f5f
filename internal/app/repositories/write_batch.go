package repositories

import "github.com/yigit/examportal/internal/app/models"

// WriteBatch collects create operations so they can be applied atomically.
// Stores apply collections parents first: colleges, departments, programs,
// levels, courses. A batch is not safe for concurrent use.
type WriteBatch struct {
	Colleges    []*models.College
	Departments []*models.Department
	Programs    []*models.Program
	Levels      []*models.Level
	Courses     []*models.Course
}

// NewWriteBatch returns an empty batch
func NewWriteBatch() *WriteBatch {
	return &WriteBatch{}
}

// CreateCollege stages a college insert
func (b *WriteBatch) CreateCollege(c *models.College) {
	b.Colleges = append(b.Colleges, c)
}

// CreateDepartment stages a department insert
func (b *WriteBatch) CreateDepartment(d *models.Department) {
	b.Departments = append(b.Departments, d)
}

// CreateProgram stages a program insert
func (b *WriteBatch) CreateProgram(p *models.Program) {
	b.Programs = append(b.Programs, p)
}

// CreateLevel stages a level insert
func (b *WriteBatch) CreateLevel(l *models.Level) {
	b.Levels = append(b.Levels, l)
}

// CreateCourse stages a course insert
func (b *WriteBatch) CreateCourse(c *models.Course) {
	b.Courses = append(b.Courses, c)
}

// Len returns the number of staged records
func (b *WriteBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Colleges) + len(b.Departments) + len(b.Programs) + len(b.Levels) + len(b.Courses)
}

// Empty reports whether nothing is staged
func (b *WriteBatch) Empty() bool {
	return b.Len() == 0
}
