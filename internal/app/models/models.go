package models

// EntityType identifies one level of the academic hierarchy
type EntityType string

const (
	EntityCollege    EntityType = "College"
	EntityDepartment EntityType = "Department"
	EntityProgram    EntityType = "Program"
	EntityLevel      EntityType = "Level"
	EntityCourse     EntityType = "Course"
)

// HierarchyOrder lists entity types ancestors first.
var HierarchyOrder = []EntityType{
	EntityCollege,
	EntityDepartment,
	EntityProgram,
	EntityLevel,
	EntityCourse,
}

// Valid reports whether t is one of the known hierarchy types
func (t EntityType) Valid() bool {
	for _, known := range HierarchyOrder {
		if t == known {
			return true
		}
	}
	return false
}

// ExamType is the examination mode of a course
type ExamType string

const (
	ExamTypeCBT     ExamType = "CBT"
	ExamTypeWritten ExamType = "Written"
)

// Level bounds shared by programs and levels
const (
	MinLevel        = 1
	MaxLevel        = 7
	DefaultMaxLevel = 4
)
