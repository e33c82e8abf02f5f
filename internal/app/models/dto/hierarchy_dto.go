package dto

import "github.com/yigit/examportal/internal/app/models"

// HierarchyFilter narrows hierarchy listings to one parent.
// Empty fields are ignored.
type HierarchyFilter struct {
	CollegeID    string `form:"collegeId"`
	DepartmentID string `form:"departmentId"`
	ProgramID    string `form:"programId"`
	LevelID      string `form:"levelId"`
}

// HierarchyCounts summarises how many records each collection holds
type HierarchyCounts struct {
	Colleges    int `json:"colleges"`
	Departments int `json:"departments"`
	Programs    int `json:"programs"`
	Levels      int `json:"levels"`
	Courses     int `json:"courses"`
}

// ProgramNode is a program with its levels and their courses
type ProgramNode struct {
	models.Program
	Levels []LevelNode `json:"levels"`
}

// LevelNode is a level with its courses
type LevelNode struct {
	models.Level
	Courses []*models.Course `json:"courses"`
}

// DepartmentNode is a department with its programs
type DepartmentNode struct {
	models.Department
	Programs []ProgramNode `json:"programs"`
}

// CollegeTree is the full subtree below one college
type CollegeTree struct {
	models.College
	Departments []DepartmentNode `json:"departments"`
}
