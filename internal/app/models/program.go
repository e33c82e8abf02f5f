package models

// Program is a degree programme offered by a department.
type Program struct {
	ID           string `json:"id" db:"id"`
	DepartmentID string `json:"departmentId" db:"department_id"`
	Name         string `json:"name" db:"name"`
	MaxLevel     int    `json:"max_level" db:"max_level"`
}
