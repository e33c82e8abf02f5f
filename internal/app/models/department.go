package models

// Department represents a department in a college
type Department struct {
	ID        string `json:"id" db:"id"`
	CollegeID string `json:"collegeId" db:"college_id"`
	Name      string `json:"name" db:"name"`
}
