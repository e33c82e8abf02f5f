package models

// Course represents a course taught at a given level.
// ProgramID is copied from the level so courses can be queried per program.
type Course struct {
	ID         string   `json:"id" db:"id"`
	LevelID    string   `json:"levelId" db:"level_id"`
	ProgramID  string   `json:"programId" db:"program_id"`
	CourseCode string   `json:"course_code" db:"course_code"`
	CourseName string   `json:"course_name" db:"course_name"`
	CreditUnit int      `json:"credit_unit" db:"credit_unit"`
	ExamType   ExamType `json:"exam_type" db:"exam_type"`
}
