package models

// Level is one year of study within a program
type Level struct {
	ID            string `json:"id" db:"id"`
	ProgramID     string `json:"programId" db:"program_id"`
	Level         int    `json:"level" db:"level"`
	StudentsCount int    `json:"students_count" db:"students_count"`
}
