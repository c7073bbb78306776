package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is a teacher-authored task. A nil DueDate means no due date.
type Assignment struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	ClassID     uuid.UUID  `json:"class_id" db:"class_id"`
	SubjectID   uuid.UUID  `json:"subject_id" db:"subject_id"`
	TeacherID   uuid.UUID  `json:"teacher_id" db:"teacher_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description" db:"description"`
	DueDate     *time.Time `json:"due_date" db:"due_date"`
	Points      *int       `json:"points" db:"points"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type AssignmentSubmission struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	AssignmentID uuid.UUID  `json:"assignment_id" db:"assignment_id"`
	StudentID    uuid.UUID  `json:"student_id" db:"student_id"`
	Content      string     `json:"content" db:"content"`
	Grade        *float64   `json:"grade" db:"grade"`
	Feedback     *string    `json:"feedback" db:"feedback"`
	SubmittedAt  time.Time  `json:"submitted_at" db:"submitted_at"`
	GradedAt     *time.Time `json:"graded_at" db:"graded_at"`
}
