package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ExamTypeTrial = "trial"
	ExamTypeFinal = "final"
)

const AttemptStatusCompleted = "completed"

// ExamAttempt is append-only: a row is written once at submission and never
// updated afterwards.
type ExamAttempt struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID `gorm:"not null;index" json:"user_id"`
	SubjectID      uuid.UUID `gorm:"not null;index" json:"subject_id"`
	ExamType       string    `gorm:"size:20;not null" json:"exam_type"`
	StartTime      time.Time `gorm:"not null" json:"start_time"`
	EndTime        time.Time `gorm:"not null" json:"end_time"`
	Score          int       `gorm:"not null" json:"score"`
	TotalQuestions int       `gorm:"not null" json:"total_questions"`
	Status         string    `gorm:"size:20;not null;default:'completed'" json:"status"`

	User    User    `gorm:"foreignkey:UserID" json:"-"`
	Subject Subject `gorm:"foreignkey:SubjectID" json:"-"`

	Questions []AttemptQuestion `gorm:"foreignkey:AttemptID" json:"-"`
	Answers   []AttemptAnswer   `gorm:"foreignkey:AttemptID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// AttemptQuestion records the exact ordered question list presented in an
// attempt, so review reproduces the original order even after the bank changes.
type AttemptQuestion struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AttemptID  uuid.UUID `gorm:"not null;index"`
	QuestionID uuid.UUID `gorm:"not null"`
	Position   int       `gorm:"not null"`
}
