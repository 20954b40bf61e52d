package models

import "github.com/google/uuid"

// AttemptAnswer exists only for questions the student actually answered; a
// missing row means unanswered. IsCorrect is frozen at submit time, so later
// edits to a question's correct answer do not rewrite history.
type AttemptAnswer struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AttemptID      uuid.UUID `gorm:"not null;index"`
	QuestionID     uuid.UUID `gorm:"not null"`
	SelectedAnswer string    `gorm:"type:text;not null"`
	IsCorrect      bool      `gorm:"not null"`
}
