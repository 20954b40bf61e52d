package models

import "github.com/google/uuid"

const (
	QuestionTypeMCQ       = "mcq"
	QuestionTypeTrueFalse = "true_false"
)

// Options holds a JSON-encoded string array for MCQ questions. For true/false
// questions it is empty and CorrectAnswer is "true" or "false"; for MCQ it is
// the stringified index of the correct option.
type Question struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SubjectID     uuid.UUID `gorm:"not null;index" json:"subject_id"`
	Type          string    `gorm:"size:50;not null;default:'mcq'" json:"type"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	Options       string    `gorm:"type:text" json:"options"`
	CorrectAnswer string    `gorm:"type:text;not null" json:"correct_answer"`
	Explanation   string    `gorm:"type:text" json:"explanation"`
	Section       string    `gorm:"size:255" json:"section"`

	Subject Subject `gorm:"foreignkey:SubjectID" json:"-"`
}
