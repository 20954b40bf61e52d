package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultQuestionCount   = 60
	DefaultDurationMinutes = 60
)

// SectionAll disables section filtering for a subject's bank.
const SectionAll = "all"

type ExamSettings struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SubjectID       uuid.UUID `gorm:"not null;unique" json:"subject_id"`
	IsOpen          bool      `gorm:"not null;default:true" json:"is_open"`
	QuestionCount   int       `gorm:"not null;default:60" json:"question_count"`
	DurationMinutes int       `gorm:"not null;default:60" json:"duration_minutes"`
	Section         string    `gorm:"size:255;default:'all'" json:"section"`

	// Legacy flag kept for older records; per-mode attempt quotas are the
	// authoritative gate.
	AllowRetakes bool `gorm:"not null;default:true" json:"allow_retakes"`

	Subject   Subject   `gorm:"foreignkey:SubjectID" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultExamSettings is the fallback when a subject has no settings row.
// Count and duration get usable defaults; the exam stays closed until an
// admin explicitly opens it.
func DefaultExamSettings(subjectID uuid.UUID) ExamSettings {
	return ExamSettings{
		SubjectID:       subjectID,
		IsOpen:          false,
		QuestionCount:   DefaultQuestionCount,
		DurationMinutes: DefaultDurationMinutes,
		Section:         SectionAll,
	}
}
