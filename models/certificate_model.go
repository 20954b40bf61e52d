package models

import (
	"time"

	"github.com/google/uuid"
)

type Certificate struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AttemptID      uuid.UUID `gorm:"not null;unique" json:"attempt_id"`
	UserID         uuid.UUID `gorm:"not null" json:"user_id"`
	SubjectID      uuid.UUID `gorm:"not null" json:"subject_id"`
	FinalScore     float64   `gorm:"type:numeric(5,2);not null" json:"final_score"`
	Grade          string    `gorm:"size:20;not null" json:"grade"`
	CertificateURL string    `gorm:"type:text;not null" json:"certificate_url"`
	IssuedAt       time.Time `gorm:"not null" json:"issued_at"`

	User    User    `gorm:"foreignkey:UserID" json:"-"`
	Subject Subject `gorm:"foreignkey:SubjectID" json:"-"`
}
