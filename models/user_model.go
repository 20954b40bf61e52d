package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

const (
	EnrollmentIntizam = "intizam"
	EnrollmentIntisab = "intisab"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Username string    `gorm:"size:50;not null;unique" json:"username"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'student'" json:"role"`

	EnrollmentType *string `gorm:"size:20" json:"enrollment_type"`

	FailedLoginAttempts int  `gorm:"not null;default:0" json:"-"`
	IsLocked            bool `gorm:"not null;default:false" json:"is_locked"`

	ResetPasswordToken          *string    `gorm:"size:255;unique" json:"-"`
	ResetPasswordTokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
