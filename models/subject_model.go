package models

import "github.com/google/uuid"

type Subject struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name string    `gorm:"size:255;not null;unique" json:"name"`
}
