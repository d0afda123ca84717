package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	FullName       string    `gorm:"size:255;not null" json:"full_name"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	Role           string    `gorm:"size:20;not null;default:'staff'" json:"role"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`

	Organization Organization `gorm:"foreignkey:OrganizationID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
