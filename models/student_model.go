package models

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	FullName       string    `gorm:"size:255;not null" json:"full_name"`
	Email          *string   `gorm:"size:255" json:"email"`
	Phone          *string   `gorm:"size:32" json:"phone"`
	Level          *string   `gorm:"size:20" json:"level"`
	IsActive       bool      `gorm:"not null;default:true" json:"is_active"`

	// PaymentReference is the code students put on bank transfers; the
	// statement importer matches incoming payments against it.
	PaymentReference *string `gorm:"size:16;uniqueIndex" json:"payment_reference"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
