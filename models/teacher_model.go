package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Teacher struct {
	UserID         uuid.UUID `gorm:"type:uuid;primary_key" json:"user_id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	Headline       *string   `gorm:"size:255" json:"headline"`
	Bio            *string   `gorm:"type:text" json:"bio"`
	Status         string    `gorm:"size:20;not null;default:'active'" json:"status"`

	// HourlyRate is nil until an administrator configures it. Lessons taught
	// by a teacher with no rate are excluded from payout previews with a
	// warning instead of being priced at zero.
	HourlyRate *decimal.Decimal `gorm:"type:numeric(10,2)" json:"hourly_rate"`
	Currency   string           `gorm:"size:3" json:"currency"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
