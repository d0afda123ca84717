package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	StudentID      *uuid.UUID `gorm:"type:uuid;index" json:"student_id"`

	Amount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency string          `gorm:"size:3;not null" json:"currency"`
	PaidOn   time.Time       `gorm:"type:date;not null" json:"paid_on"`

	Reference      string  `gorm:"size:64" json:"reference"`
	RawDescription *string `gorm:"type:text" json:"raw_description"`
	Source         string  `gorm:"size:20;not null;default:'bank_import'" json:"source"`

	Student Student `gorm:"foreignkey:StudentID" json:"student"`

	CreatedAt time.Time `json:"created_at"`
}
