package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PayoutPending   = "pending"
	PayoutApproved  = "approved"
	PayoutPaid      = "paid"
	PayoutCancelled = "cancelled"
)

type TeacherPayout struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	TeacherID      uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`

	PeriodStart time.Time `gorm:"type:date;not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"type:date;not null" json:"period_end"`

	TotalHours  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_hours"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Currency    string          `gorm:"size:3;not null" json:"currency"`

	Status string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaidAt *time.Time `json:"paid_at"`
	Notes  *string    `gorm:"type:text" json:"notes"`

	LineItems []PayoutLineItem `gorm:"foreignkey:PayoutID" json:"line_items"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PayoutLineItem freezes one lesson's contribution to a payout at creation
// time: the rate and percent in effect then, never recomputed afterwards.
type PayoutLineItem struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PayoutID uuid.UUID `gorm:"type:uuid;not null;index" json:"payout_id"`
	LessonID uuid.UUID `gorm:"type:uuid;not null" json:"lesson_id"`

	LessonDate      time.Time       `gorm:"not null" json:"lesson_date"`
	DurationMinutes int             `gorm:"not null" json:"duration_minutes"`
	StudentName     string          `gorm:"size:255" json:"student_name"`
	HourlyRate      decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"hourly_rate"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency        string          `gorm:"size:3;not null" json:"currency"`

	QualificationReason string `gorm:"size:32;not null" json:"qualification_reason"`
	PayoutPercent       int    `gorm:"not null" json:"payout_percent"`

	// Released flips to true when the parent payout is cancelled, returning
	// the lesson to the unpaid pool. The partial unique index on
	// (lesson_id) WHERE NOT released is what makes double payment impossible
	// at the storage layer (see database.Migrate).
	Released bool `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"-"`
}
