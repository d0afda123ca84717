package models

import (
	"time"

	"github.com/google/uuid"
)

type Organization struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Timezone string    `gorm:"size:64;not null;default:'Europe/Warsaw'" json:"timezone"`
	Currency string    `gorm:"size:3;not null;default:'PLN'" json:"currency"`

	// Late-cancellation policy: a lesson cancelled less than
	// LateCancellationWindowHours before its scheduled time still pays the
	// teacher LateCancellationPercent of the full amount.
	LateCancellationWindowHours int `gorm:"not null;default:24" json:"late_cancellation_window_hours"`
	LateCancellationPercent     int `gorm:"not null;default:50" json:"late_cancellation_percent"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
