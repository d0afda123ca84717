package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	LessonScheduled = "scheduled"
	LessonConfirmed = "confirmed"
	LessonCompleted = "completed"
	LessonCancelled = "cancelled"
	LessonNoShow    = "no_show"
)

type Lesson struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	TeacherID      uuid.UUID `gorm:"type:uuid;not null;index" json:"teacher_id"`
	StudentID      uuid.UUID `gorm:"type:uuid;not null" json:"student_id"`

	ScheduledAt     time.Time `gorm:"not null;index" json:"scheduled_at"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Status          string    `gorm:"size:20;not null;default:'scheduled'" json:"status"`

	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason *string    `gorm:"size:255" json:"cancellation_reason"`

	Student Student `gorm:"foreignkey:StudentID" json:"student"`
	Teacher User    `gorm:"foreignkey:TeacherID" json:"teacher"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
