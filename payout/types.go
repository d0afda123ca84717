package payout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reason is the business justification a lesson is payable.
type Reason string

const (
	ReasonCompleted        Reason = "COMPLETED"
	ReasonConfirmed        Reason = "CONFIRMED"
	ReasonLateCancellation Reason = "LATE_CANCELLATION"
)

// RateSnapshot is the teacher's hourly rate as read at evaluation time.
// Payouts freeze it into each line item, so later rate changes never alter
// historical records.
type RateSnapshot struct {
	HourlyRate decimal.Decimal
	Currency   string
}

// Policy is the slice of organization settings the engine needs.
type Policy struct {
	Timezone                    string
	LateCancellationWindowHours int
	LateCancellationPercent     int
}

// Decision is the evaluator's verdict on a single lesson.
type Decision struct {
	Payable bool
	Reason  Reason
	Percent int
}

// QualifiedLesson is one payable lesson in a preview, priced and frozen.
type QualifiedLesson struct {
	LessonID        uuid.UUID       `json:"lesson_id"`
	ScheduledAt     time.Time       `json:"scheduled_at"`
	DurationMinutes int             `json:"duration_minutes"`
	StudentName     string          `json:"student_name"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	Currency        string          `json:"currency"`
	Reason          Reason          `json:"qualification_reason"`
	PayoutPercent   int             `json:"payout_percent"`
	Amount          decimal.Decimal `json:"amount"`
}

// Preview is the reviewable result of aggregating a period. Lessons are
// ordered by ScheduledAt ascending; hours count the full scheduled duration
// of every qualified lesson, percent scales only the amount.
type Preview struct {
	TeacherID   uuid.UUID         `json:"teacher_id"`
	PeriodStart time.Time         `json:"period_start"`
	PeriodEnd   time.Time         `json:"period_end"`
	Lessons     []QualifiedLesson `json:"lessons"`
	TotalHours  decimal.Decimal   `json:"total_hours"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Currency    string            `json:"currency"`
	Warnings    []string          `json:"warnings,omitempty"`
}
