package payout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/linguadesk/backoffice/models"
)

// LessonSource is the read-only view over the scheduling subsystem's lesson
// records. The payout engine never mutates lessons.
type LessonSource interface {
	// ListLessonsForTeacherInRange returns the teacher's lessons with
	// ScheduledAt in [start, end], any status.
	ListLessonsForTeacherInRange(ctx context.Context, orgID, teacherID uuid.UUID, start, end time.Time) ([]models.Lesson, error)
}

// RateSource reads teacher rates. A nil snapshot with a nil error means the
// teacher exists but has no configured rate; a missing teacher is a
// NotFoundError.
type RateSource interface {
	GetTeacherRate(ctx context.Context, orgID, teacherID uuid.UUID) (*RateSnapshot, error)
}

// PolicySource reads the organization's payout-relevant settings.
type PolicySource interface {
	GetPayoutPolicy(ctx context.Context, orgID uuid.UUID) (Policy, error)
}

// Store persists payouts. Implementations must make CreatePayout atomic and
// enforce the one-active-claim-per-lesson invariant at the storage layer, so
// the second of two racing creates fails with a ConflictError instead of
// double-paying.
type Store interface {
	// ClaimedLessonIDs reports which of the given lessons already belong to
	// a line item of a non-cancelled payout.
	ClaimedLessonIDs(ctx context.Context, orgID uuid.UUID, lessonIDs []uuid.UUID) (map[uuid.UUID]bool, error)

	// CreatePayout writes the payout and all its line items in one
	// transaction. Returns a ConflictError if any lesson is already claimed
	// at commit time.
	CreatePayout(ctx context.Context, payout *models.TeacherPayout, items []models.PayoutLineItem) error

	// GetPayout loads a payout with its line items, scoped to the
	// organization.
	GetPayout(ctx context.Context, orgID, payoutID uuid.UUID) (*models.TeacherPayout, error)

	// UpdatePayoutStatus persists a status change. When the new status is
	// cancelled it also releases the payout's line items back into the
	// unpaid pool, atomically.
	UpdatePayoutStatus(ctx context.Context, orgID, payoutID uuid.UUID, status string, paidAt *time.Time) error

	// DeletePayout removes the payout and its line items, releasing the
	// lessons.
	DeletePayout(ctx context.Context, orgID, payoutID uuid.UUID) error

	// ListPayouts returns the teacher's payouts, newest first.
	ListPayouts(ctx context.Context, orgID, teacherID uuid.UUID) ([]models.TeacherPayout, error)

	// LatestPayout returns the teacher's most recently created payout, or
	// nil when none exist.
	LatestPayout(ctx context.Context, orgID, teacherID uuid.UUID) (*models.TeacherPayout, error)
}
