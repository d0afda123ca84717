package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linguadesk/backoffice/models"
)

// Service is the payout lifecycle manager: preview, create, status
// transitions, delete. Every method takes the organization id explicitly;
// there is no ambient tenant context.
type Service struct {
	agg   *Aggregator
	store Store
	now   func() time.Time
}

func NewService(lessons LessonSource, rates RateSource, policies PolicySource, store Store) *Service {
	return &Service{
		agg:   NewAggregator(lessons, rates, policies, store),
		store: store,
		now:   time.Now,
	}
}

func (s *Service) Preview(ctx context.Context, orgID, teacherID uuid.UUID, periodStart, periodEnd time.Time) (*Preview, error) {
	return s.agg.Preview(ctx, orgID, teacherID, periodStart, periodEnd)
}

// Create turns a period into a durable payout. It re-runs aggregation rather
// than trusting any client-supplied preview, then writes the payout and its
// line items in one storage transaction. A concurrent create that claimed one
// of the same lessons first surfaces as a ConflictError; retrying requires a
// fresh preview.
func (s *Service) Create(ctx context.Context, orgID, teacherID uuid.UUID, periodStart, periodEnd time.Time, notes *string) (*models.TeacherPayout, *Preview, error) {
	preview, err := s.agg.Preview(ctx, orgID, teacherID, periodStart, periodEnd)
	if err != nil {
		return nil, nil, err
	}
	if len(preview.Lessons) == 0 {
		return nil, nil, ErrNothingToPay
	}

	payout := &models.TeacherPayout{
		ID:             uuid.New(),
		OrganizationID: orgID,
		TeacherID:      teacherID,
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
		TotalHours:     preview.TotalHours,
		TotalAmount:    preview.TotalAmount,
		Currency:       preview.Currency,
		Status:         models.PayoutPending,
		Notes:          notes,
	}

	items := make([]models.PayoutLineItem, 0, len(preview.Lessons))
	for _, l := range preview.Lessons {
		items = append(items, models.PayoutLineItem{
			ID:                  uuid.New(),
			PayoutID:            payout.ID,
			LessonID:            l.LessonID,
			LessonDate:          l.ScheduledAt,
			DurationMinutes:     l.DurationMinutes,
			StudentName:         l.StudentName,
			HourlyRate:          l.HourlyRate,
			Amount:              l.Amount,
			Currency:            l.Currency,
			QualificationReason: string(l.Reason),
			PayoutPercent:       l.PayoutPercent,
		})
	}

	if err := s.store.CreatePayout(ctx, payout, items); err != nil {
		return nil, nil, err
	}
	payout.LineItems = items
	return payout, preview, nil
}

// SetStatus advances a payout through pending → approved → paid, or cancels
// any non-paid payout. Cancelling releases the payout's lessons back into the
// unpaid pool. Paid is terminal.
func (s *Service) SetStatus(ctx context.Context, orgID, payoutID uuid.UUID, target string) (*models.TeacherPayout, error) {
	payout, err := s.store.GetPayout(ctx, orgID, payoutID)
	if err != nil {
		return nil, err
	}

	var paidAt *time.Time
	switch target {
	case models.PayoutApproved:
		if payout.Status != models.PayoutPending {
			return nil, transitionError(payout.Status, target)
		}
	case models.PayoutPaid:
		if payout.Status != models.PayoutApproved {
			return nil, transitionError(payout.Status, target)
		}
		now := s.now()
		paidAt = &now
	case models.PayoutCancelled:
		if payout.Status == models.PayoutPaid || payout.Status == models.PayoutCancelled {
			return nil, transitionError(payout.Status, target)
		}
	default:
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown target status %q", target)}
	}

	if err := s.store.UpdatePayoutStatus(ctx, orgID, payoutID, target, paidAt); err != nil {
		return nil, err
	}
	return s.store.GetPayout(ctx, orgID, payoutID)
}

// Delete removes a payout entirely, releasing its lessons. Only the most
// recently created, still-pending payout for the teacher may be deleted;
// anything else is a conflict so historical accounting stays undisturbed.
func (s *Service) Delete(ctx context.Context, orgID, payoutID uuid.UUID) error {
	payout, err := s.store.GetPayout(ctx, orgID, payoutID)
	if err != nil {
		return err
	}
	if payout.Status != models.PayoutPending {
		return &ConflictError{Message: "only pending payouts can be deleted"}
	}

	latest, err := s.store.LatestPayout(ctx, orgID, payout.TeacherID)
	if err != nil {
		return err
	}
	if latest == nil || latest.ID != payout.ID {
		return &ConflictError{Message: "only the teacher's most recent payout can be deleted"}
	}

	return s.store.DeletePayout(ctx, orgID, payoutID)
}

func (s *Service) Get(ctx context.Context, orgID, payoutID uuid.UUID) (*models.TeacherPayout, error) {
	return s.store.GetPayout(ctx, orgID, payoutID)
}

func (s *Service) List(ctx context.Context, orgID, teacherID uuid.UUID) ([]models.TeacherPayout, error) {
	return s.store.ListPayouts(ctx, orgID, teacherID)
}

func transitionError(from, to string) error {
	return &ValidationError{
		Field:   "status",
		Message: fmt.Sprintf("cannot transition payout from %s to %s", from, to),
	}
}
