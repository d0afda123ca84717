package payout

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

// Aggregator produces the deterministic preview for a (teacher, period)
// pair: candidate lessons, minus already-claimed ones, through the
// evaluator, priced with the teacher's current rate snapshot.
type Aggregator struct {
	lessons  LessonSource
	rates    RateSource
	policies PolicySource
	store    Store
	now      func() time.Time
}

func NewAggregator(lessons LessonSource, rates RateSource, policies PolicySource, store Store) *Aggregator {
	return &Aggregator{
		lessons:  lessons,
		rates:    rates,
		policies: policies,
		store:    store,
		now:      time.Now,
	}
}

// Preview is read-only and idempotent: calling it twice with the same
// arguments before any payout is created yields the same result.
// periodStart and periodEnd are inclusive calendar dates interpreted in the
// organization's timezone.
func (a *Aggregator) Preview(ctx context.Context, orgID, teacherID uuid.UUID, periodStart, periodEnd time.Time) (*Preview, error) {
	if periodStart.After(periodEnd) {
		return nil, &ValidationError{Field: "period_start", Message: "period start must not be after period end"}
	}

	rate, err := a.rates.GetTeacherRate(ctx, orgID, teacherID)
	if err != nil {
		return nil, err
	}

	policy, err := a.policies.GetPayoutPolicy(ctx, orgID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(policy.Timezone)
	if err != nil {
		return nil, &DataIntegrityError{Message: fmt.Sprintf("organization %s has invalid timezone %q", orgID, policy.Timezone)}
	}

	start := time.Date(periodStart.Year(), periodStart.Month(), periodStart.Day(), 0, 0, 0, 0, loc)
	end := time.Date(periodEnd.Year(), periodEnd.Month(), periodEnd.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, 1).Add(-time.Nanosecond)

	lessons, err := a.lessons.ListLessonsForTeacherInRange(ctx, orgID, teacherID, start, end)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	claimed, err := a.store.ClaimedLessonIDs(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].ScheduledAt.Before(lessons[j].ScheduledAt)
	})

	evaluator := &Evaluator{policy: policy, now: a.now}
	preview := &Preview{
		TeacherID:   teacherID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Lessons:     []QualifiedLesson{},
		TotalHours:  decimal.Zero,
		TotalAmount: decimal.Zero,
	}

	unpriced := 0
	for _, lesson := range lessons {
		if claimed[lesson.ID] {
			continue
		}

		decision, err := evaluator.Evaluate(lesson)
		if err != nil {
			return nil, err
		}
		if !decision.Payable {
			continue
		}

		if rate == nil {
			unpriced++
			continue
		}

		duration := decimal.NewFromInt(int64(lesson.DurationMinutes))
		hours := duration.Div(sixty)
		amount := rate.HourlyRate.
			Mul(hours).
			Mul(decimal.NewFromInt(int64(decision.Percent))).
			Div(hundred).
			Round(2)

		preview.Lessons = append(preview.Lessons, QualifiedLesson{
			LessonID:        lesson.ID,
			ScheduledAt:     lesson.ScheduledAt,
			DurationMinutes: lesson.DurationMinutes,
			StudentName:     lesson.Student.FullName,
			HourlyRate:      rate.HourlyRate,
			Currency:        rate.Currency,
			Reason:          decision.Reason,
			PayoutPercent:   decision.Percent,
			Amount:          amount,
		})
		preview.TotalHours = preview.TotalHours.Add(hours)
		preview.TotalAmount = preview.TotalAmount.Add(amount)
	}

	if unpriced > 0 {
		preview.Warnings = append(preview.Warnings,
			fmt.Sprintf("teacher has no hourly rate configured; %d qualified lesson(s) excluded from the preview", unpriced))
	}

	for i, l := range preview.Lessons {
		if i == 0 {
			preview.Currency = l.Currency
			continue
		}
		if l.Currency != preview.Currency {
			preview.Warnings = append(preview.Warnings,
				"line items carry mixed currencies; totals are not comparable across them")
			break
		}
	}

	return preview, nil
}
