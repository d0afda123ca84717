package payout_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/linguadesk/backoffice/models"
	"github.com/linguadesk/backoffice/payout"
	"github.com/linguadesk/backoffice/payout/inmem"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *inmem.Store
	service   *payout.Service
	orgID     uuid.UUID
	teacherID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := inmem.New()
	orgID := uuid.New()
	teacherID := uuid.New()

	store.SetPolicy(orgID, payout.Policy{
		Timezone:                    "UTC",
		LateCancellationWindowHours: 24,
		LateCancellationPercent:     50,
	})
	rate := decimal.NewFromInt(100)
	store.AddTeacher(teacherID, &payout.RateSnapshot{HourlyRate: rate, Currency: "PLN"})

	return &fixture{
		store:     store,
		service:   payout.NewService(store, store, store, store),
		orgID:     orgID,
		teacherID: teacherID,
	}
}

func (f *fixture) addLesson(status string, scheduledAt time.Time, durationMinutes int, studentName string) models.Lesson {
	lesson := models.Lesson{
		ID:              uuid.New(),
		OrganizationID:  f.orgID,
		TeacherID:       f.teacherID,
		StudentID:       uuid.New(),
		ScheduledAt:     scheduledAt,
		DurationMinutes: durationMinutes,
		Status:          status,
		Student:         models.Student{FullName: studentName},
	}
	f.store.AddLesson(lesson)
	return lesson
}

func (f *fixture) addLateCancelled(scheduledAt time.Time, durationMinutes int, hoursBefore time.Duration, studentName string) models.Lesson {
	lesson := models.Lesson{
		ID:              uuid.New(),
		OrganizationID:  f.orgID,
		TeacherID:       f.teacherID,
		StudentID:       uuid.New(),
		ScheduledAt:     scheduledAt,
		DurationMinutes: durationMinutes,
		Status:          models.LessonCancelled,
		Student:         models.Student{FullName: studentName},
	}
	cancelledAt := scheduledAt.Add(-hoursBefore)
	lesson.CancelledAt = &cancelledAt
	f.store.AddLesson(lesson)
	return lesson
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPreview_SingleCompletedLesson(t *testing.T) {
	// GIVEN: one completed 60-minute lesson on 2025-01-10, rate 100 PLN/h
	// WHEN: previewing January 2025
	// THEN: one qualified lesson, totalHours=1.00, totalAmount=100.00 PLN

	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")

	preview, err := f.service.Preview(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	require.Len(t, preview.Lessons, 1)
	line := preview.Lessons[0]
	assert.Equal(t, payout.ReasonCompleted, line.Reason)
	assert.Equal(t, 100, line.PayoutPercent)
	assert.Equal(t, "Anna Nowak", line.StudentName)
	assert.Equal(t, "100.00", line.Amount.StringFixed(2))
	assert.Equal(t, "1.00", preview.TotalHours.StringFixed(2))
	assert.Equal(t, "100.00", preview.TotalAmount.StringFixed(2))
	assert.Equal(t, "PLN", preview.Currency)
	assert.Empty(t, preview.Warnings)
}

func TestPreview_LateCancellationPaysPartialAmountButFullHours(t *testing.T) {
	// GIVEN: a 60-minute lesson cancelled 2 hours before its start, with a
	// 24h window and 50% partial rate
	// THEN: it qualifies as LATE_CANCELLATION at 50%, amount 50.00, and its
	// full duration still counts toward hours

	f := newFixture(t)
	scheduled := time.Date(2025, 1, 12, 14, 0, 0, 0, time.UTC)
	f.addLateCancelled(scheduled, 60, 2*time.Hour, "Jan Kowalski")

	preview, err := f.service.Preview(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	require.Len(t, preview.Lessons, 1)
	line := preview.Lessons[0]
	assert.Equal(t, payout.ReasonLateCancellation, line.Reason)
	assert.Equal(t, 50, line.PayoutPercent)
	assert.Equal(t, "50.00", line.Amount.StringFixed(2))
	assert.Equal(t, "1.00", preview.TotalHours.StringFixed(2))
}

func TestPreview_OrderedByScheduledAtAscending(t *testing.T) {
	f := newFixture(t)
	third := f.addLesson(models.LessonCompleted, time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC), 45, "C")
	first := f.addLesson(models.LessonCompleted, time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC), 30, "A")
	second := f.addLesson(models.LessonCompleted, time.Date(2025, 1, 12, 9, 0, 0, 0, time.UTC), 60, "B")

	preview, err := f.service.Preview(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	require.Len(t, preview.Lessons, 3)
	assert.Equal(t, first.ID, preview.Lessons[0].LessonID)
	assert.Equal(t, second.ID, preview.Lessons[1].LessonID)
	assert.Equal(t, third.ID, preview.Lessons[2].LessonID)
}

func TestPreview_ExcludesLessonsOutsidePeriod(t *testing.T) {
	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), 60, "Before")
	inside := f.addLesson(models.LessonCompleted, time.Date(2025, 1, 31, 23, 30, 0, 0, time.UTC), 60, "LastDay")
	f.addLesson(models.LessonCompleted, time.Date(2025, 2, 1, 0, 30, 0, 0, time.UTC), 60, "After")

	preview, err := f.service.Preview(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	require.Len(t, preview.Lessons, 1)
	assert.Equal(t, inside.ID, preview.Lessons[0].LessonID)
}

func TestPreview_InvalidPeriodRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Preview(context.Background(), f.orgID, f.teacherID, date(2025, 2, 1), date(2025, 1, 1))

	require.Error(t, err)
	assert.True(t, payout.IsValidation(err))
}

func TestPreview_UnknownTeacherRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Preview(context.Background(), f.orgID, uuid.New(), date(2025, 1, 1), date(2025, 1, 31))

	require.Error(t, err)
	assert.True(t, payout.IsNotFound(err))
}

func TestPreview_MissingRateWarnsInsteadOfPricingAtZero(t *testing.T) {
	f := newFixture(t)
	unpricedTeacher := uuid.New()
	f.store.AddTeacher(unpricedTeacher, nil)
	f.store.AddLesson(models.Lesson{
		ID:              uuid.New(),
		OrganizationID:  f.orgID,
		TeacherID:       unpricedTeacher,
		StudentID:       uuid.New(),
		ScheduledAt:     time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		Status:          models.LessonCompleted,
		Student:         models.Student{FullName: "Anna Nowak"},
	})

	preview, err := f.service.Preview(context.Background(), f.orgID, unpricedTeacher, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	assert.Empty(t, preview.Lessons)
	assert.True(t, preview.TotalAmount.IsZero())
	require.Len(t, preview.Warnings, 1)
	assert.Contains(t, preview.Warnings[0], "no hourly rate")
}

func TestPreview_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 17, 10, 0, 0, 0, time.UTC), 90, "Jan Kowalski")

	first, err := f.service.Preview(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	second, err := f.service.Preview(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPreview_SumsMatchLineItems(t *testing.T) {
	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC), 45, "A")
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC), 90, "B")
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 21, 10, 0, 0, 0, time.UTC), 25, "C")

	preview, err := f.service.Preview(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)

	amountSum := decimal.Zero
	hourSum := decimal.Zero
	for _, line := range preview.Lessons {
		amountSum = amountSum.Add(line.Amount)
		hourSum = hourSum.Add(decimal.NewFromInt(int64(line.DurationMinutes)).Div(decimal.NewFromInt(60)))
	}
	assert.True(t, preview.TotalAmount.Equal(amountSum), "totalAmount should equal the sum of line amounts")
	assert.True(t, preview.TotalHours.Equal(hourSum), "totalHours should equal the sum of line durations in hours")
}
