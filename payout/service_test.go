package payout_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/linguadesk/backoffice/models"
	"github.com/linguadesk/backoffice/payout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_FreezesQualifiedLessonsIntoPendingPayout(t *testing.T) {
	// GIVEN: a completed lesson (100.00) and a late-cancelled one (50.00)
	// WHEN: a payout is created for the period
	// THEN: a pending payout with two frozen line items, totalAmount=150.00
	// and totalHours=2.00

	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")
	f.addLateCancelled(time.Date(2025, 1, 12, 14, 0, 0, 0, time.UTC), 60, 2*time.Hour, "Jan Kowalski")

	created, preview, err := f.service.Create(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.NoError(t, err)

	assert.Equal(t, models.PayoutPending, created.Status)
	assert.Equal(t, "150.00", created.TotalAmount.StringFixed(2))
	assert.Equal(t, "2.00", created.TotalHours.StringFixed(2))
	assert.Equal(t, "PLN", created.Currency)
	require.Len(t, created.LineItems, 2)
	assert.Equal(t, string(payout.ReasonCompleted), created.LineItems[0].QualificationReason)
	assert.Equal(t, string(payout.ReasonLateCancellation), created.LineItems[1].QualificationReason)
	assert.Equal(t, "150.00", preview.TotalAmount.StringFixed(2))
}

func TestCreate_EmptyPeriodIsRejected(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.service.Create(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)

	require.ErrorIs(t, err, payout.ErrNothingToPay)
}

func TestCreate_SecondCreateForSamePeriodFindsNothing(t *testing.T) {
	// Once a payout claims the period's lessons, re-running create for the
	// same period must not pay them twice.

	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")

	_, _, err := f.service.Create(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.NoError(t, err)

	_, _, err = f.service.Create(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.ErrorIs(t, err, payout.ErrNothingToPay)
}

func TestCreate_OverlappingPeriodExcludesClaimedLessons(t *testing.T) {
	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")
	unclaimed := f.addLesson(models.LessonCompleted, time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC), 60, "Jan Kowalski")

	// First payout covers only the first half of the month.
	_, _, err := f.service.Create(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 15), nil)
	require.NoError(t, err)

	// A full-month preview afterwards only sees the unclaimed lesson.
	preview, err := f.service.Preview(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	require.Len(t, preview.Lessons, 1)
	assert.Equal(t, unclaimed.ID, preview.Lessons[0].LessonID)
}

func TestCreate_ConcurrentClaimSurfacesAsConflict(t *testing.T) {
	// Simulates two admins racing to create a payout for the same lessons:
	// the second write hits the storage-level claim and gets a conflict.

	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")

	ctx := context.Background()
	preview, err := f.service.Preview(ctx, f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	require.Len(t, preview.Lessons, 1)

	// First admin wins.
	_, _, err = f.service.Create(ctx, f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.NoError(t, err)

	// Second admin writes directly from the stale preview.
	stale := &models.TeacherPayout{
		ID:             uuid.New(),
		OrganizationID: f.orgID,
		TeacherID:      f.teacherID,
		Status:         models.PayoutPending,
	}
	err = f.store.CreatePayout(ctx, stale, []models.PayoutLineItem{{
		LessonID: preview.Lessons[0].LessonID,
	}})
	require.Error(t, err)
	assert.True(t, payout.IsConflict(err))
}

func TestSetStatus_PendingApprovedPaidFlow(t *testing.T) {
	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")
	created, _, err := f.service.Create(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.NoError(t, err)

	ctx := context.Background()

	approved, err := f.service.SetStatus(ctx, f.orgID, created.ID, models.PayoutApproved)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutApproved, approved.Status)
	assert.Nil(t, approved.PaidAt)

	paid, err := f.service.SetStatus(ctx, f.orgID, created.ID, models.PayoutPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
}

func TestSetStatus_RejectsInvalidTransitions(t *testing.T) {
	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")
	created, _, err := f.service.Create(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.NoError(t, err)

	ctx := context.Background()

	// Pending cannot jump straight to paid.
	_, err = f.service.SetStatus(ctx, f.orgID, created.ID, models.PayoutPaid)
	require.Error(t, err)
	assert.True(t, payout.IsValidation(err))

	_, err = f.service.SetStatus(ctx, f.orgID, created.ID, models.PayoutApproved)
	require.NoError(t, err)
	_, err = f.service.SetStatus(ctx, f.orgID, created.ID, models.PayoutPaid)
	require.NoError(t, err)

	// Paid is terminal.
	_, err = f.service.SetStatus(ctx, f.orgID, created.ID, models.PayoutCancelled)
	require.Error(t, err)
	assert.True(t, payout.IsValidation(err))

	_, err = f.service.SetStatus(ctx, f.orgID, created.ID, "archived")
	require.Error(t, err)
	assert.True(t, payout.IsValidation(err))
}

func TestSetStatus_CancellingReleasesLessons(t *testing.T) {
	// Cancelling a payout must put its lessons back into the unpaid pool so
	// a corrected payout can pick them up.

	f := newFixture(t)
	lesson := f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")
	created, _, err := f.service.Create(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.NoError(t, err)

	ctx := context.Background()

	preview, err := f.service.Preview(ctx, f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	assert.Empty(t, preview.Lessons)

	cancelled, err := f.service.SetStatus(ctx, f.orgID, created.ID, models.PayoutCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutCancelled, cancelled.Status)
	for _, item := range cancelled.LineItems {
		assert.True(t, item.Released)
	}

	preview, err = f.service.Preview(ctx, f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31))
	require.NoError(t, err)
	require.Len(t, preview.Lessons, 1)
	assert.Equal(t, lesson.ID, preview.Lessons[0].LessonID)

	// The cancelled payout itself stays on record.
	kept, err := f.service.Get(ctx, f.orgID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutCancelled, kept.Status)
}

func TestDelete_OnlyLatestPendingPayout(t *testing.T) {
	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")
	f.addLesson(models.LessonCompleted, time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")

	ctx := context.Background()
	january, _, err := f.service.Create(ctx, f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.NoError(t, err)
	february, _, err := f.service.Create(ctx, f.orgID, f.teacherID, date(2025, 2, 1), date(2025, 2, 28), nil)
	require.NoError(t, err)

	// January is no longer the most recent payout.
	err = f.service.Delete(ctx, f.orgID, january.ID)
	require.Error(t, err)
	assert.True(t, payout.IsConflict(err))

	// February is, so it goes, and its lesson is previewable again.
	require.NoError(t, f.service.Delete(ctx, f.orgID, february.ID))
	_, err = f.service.Get(ctx, f.orgID, february.ID)
	assert.True(t, payout.IsNotFound(err))

	preview, err := f.service.Preview(ctx, f.orgID, f.teacherID, date(2025, 2, 1), date(2025, 2, 28))
	require.NoError(t, err)
	assert.Len(t, preview.Lessons, 1)
}

func TestDelete_NonPendingPayoutIsRejected(t *testing.T) {
	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")
	created, _, err := f.service.Create(context.Background(), f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = f.service.SetStatus(ctx, f.orgID, created.ID, models.PayoutApproved)
	require.NoError(t, err)

	err = f.service.Delete(ctx, f.orgID, created.ID)
	require.Error(t, err)
	assert.True(t, payout.IsConflict(err))
}

func TestList_NewestFirst(t *testing.T) {
	f := newFixture(t)
	f.addLesson(models.LessonCompleted, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")
	f.addLesson(models.LessonCompleted, time.Date(2025, 2, 10, 10, 0, 0, 0, time.UTC), 60, "Anna Nowak")

	ctx := context.Background()
	january, _, err := f.service.Create(ctx, f.orgID, f.teacherID, date(2025, 1, 1), date(2025, 1, 31), nil)
	require.NoError(t, err)
	february, _, err := f.service.Create(ctx, f.orgID, f.teacherID, date(2025, 2, 1), date(2025, 2, 28), nil)
	require.NoError(t, err)

	payouts, err := f.service.List(ctx, f.orgID, f.teacherID)
	require.NoError(t, err)
	require.Len(t, payouts, 2)
	assert.Equal(t, february.ID, payouts[0].ID)
	assert.Equal(t, january.ID, payouts[1].ID)
}
