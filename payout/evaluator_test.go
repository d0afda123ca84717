package payout_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/linguadesk/backoffice/models"
	"github.com/linguadesk/backoffice/payout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() payout.Policy {
	return payout.Policy{
		Timezone:                    "UTC",
		LateCancellationWindowHours: 24,
		LateCancellationPercent:     50,
	}
}

func lessonAt(status string, scheduledAt time.Time, durationMinutes int) models.Lesson {
	return models.Lesson{
		ID:              uuid.New(),
		OrganizationID:  uuid.New(),
		TeacherID:       uuid.New(),
		StudentID:       uuid.New(),
		ScheduledAt:     scheduledAt,
		DurationMinutes: durationMinutes,
		Status:          status,
	}
}

func TestEvaluator_DecisionRules(t *testing.T) {
	now := time.Now()
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	cancelledLateAt := func(scheduled time.Time, hoursBefore time.Duration) models.Lesson {
		l := lessonAt(models.LessonCancelled, scheduled, 60)
		cancelledAt := scheduled.Add(-hoursBefore)
		l.CancelledAt = &cancelledAt
		return l
	}

	tests := []struct {
		name        string
		lesson      models.Lesson
		wantPayable bool
		wantReason  payout.Reason
		wantPercent int
	}{
		{
			name:        "completed lesson pays in full",
			lesson:      lessonAt(models.LessonCompleted, past, 60),
			wantPayable: true,
			wantReason:  payout.ReasonCompleted,
			wantPercent: 100,
		},
		{
			name:        "confirmed lesson pays in full",
			lesson:      lessonAt(models.LessonConfirmed, past, 60),
			wantPayable: true,
			wantReason:  payout.ReasonConfirmed,
			wantPercent: 100,
		},
		{
			name:        "scheduled lesson in the past counts as confirmed",
			lesson:      lessonAt(models.LessonScheduled, past, 60),
			wantPayable: true,
			wantReason:  payout.ReasonConfirmed,
			wantPercent: 100,
		},
		{
			name:        "scheduled lesson in the future is not payable",
			lesson:      lessonAt(models.LessonScheduled, future, 60),
			wantPayable: false,
		},
		{
			name:        "cancellation inside the window pays the partial percent",
			lesson:      cancelledLateAt(future, 2*time.Hour),
			wantPayable: true,
			wantReason:  payout.ReasonLateCancellation,
			wantPercent: 50,
		},
		{
			name:        "cancellation after the lesson started is inside the window",
			lesson:      cancelledLateAt(past, -1*time.Hour),
			wantPayable: true,
			wantReason:  payout.ReasonLateCancellation,
			wantPercent: 50,
		},
		{
			name:        "timely cancellation is not payable",
			lesson:      cancelledLateAt(future, 30*time.Hour),
			wantPayable: false,
		},
		{
			name:        "cancelled lesson without a cancellation timestamp is not payable",
			lesson:      lessonAt(models.LessonCancelled, past, 60),
			wantPayable: false,
		},
		{
			name:        "student no-show is not payable",
			lesson:      lessonAt(models.LessonNoShow, past, 60),
			wantPayable: false,
		},
		{
			name:        "unknown status is not payable",
			lesson:      lessonAt("reschedule_requested", past, 60),
			wantPayable: false,
		},
	}

	evaluator := payout.NewEvaluator(testPolicy())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := evaluator.Evaluate(tt.lesson)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPayable, decision.Payable)
			if tt.wantPayable {
				assert.Equal(t, tt.wantReason, decision.Reason)
				assert.Equal(t, tt.wantPercent, decision.Percent)
			}
		})
	}
}

func TestEvaluator_ZeroDurationIsDataIntegrityError(t *testing.T) {
	evaluator := payout.NewEvaluator(testPolicy())

	_, err := evaluator.Evaluate(lessonAt(models.LessonCompleted, time.Now().Add(-time.Hour), 0))

	require.Error(t, err)
	var integrityErr *payout.DataIntegrityError
	assert.ErrorAs(t, err, &integrityErr)
}

func TestEvaluator_ZeroPercentPolicyExcludesLateCancellations(t *testing.T) {
	policy := testPolicy()
	policy.LateCancellationPercent = 0
	evaluator := payout.NewEvaluator(policy)

	scheduled := time.Now().Add(24 * time.Hour)
	lesson := lessonAt(models.LessonCancelled, scheduled, 60)
	cancelledAt := scheduled.Add(-2 * time.Hour)
	lesson.CancelledAt = &cancelledAt

	decision, err := evaluator.Evaluate(lesson)
	require.NoError(t, err)
	assert.False(t, decision.Payable)
}

func TestEvaluator_PercentAboveHundredIsClamped(t *testing.T) {
	policy := testPolicy()
	policy.LateCancellationPercent = 150
	evaluator := payout.NewEvaluator(policy)

	scheduled := time.Now().Add(24 * time.Hour)
	lesson := lessonAt(models.LessonCancelled, scheduled, 60)
	cancelledAt := scheduled.Add(-2 * time.Hour)
	lesson.CancelledAt = &cancelledAt

	decision, err := evaluator.Evaluate(lesson)
	require.NoError(t, err)
	require.True(t, decision.Payable)
	assert.Equal(t, 100, decision.Percent)
}
