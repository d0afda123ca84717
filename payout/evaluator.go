package payout

import (
	"fmt"
	"time"

	"github.com/linguadesk/backoffice/models"
)

// Evaluator decides, per lesson, whether the teacher gets paid and at what
// percentage. It is pure: same lesson, same policy, same clock, same verdict.
type Evaluator struct {
	policy Policy
	now    func() time.Time
}

func NewEvaluator(policy Policy) *Evaluator {
	return &Evaluator{policy: policy, now: time.Now}
}

// Evaluate maps a lesson's final state to a payout decision.
//
//   - completed lessons pay 100%
//   - confirmed lessons, and scheduled lessons whose time has already passed
//     with no recorded outcome, pay 100% (the teacher showed up; the status
//     workflow lives outside this package and is trusted as handed in)
//   - lessons cancelled inside the organization's late-cancellation window
//     pay the configured partial percent
//   - everything else (timely cancellations, student no-shows, future
//     lessons) is not payable and never becomes a line item
func (e *Evaluator) Evaluate(lesson models.Lesson) (Decision, error) {
	if lesson.DurationMinutes <= 0 {
		return Decision{}, &DataIntegrityError{
			Message: fmt.Sprintf("lesson %s has non-positive duration %d", lesson.ID, lesson.DurationMinutes),
		}
	}

	switch lesson.Status {
	case models.LessonCompleted:
		return Decision{Payable: true, Reason: ReasonCompleted, Percent: 100}, nil

	case models.LessonConfirmed:
		return Decision{Payable: true, Reason: ReasonConfirmed, Percent: 100}, nil

	case models.LessonScheduled:
		if lesson.ScheduledAt.Before(e.now()) {
			return Decision{Payable: true, Reason: ReasonConfirmed, Percent: 100}, nil
		}
		return Decision{}, nil

	case models.LessonCancelled:
		if lesson.CancelledAt == nil {
			return Decision{}, nil
		}
		window := time.Duration(e.policy.LateCancellationWindowHours) * time.Hour
		if window <= 0 || e.policy.LateCancellationPercent <= 0 {
			return Decision{}, nil
		}
		// A cancellation after the lesson started is by definition inside
		// the window.
		if lesson.ScheduledAt.Sub(*lesson.CancelledAt) < window {
			percent := e.policy.LateCancellationPercent
			if percent > 100 {
				percent = 100
			}
			return Decision{Payable: true, Reason: ReasonLateCancellation, Percent: percent}, nil
		}
		return Decision{}, nil

	default:
		// no_show and any status this package does not know about.
		return Decision{}, nil
	}
}
