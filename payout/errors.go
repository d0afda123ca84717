package payout

import (
	"errors"
	"fmt"
)

// ErrNothingToPay is returned by Create when the recomputed qualified-lesson
// set for the period is empty. Distinct from a generic failure so callers can
// tell the admin there is simply nothing left to pay.
var ErrNothingToPay = errors.New("no qualified lessons to pay in this period")

// ValidationError reports malformed input (bad period, invalid status
// target). Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a missing teacher or payout, including one that
// exists but belongs to another organization.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError reports a concurrent lesson-claim race detected at commit
// time, or a delete attempt against a non-latest or non-pending payout.
// Callers should re-fetch a fresh preview and retry.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// DataIntegrityError flags state that upstream invariants should have made
// impossible, e.g. a zero-duration lesson reaching the evaluator. It is a bug
// signal, not an expected runtime condition.
type DataIntegrityError struct {
	Message string
}

func (e *DataIntegrityError) Error() string {
	return e.Message
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
