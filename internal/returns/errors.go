package returns

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("return request not found")
	ErrValidation          = errors.New("validation failed")
	ErrStaleState          = errors.New("stale state: version mismatch, refetch and retry")
	ErrInvalidTransition   = errors.New("invalid transition")
	ErrDuplicateInspection = errors.New("inspection already recorded for this return")
	ErrDuplicateRefund     = errors.New("refund already recorded for this return")
	ErrRefundExceedsLimit  = errors.New("refund amount exceeds the claimed amount")
	ErrInvalidAmount       = errors.New("amounts must be non-negative")
	ErrReasonRequired      = errors.New("rejection reason is required")
	ErrInspectionRequired  = errors.New("inspection record is required before refund")

	// ErrRefundPending is a transient gateway failure: no RefundRecord was
	// created and the caller may retry with the same idempotency key.
	ErrRefundPending = errors.New("refund pending: payment gateway unavailable")

	// ErrRefundFailed is a permanent payment failure; the request stays
	// inspected for manual resolution.
	ErrRefundFailed = errors.New("refund failed: payment rejected")
)

// InvalidTransitionError reports the authoritative current status so the
// caller can reconcile.
type InvalidTransitionError struct {
	Current Status
	Target  Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot move from %q to %q", e.Current, e.Target)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
