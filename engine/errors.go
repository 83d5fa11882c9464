package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidGranularity is returned by Quantize for a non-positive
// tick/step.
var ErrInvalidGranularity = errors.New("granularity must be positive")

// Reason is a machine-readable rejection code, distinct per guard so
// callers can log and notify precisely.
type Reason string

const (
	ReasonAssetNotAllowed       Reason = "ASSET_NOT_ALLOWED"
	ReasonMarginFractionTooHigh Reason = "MARGIN_FRACTION_TOO_HIGH"
	ReasonDuplicatePosition     Reason = "DUPLICATE_POSITION"
	ReasonNoOpenPosition        Reason = "NO_OPEN_POSITION"
	ReasonDirectionMismatch     Reason = "DIRECTION_MISMATCH"
)

// Decision is a guard verdict. A rejected decision carries exactly one
// reason; guards short-circuit on the first violated check.
type Decision struct {
	Allowed bool
	Reason  Reason
	Msg     string
}

func allowed() Decision {
	return Decision{Allowed: true}
}

func rejected(code Reason, format string, args ...any) Decision {
	return Decision{Reason: code, Msg: fmt.Sprintf(format, args...)}
}

// Err converts a rejected decision into an error; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &RejectionError{Reason: d.Reason, Msg: d.Msg}
}

// RejectionError is a guard rejection surfaced as an error.
type RejectionError struct {
	Reason Reason
	Msg    string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("signal rejected (%s): %s", e.Reason, e.Msg)
}

// SubmissionError wraps a venue-side failure to place an order. Bracket
// reports whether the failure happened while placing a stop-loss or
// take-profit after the primary order already went through; that case
// leaves an unprotected open position and must be told apart from a
// primary-order failure.
type SubmissionError struct {
	Bracket bool
	Cause   error
}

func (e *SubmissionError) Error() string {
	if e.Bracket {
		return fmt.Sprintf("bracket order submission failed (position is unprotected): %v", e.Cause)
	}
	return fmt.Sprintf("order submission failed: %v", e.Cause)
}

func (e *SubmissionError) Unwrap() error { return e.Cause }
