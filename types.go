package verikit

import "context"

// Outcome classifies the result of a single code submission. Every submission
// resolves to exactly one outcome; storage faults are reported as errors
// alongside a zero VerifyResult instead.
//
//	Docs: docs/verification.md
type Outcome uint8

const (
	// OutcomeSuccess is an exported constant or variable used by the verification engine.
	OutcomeSuccess Outcome = iota
	// OutcomeExpired is an exported constant or variable used by the verification engine.
	OutcomeExpired
	// OutcomeTooManyAttempts is an exported constant or variable used by the verification engine.
	OutcomeTooManyAttempts
	// OutcomeMismatch is an exported constant or variable used by the verification engine.
	OutcomeMismatch
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeExpired:
		return "expired"
	case OutcomeTooManyAttempts:
		return "too_many_attempts"
	case OutcomeMismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// IssueResult is returned by [Engine.RequestCode]. When the request is denied
// by the cooldown window, Accepted is false and WaitSeconds carries the
// remaining seconds until a new request may succeed.
type IssueResult struct {
	Accepted    bool
	WaitSeconds int
}

// VerifyResult is returned by [Engine.SubmitCode]. RemainingAttempts is only
// meaningful for OutcomeMismatch and counts the wrong guesses still permitted
// for the outstanding code.
type VerifyResult struct {
	Outcome           Outcome
	RemainingAttempts int
}

// TokenInfo is returned by [Engine.CheckToken]. Identity is set only when
// Valid is true. Absent, malformed, and expired tokens all report Valid false
// with no further distinction.
type TokenInfo struct {
	Valid    bool
	Identity string
}

// DeliveryChannel is the collaborator interface that callers must implement to
// carry generated codes out of band. The destination is the normalized
// identity the code was issued for (an email address or an external platform
// account id); purpose is the configured human-readable label for the flow.
//
// Deliver is called at most once per issued code and is never retried by the
// engine. A delivery error is surfaced to the caller as [ErrDeliveryFailed]
// but does not invalidate the already-stored code or the cooldown marker:
// an immediate retry must still be throttled.
//
//	Docs: docs/delivery.md
type DeliveryChannel interface {
	Deliver(ctx context.Context, destination, code, purpose string) error
}
