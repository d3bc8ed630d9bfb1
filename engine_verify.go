package verikit

import (
	"context"
	"crypto/subtle"
	"errors"
	"strconv"
	"time"

	"github.com/verikit/verikit/internal/stores"
)

// SubmitCode checks a user-submitted code against the outstanding record for
// identity and returns a typed [VerifyResult].
//
// The protocol, in order: a missing record (never requested, consumed, or
// TTL lapsed) is OutcomeExpired; a record already at the attempt limit is
// removed and reported OutcomeTooManyAttempts, so even the correct code is
// rejected after lockout; a wrong code consumes one attempt through an
// atomic, TTL-preserving increment and reports OutcomeMismatch with the
// remaining budget; a match removes the record and reports OutcomeSuccess.
//
// The only error path is store connectivity (fail closed): the caller should
// surface a generic retry message, nothing was decided.
func (e *Engine) SubmitCode(ctx context.Context, identity, submitted string) (VerifyResult, error) {
	if e == nil || e.codeStore == nil {
		return VerifyResult{}, ErrEngineNotReady
	}

	start := time.Now()

	identity = normalizeIdentity(identity)
	if identity == "" {
		return VerifyResult{}, ErrIdentityInvalid
	}
	if submitted == "" {
		return VerifyResult{}, ErrCodeInvalid
	}

	result, err := e.verify(ctx, identity, submitted)
	if err != nil {
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditEventCodeVerify, false, identity, err, nil)
		return VerifyResult{}, err
	}

	e.observeVerify(ctx, identity, result, start)
	return result, nil
}

func (e *Engine) verify(ctx context.Context, identity, submitted string) (VerifyResult, error) {
	record, err := e.codeStore.Get(ctx, identity)
	if err != nil {
		if errors.Is(err, stores.ErrCodeNotFound) {
			return VerifyResult{Outcome: OutcomeExpired}, nil
		}
		return VerifyResult{}, ErrStoreUnavailable
	}

	maxAttempts := e.config.Code.MaxAttempts

	// Lockout is checked before comparison: once the budget is spent, the
	// correct code no longer verifies and a fresh issuance is required.
	if int(record.Attempts) >= maxAttempts {
		if err := e.codeStore.Remove(ctx, identity); err != nil {
			return VerifyResult{}, ErrStoreUnavailable
		}
		return VerifyResult{Outcome: OutcomeTooManyAttempts}, nil
	}

	if subtle.ConstantTimeCompare([]byte(submitted), []byte(record.Code)) != 1 {
		count, err := e.codeStore.IncrementAttempts(ctx, identity)
		if err != nil {
			if errors.Is(err, stores.ErrCodeNotFound) {
				// Record expired between the read and the increment.
				return VerifyResult{Outcome: OutcomeExpired}, nil
			}
			return VerifyResult{}, ErrStoreUnavailable
		}
		if count >= maxAttempts {
			// The record stays until the lockout check on the next call (or
			// its TTL) so a late correct submission still reports lockout
			// rather than expiry.
			return VerifyResult{Outcome: OutcomeTooManyAttempts}, nil
		}
		return VerifyResult{
			Outcome:           OutcomeMismatch,
			RemainingAttempts: maxAttempts - count,
		}, nil
	}

	if err := e.codeStore.Remove(ctx, identity); err != nil {
		return VerifyResult{}, ErrStoreUnavailable
	}
	return VerifyResult{Outcome: OutcomeSuccess}, nil
}

func (e *Engine) observeVerify(ctx context.Context, identity string, result VerifyResult, start time.Time) {
	switch result.Outcome {
	case OutcomeSuccess:
		e.metricInc(MetricVerifySuccess)
	case OutcomeExpired:
		e.metricInc(MetricVerifyExpired)
	case OutcomeMismatch:
		e.metricInc(MetricVerifyMismatch)
	case OutcomeTooManyAttempts:
		e.metricInc(MetricVerifyLockout)
	}
	e.metricObserve(MetricVerifyLatency, time.Since(start))

	e.emitAudit(ctx, auditEventCodeVerify, result.Outcome == OutcomeSuccess, identity,
		auditOutcomeError(result.Outcome), func() map[string]string {
			md := map[string]string{
				"outcome": result.Outcome.String(),
			}
			if result.Outcome == OutcomeMismatch {
				md["remaining_attempts"] = strconv.Itoa(result.RemainingAttempts)
			}
			return md
		})
}
