package verikit

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/verikit/verikit/internal"
	"github.com/verikit/verikit/internal/limiters"
)

// RequestCode issues a fresh one-time code for identity and hands it to the
// configured [DeliveryChannel].
//
// The sequence is cooldown check, generate, store, deliver. A request inside
// the cooldown window returns ErrRateLimited with the remaining wait in the
// result; a cooldown check that cannot reach Redis fails open so delivery
// availability wins over strict enforcement. Storing the new code overwrites
// any outstanding code for the identity, invalidating it immediately.
// Delivery failure is reported as ErrDeliveryFailed but the stored code and
// the cooldown marker stay in place: an immediate retry is still throttled.
func (e *Engine) RequestCode(ctx context.Context, identity string) (IssueResult, error) {
	if e == nil || e.codeStore == nil {
		return IssueResult{}, ErrEngineNotReady
	}

	identity = normalizeIdentity(identity)
	if identity == "" {
		e.emitAudit(ctx, auditEventCodeRequest, false, "", ErrIdentityInvalid, nil)
		return IssueResult{}, ErrIdentityInvalid
	}

	if e.config.RateLimit.Enabled && e.rateLimiter != nil {
		allowed, wait, err := e.rateLimiter.Acquire(ctx, identity)
		if errors.Is(err, limiters.ErrLimiterUnavailable) {
			// Fail open: an unreachable limiter must not block issuance.
			e.metricInc(MetricStoreUnavailable)
			allowed = true
		}
		if !allowed {
			waitSeconds := int(math.Ceil(wait.Seconds()))
			e.metricInc(MetricCodeRateLimited)
			e.emitAudit(ctx, auditEventCodeRateLimited, false, identity, ErrRateLimited, func() map[string]string {
				return map[string]string{
					"wait_seconds": strconv.Itoa(waitSeconds),
				}
			})
			return IssueResult{Accepted: false, WaitSeconds: waitSeconds}, ErrRateLimited
		}
	}

	code, err := internal.NewCode(e.config.Code.Digits)
	if err != nil {
		e.emitAudit(ctx, auditEventCodeRequest, false, identity, ErrIssueUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "generation_failed",
			}
		})
		return IssueResult{}, ErrIssueUnavailable
	}

	if err := e.codeStore.Save(ctx, identity, code, e.config.Code.TTL); err != nil {
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditEventCodeRequest, false, identity, ErrStoreUnavailable, nil)
		return IssueResult{}, ErrStoreUnavailable
	}

	if e.delivery != nil {
		if err := e.delivery.Deliver(ctx, identity, code, e.config.Code.Purpose); err != nil {
			// The code is stored and remains verifiable; only the send failed.
			e.metricInc(MetricCodeDeliveryFailed)
			e.emitAudit(ctx, auditEventCodeDeliveryFailed, false, identity, ErrDeliveryFailed, nil)
			return IssueResult{Accepted: true}, ErrDeliveryFailed
		}
	}

	e.metricInc(MetricCodeIssued)
	e.emitAudit(ctx, auditEventCodeRequest, true, identity, nil, nil)
	return IssueResult{Accepted: true}, nil
}
