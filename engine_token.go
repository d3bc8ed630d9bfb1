package verikit

import (
	"context"
	"errors"

	"github.com/verikit/verikit/internal"
	"github.com/verikit/verikit/internal/stores"
)

// ExchangeForToken mints an opaque access token bound to identity and stores
// it under the token's own fixed TTL.
//
// The issuer does not re-check verification state: it must only be called
// after [Engine.SubmitCode] reported OutcomeSuccess for the same identity.
// The token value is independent high-entropy randomness, never derived from
// the identity.
func (e *Engine) ExchangeForToken(ctx context.Context, identity string) (string, error) {
	if e == nil || e.tokenStore == nil {
		return "", ErrEngineNotReady
	}
	if !e.config.AccessToken.Enabled {
		return "", ErrTokenDisabled
	}

	identity = normalizeIdentity(identity)
	if identity == "" {
		e.emitAudit(ctx, auditEventTokenIssued, false, "", ErrIdentityInvalid, nil)
		return "", ErrIdentityInvalid
	}

	token, err := internal.NewAccessToken()
	if err != nil {
		e.emitAudit(ctx, auditEventTokenIssued, false, identity, ErrTokenUnavailable, func() map[string]string {
			return map[string]string{
				"reason": "generation_failed",
			}
		})
		return "", ErrTokenUnavailable
	}

	if err := e.tokenStore.Save(ctx, token, identity, e.config.AccessToken.TTL); err != nil {
		e.metricInc(MetricStoreUnavailable)
		e.emitAudit(ctx, auditEventTokenIssued, false, identity, ErrStoreUnavailable, nil)
		return "", ErrStoreUnavailable
	}

	e.metricInc(MetricTokenIssued)
	e.emitAudit(ctx, auditEventTokenIssued, true, identity, nil, nil)
	return token, nil
}

// CheckToken resolves an access token to the identity it proves. Absent,
// malformed, and expired tokens all report Valid false; no attempt counting
// applies because tokens are unguessable by construction. The lookup never
// renews the token's TTL.
func (e *Engine) CheckToken(ctx context.Context, token string) (TokenInfo, error) {
	if e == nil || e.tokenStore == nil {
		return TokenInfo{}, ErrEngineNotReady
	}
	if !e.config.AccessToken.Enabled {
		return TokenInfo{}, ErrTokenDisabled
	}

	if token == "" || internal.ValidateAccessToken(token) != nil {
		e.metricInc(MetricTokenCheckInvalid)
		return TokenInfo{}, nil
	}

	record, err := e.tokenStore.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, stores.ErrTokenNotFound) {
			e.metricInc(MetricTokenCheckInvalid)
			return TokenInfo{}, nil
		}
		e.metricInc(MetricStoreUnavailable)
		return TokenInfo{}, ErrStoreUnavailable
	}

	e.metricInc(MetricTokenCheckValid)
	return TokenInfo{Valid: true, Identity: record.Identity}, nil
}
