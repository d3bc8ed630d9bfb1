package verikit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventCodeRequest        = "code_request"
	auditEventCodeRateLimited    = "code_request_rate_limited"
	auditEventCodeDeliveryFailed = "code_delivery_failed"
	auditEventCodeVerify         = "code_verify"
	auditEventTokenIssued        = "token_issued"
)

// AuditErrorCode defines a public type used by verikit APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrRateLimited      AuditErrorCode = "rate_limited"
	auditErrExpired          AuditErrorCode = "expired"
	auditErrMismatch         AuditErrorCode = "mismatch"
	auditErrAttemptsExceeded AuditErrorCode = "attempts_exceeded"
	auditErrDeliveryFailed   AuditErrorCode = "delivery_failed"
	auditErrInvalidInput     AuditErrorCode = "invalid_input"
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identity string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if requestID := requestIDFromContext(ctx); requestID != "" {
		if metadata == nil {
			metadata = make(map[string]string, 1)
		}
		metadata["request_id"] = requestID
	}

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Identity:  identity,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, errAuditExpired):
		return auditErrExpired
	case errors.Is(err, errAuditMismatch):
		return auditErrMismatch
	case errors.Is(err, errAuditAttemptsExceeded):
		return auditErrAttemptsExceeded
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrDeliveryFailed):
		return auditErrDeliveryFailed
	case errors.Is(err, ErrIdentityInvalid), errors.Is(err, ErrCodeInvalid):
		return auditErrInvalidInput
	case errors.Is(err, ErrStoreUnavailable),
		errors.Is(err, ErrIssueUnavailable),
		errors.Is(err, ErrTokenUnavailable):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}

// auditOutcomeError maps a protocol outcome onto the audit error taxonomy so
// verify events carry a machine-readable failure code without becoming Go
// errors.
func auditOutcomeError(outcome Outcome) error {
	switch outcome {
	case OutcomeExpired:
		return errAuditExpired
	case OutcomeMismatch:
		return errAuditMismatch
	case OutcomeTooManyAttempts:
		return errAuditAttemptsExceeded
	default:
		return nil
	}
}

var (
	errAuditExpired          = errors.New("audit: expired")
	errAuditMismatch         = errors.New("audit: mismatch")
	errAuditAttemptsExceeded = errors.New("audit: attempts exceeded")
)
