package verikit

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the verification engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrIdentityInvalid is an exported constant or variable used by the verification engine.
	ErrIdentityInvalid = errors.New("invalid identity")
	// ErrCodeInvalid is an exported constant or variable used by the verification engine.
	ErrCodeInvalid = errors.New("invalid code input")
	// ErrRateLimited is an exported constant or variable used by the verification engine.
	ErrRateLimited = errors.New("code issuance rate limited")
	// ErrStoreUnavailable is an exported constant or variable used by the verification engine.
	ErrStoreUnavailable = errors.New("key-value store unavailable")
	// ErrDeliveryFailed is an exported constant or variable used by the verification engine.
	ErrDeliveryFailed = errors.New("code delivery failed")
	// ErrIssueUnavailable is an exported constant or variable used by the verification engine.
	ErrIssueUnavailable = errors.New("code issuance backend unavailable")
	// ErrTokenDisabled is an exported constant or variable used by the verification engine.
	ErrTokenDisabled = errors.New("access token issuance disabled")
	// ErrTokenUnavailable is an exported constant or variable used by the verification engine.
	ErrTokenUnavailable = errors.New("access token backend unavailable")
)
