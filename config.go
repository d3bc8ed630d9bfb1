package verikit

import (
	"errors"
	"time"
)

// Config defines a public type used by verikit APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Code        CodeConfig
	RateLimit   RateLimitConfig
	AccessToken AccessTokenConfig
	Keys        KeysConfig
	Audit       AuditConfig
	Metrics     MetricsConfig
}

/*
====================================
CODE CONFIG
====================================
*/

// CodeConfig defines a public type used by verikit APIs.
//
// CodeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CodeConfig struct {
	Digits      int
	TTL         time.Duration
	MaxAttempts int
	Purpose     string
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig defines a public type used by verikit APIs.
//
// RateLimitConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RateLimitConfig struct {
	Enabled  bool
	Cooldown time.Duration
}

/*
====================================
ACCESS TOKEN CONFIG
====================================
*/

// AccessTokenConfig defines a public type used by verikit APIs.
//
// AccessTokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccessTokenConfig struct {
	Enabled bool
	TTL     time.Duration
}

/*
====================================
KEY NAMESPACES
====================================
*/

// KeysConfig holds the Redis key prefixes for the three record namespaces.
// Prefixes must be non-empty and pairwise distinct so code records, cooldown
// markers, and access tokens can never collide.
type KeysConfig struct {
	CodePrefix  string
	RatePrefix  string
	TokenPrefix string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by verikit APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by verikit APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Code: CodeConfig{
			Digits:      6,
			TTL:         3 * time.Minute,
			MaxAttempts: 5,
			Purpose:     "verification",
		},
		RateLimit: RateLimitConfig{
			Enabled:  true,
			Cooldown: 60 * time.Second,
		},
		AccessToken: AccessTokenConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Keys: KeysConfig{
			CodePrefix:  "vc",
			RatePrefix:  "vr",
			TokenPrefix: "vt",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig describes the defaultconfig operation and its observable behavior.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Code
	if c.Code.Digits < 4 || c.Code.Digits > 10 {
		return errors.New("Code Digits must be between 4 and 10")
	}
	if c.Code.TTL <= 0 {
		return errors.New("Code TTL must be > 0")
	}
	if c.Code.TTL > time.Hour {
		return errors.New("Code TTL must be <= 1h")
	}
	if c.Code.MaxAttempts <= 0 {
		return errors.New("Code MaxAttempts must be > 0")
	}
	if c.Code.MaxAttempts > 10 {
		return errors.New("Code MaxAttempts must be <= 10")
	}
	if c.Code.Purpose == "" {
		return errors.New("Code Purpose must not be empty")
	}

	// Rate limit
	if c.RateLimit.Enabled {
		if c.RateLimit.Cooldown <= 0 {
			return errors.New("RateLimit Cooldown must be > 0 when rate limiting is enabled")
		}
		if c.RateLimit.Cooldown > c.Code.TTL {
			return errors.New("RateLimit Cooldown must be <= Code TTL")
		}
	}

	// Access token
	if c.AccessToken.Enabled {
		if c.AccessToken.TTL <= 0 {
			return errors.New("AccessToken TTL must be > 0 when token issuance is enabled")
		}
	}

	// Key namespaces
	if c.Keys.CodePrefix == "" || c.Keys.RatePrefix == "" || c.Keys.TokenPrefix == "" {
		return errors.New("Keys prefixes must not be empty")
	}
	if c.Keys.CodePrefix == c.Keys.RatePrefix ||
		c.Keys.CodePrefix == c.Keys.TokenPrefix ||
		c.Keys.RatePrefix == c.Keys.TokenPrefix {
		return errors.New("Keys prefixes must be pairwise distinct")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}
