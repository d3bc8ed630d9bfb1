package verikit

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	if cfg.Code.Digits != 6 {
		t.Fatalf("expected 6 digits, got %d", cfg.Code.Digits)
	}
	if cfg.Code.MaxAttempts != 5 {
		t.Fatalf("expected 5 max attempts, got %d", cfg.Code.MaxAttempts)
	}
	if cfg.RateLimit.Cooldown != 60*time.Second {
		t.Fatalf("expected 60s cooldown, got %v", cfg.RateLimit.Cooldown)
	}
	if cfg.AccessToken.TTL != 24*time.Hour {
		t.Fatalf("expected 24h token TTL, got %v", cfg.AccessToken.TTL)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"digits too small", func(c *Config) { c.Code.Digits = 3 }, "Digits"},
		{"digits too large", func(c *Config) { c.Code.Digits = 11 }, "Digits"},
		{"zero code ttl", func(c *Config) { c.Code.TTL = 0 }, "TTL"},
		{"zero max attempts", func(c *Config) { c.Code.MaxAttempts = 0 }, "MaxAttempts"},
		{"empty purpose", func(c *Config) { c.Code.Purpose = "" }, "Purpose"},
		{"zero cooldown", func(c *Config) { c.RateLimit.Cooldown = 0 }, "Cooldown"},
		{"cooldown exceeds code ttl", func(c *Config) { c.RateLimit.Cooldown = 2 * c.Code.TTL }, "Cooldown"},
		{"zero token ttl", func(c *Config) { c.AccessToken.TTL = 0 }, "AccessToken"},
		{"empty prefix", func(c *Config) { c.Keys.CodePrefix = "" }, "prefixes"},
		{"colliding prefixes", func(c *Config) { c.Keys.TokenPrefix = c.Keys.CodePrefix }, "distinct"},
		{"zero audit buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }, "BufferSize"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Fatalf("expected error mentioning %q, got %q", tc.wantMsg, err.Error())
			}
		})
	}
}

func TestConfigDisabledSectionsSkipValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.Cooldown = 0
	cfg.AccessToken.Enabled = false
	cfg.AccessToken.TTL = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled sections should not be validated: %v", err)
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected Build to fail without redis")
	}

	_, rdb := newTestRedis(t)
	if _, err := New().WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected Build to fail without delivery channel")
	}

	b := New().WithRedis(rdb).WithDelivery(&captureChannel{})
	if _, err := b.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build on same builder to fail")
	}
}
