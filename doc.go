// Package verikit provides a one-time verification code engine with bounded-attempt
// checking, atomic Redis-backed rate limiting, and opaque access-token issuance.
//
// The package is designed for concurrent server workloads: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build]. All durable state
// lives in Redis; the engine holds no in-process mutable protocol state.
//
// # Architecture boundaries
//
// verikit is the public surface. It exposes [Engine], [Builder], [Config], and value types
// (IssueResult, VerifyResult, TokenInfo). All internal coordination — record encoding,
// attempt accounting, cooldown markers — lives under internal/ and is never exported.
// Out-of-band delivery (email, SMS, bot push) is a collaborator behind [DeliveryChannel];
// adapters live in the delivery sub-package.
//
// # What this package must NOT do
//
//   - Expose Redis clients, record encodings, or plaintext codes in its public API
//     (codes only ever reach the configured [DeliveryChannel]).
//   - Retry failed operations internally; every outcome is reported once, typed.
//   - Extend or renew a record's TTL on any read or failed attempt.
//
// # Atomicity contract
//
// The two race-prone points — cooldown marker creation and attempt increment — are each
// a single Redis round trip (SET NX and a Lua script that rewrites the record under its
// live PTTL). Nothing in this package implements them as separate read-then-write calls.
package verikit
