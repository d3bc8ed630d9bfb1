// Package stores provides the Redis-backed record stores for the verikit
// engine: outstanding verification codes keyed by identity, and access
// tokens keyed by token value.
//
// # Design
//
// Each store persists a versioned, binary-encoded record in Redis with a TTL.
// The one mutation on a live record, the attempt increment, runs as a single
// Lua script that rewrites the record under its current PTTL, so concurrent
// submissions can neither lose an increment nor reset the expiry clock.
// Records are single-use: deleted on success or lockout, expired otherwise.
//
// # Architecture boundaries
//
// This package owns persistence and concurrency control for transient
// records. It does NOT generate codes or tokens, enforce cooldowns, or
// compare submitted codes — those responsibilities belong to the engine.
//
// # What this package must NOT do
//
//   - Import verikit or any sibling internal package.
//   - Log or expose plaintext codes outside of returned records.
//   - Extend a record's TTL on any operation.
package stores
