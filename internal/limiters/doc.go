// Package limiters enforces the cooldown between successive code-issuance
// requests for the same identity.
//
// The limiter is a single atomic SET NX with expiry: at most one concurrent
// request per identity can create the marker, and its mere presence denies
// issuance until it expires. The marker is never deleted explicitly.
//
// Redis connectivity failures are reported, not decided on: the engine fails
// open so the messaging path stays available when the store is down.
package limiters
