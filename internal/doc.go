// Package internal holds shared primitives for the verikit engine: the
// secure-random sources for numeric codes and opaque access tokens, and the
// token wire format helpers.
//
// Every code and token in the engine is generated here; no other package may
// touch a random source. All randomness comes from crypto/rand.
package internal
