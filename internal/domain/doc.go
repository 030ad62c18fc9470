// Package domain defines the core types for Blockbase: repositories,
// commits, and the block changes a commit carries.
//
// A Repository records the history of one constructed structure. Its
// history is an append-only sequence of Commits, each an atomic, ordered
// batch of Changes. Commits are identified by caller-chosen ids and are
// immutable once stored.
//
// The change batch has its own wire format (a JSON array of change
// objects) that is decoupled from the relational layout; see change.go
// for the encode/decode rules, including the best-effort readback that
// drops malformed elements instead of failing the whole batch.
package domain
