// Package repository defines the data access interface for Blockbase.
//
// The Store interface covers the repository directory (create, read,
// list, delete, readme) and the commit log (idempotent ingestion, ordered
// listing, readback with the change batch). The actual implementation is
// in the sqlite subpackage.
//
// # Error taxonomy
//
// Storage errors fall into three categories callers can act on:
//
//   - ErrRepoNotFound / ErrCommitNotFound: the referenced record is absent
//   - ErrRepoExists: a repository id collision on create
//
// Everything else is an internal storage failure. Malformed change
// elements found during readback are not errors at all: they are dropped
// and the remaining batch is returned.
//
// # SQLite implementation
//
// The sqlite subpackage provides the durable store. It handles:
//
// - Schema creation and additive, idempotent column migrations
// - Transactional cascade deletion of a repository and its commits
// - The serialized change batch attached to each commit row
// - Readback of the legacy row-per-change storage generation
package repository
