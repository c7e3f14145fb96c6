// Package store provides persistent local storage for voxnote using SQLite.
//
// # Data Models
//
//   - Media: a captured recording (immutable blob plus mutable metadata:
//     name, transcript, summary, sentiment, tags)
//   - Tag: display label; names compare case-insensitively and the first
//     creation of a name wins its color
//   - Todo: demo task list kept from schema version 1
//
// # Schema Versioning
//
// The schema version lives in PRAGMA user_version and migrations are
// additive only:
//
//   - 0 -> 1: todos table with a creation-date index
//   - 1 -> 2: media table (creation-date index) and the global tags table
//
// Migrations run automatically on open and are idempotent. There is no
// downgrade path: opening a database written by a newer build fails with
// ErrSchemaTooNew.
//
// # Update Semantics
//
// UpdateMedia takes a typed partial (MediaUpdate). Nil fields keep the
// stored value so a tag-only edit can never erase a transcript or summary.
// The blob is written once at creation and never mutated. Updates are
// verified with a read-back after the write.
//
// # Error Handling
//
//   - ErrNotFound: requested record does not exist (get/update)
//   - ErrSchemaTooNew: on-disk schema is from a newer build
//
// Deletes are idempotent: removing a missing ID is not an error. Batch
// delete is not atomic across the batch.
//
// All methods accept context.Context for cancellation support.
package store
