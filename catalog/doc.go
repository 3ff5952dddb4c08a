// Package catalog implements a hierarchical resource store over a single
// persisted document.
//
// The catalog is a three-level hierarchy: districts own stores, stores own
// products. The whole hierarchy is one document that is loaded in full,
// mutated in memory, and rewritten in full on every successful mutation.
// Persistence is abstracted behind the [DocumentStore] interface so the same
// operations run against a JSON file, an in-memory snapshot, S3, DynamoDB,
// or SQLite.
//
// # Operations
//
// Each resource kind (district, store, product) supports create, read,
// partial update, and delete with a uniform contract:
//
//   - Create validates required fields, rejects identifiers that exist
//     anywhere in the catalog, and for child kinds verifies the declared
//     parent resolves.
//   - Partial update merges only the fields present in the request; patch
//     structs use pointer fields so an omitted field and a cleared field
//     are distinguishable.
//   - Delete removes the entity and cascades to all owned descendants.
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrNotFound] - entity doesn't exist
//   - [ErrParentNotFound] - declared parent doesn't resolve
//   - [ErrConflict] - identifier already exists anywhere in the catalog
//   - [ErrStorageUnavailable] - backing document unreadable or unwritable
//   - [ValidationError] - required field missing or malformed
//
// # Concurrency
//
// All mutating operations serialize on a process-wide write lock held across
// the load, mutate, save cycle. Reads take no lock; they always observe a
// complete document snapshot, either pre- or post-mutation.
package catalog
