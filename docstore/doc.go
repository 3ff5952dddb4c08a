// Package docstore provides implementations of catalog.DocumentStore.
//
// Every backend persists the catalog as one whole document and guarantees
// atomic replacement on save: a failed save leaves the previously persisted
// document intact. Available backends:
//
//   - [File] - a JSON file, replaced via write-to-temp-then-rename
//   - [Memory] - in-process deep-copied snapshots, for tests and ephemeral runs
//   - [S3] - a single JSON object (object puts are atomic by nature)
//   - [Dynamo] - a single DynamoDB item guarded by a revision-conditioned put
//   - [SQLite] - a single-row table written transactionally
//
// A missing backing document means an empty catalog; an unreadable or
// unparsable one wraps catalog.ErrStorageUnavailable. Each save stamps the
// document with a fresh UUID revision.
package docstore
