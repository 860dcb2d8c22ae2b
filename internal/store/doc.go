// Package store provides persistent message storage for vial-chat.
//
// # Architecture
//
// One Record type and one Store interface with three implementations:
//
//   - FirestoreStore: production backend against Cloud Firestore
//   - SQLiteStore: offline and development backend
//   - MockStore: in-memory backend for unit tests
//
// # The Equality-Only Contract
//
// The backing document store supports a single equality filter on the
// owner field. No compound filters, no server-side ordering: provisioning
// the composite index that an ordered query would need is outside this
// client's control. Every implementation therefore returns records in
// store-native (unspecified) order, and chronological ordering is
// recomputed client-side by the conversation engine on every load.
//
// # Timestamp Normalization
//
// Records written by different client versions carry heterogeneous
// timestamp representations (native timestamps, RFC 3339 strings, epoch
// milliseconds). Adapters coerce every value to time.Time before a record
// leaves this package; the engine never sees a raw store value.
//
// # Deletes
//
// DeleteAll is a batch of independent per-record deletes with no
// transaction. A returned error may describe partial completion; callers
// tolerate orphaned records, which the next full load surfaces.
//
// # Testing
//
// Use NewMockStore() for unit tests; its Fail* fields inject per-operation
// errors. Use NewSQLiteStore with t.TempDir() for integration tests.
package store
