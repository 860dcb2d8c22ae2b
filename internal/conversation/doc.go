// Package conversation implements the conversation synchronization engine.
//
// # Overview
//
// The engine owns the in-memory conversation for one user session. It
// loads history from an eventually-consistent document store that cannot
// order results server-side, recomputes chronological order client-side on
// every load, optimistically appends outbound turns before any network
// I/O, dispatches them to the remote responder, and reconciles results and
// failures back into both state and store.
//
// # State Machine
//
// Per session: Unauthenticated -> Loading -> Ready, driven by session
// identity notifications. Within Ready, an orthogonal Idle/Sending flag is
// the engine's only mutual-exclusion primitive for user intents; there is
// exactly one active surface issuing sends.
//
// # Ordering
//
// Messages are sorted by CreatedAt with a stable sort; equal timestamps
// keep store read order. Every timestamp was normalized to time.Time at
// the store boundary before reaching the sort.
//
// # Message Identity
//
// An optimistic append carries a provisional, locally generated id. When
// the store write completes, the provisional identity is replaced by the
// durable store-assigned one in an idempotent reconciliation step. The two
// id spaces never mix.
//
// # Failure Policy
//
// Store writes during send and clear are absorbed (logged, never rolled
// back into the visible conversation). Store reads at load are surfaced
// and leave the conversation empty without retrying. Responder failures
// become a fixed fallback assistant message that is itself persisted.
// Voice errors only clear the recording indicator. Sign-out while an
// operation is in flight lets it finish against the store but never
// mutates the discarded conversation (an epoch guard runs on every
// completion path). No failure is fatal: every path returns to Ready/Idle.
//
// # Snapshots
//
// Presentation surfaces subscribe to the Broadcaster and re-render from
// immutable Snapshot values; they never touch engine state.
package conversation
