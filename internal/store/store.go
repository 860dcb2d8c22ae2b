// ABOUTME: Store interface and record type for vial-chat message persistence
// ABOUTME: Defines the equality-filtered document store contract the engine builds on

package store

import (
	"context"
	"time"
)

// Sender values for a chat record.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Record is one chat message as the document store holds it.
// CreatedAt is normalized to time.Time at the adapter boundary regardless of
// how the backend represents it natively.
type Record struct {
	ID        string
	Owner     string
	Sender    string
	Text      string
	CreatedAt time.Time
}

// Store is the message store adapter contract.
//
// The backing document store supports only a single equality filter on the
// owner field: no compound filters and no server-side ordering. LoadAll
// therefore returns records in store-native (unspecified) order and callers
// are responsible for sorting. The adapter does no caching.
type Store interface {
	// LoadAll fetches every record with the given owner.
	LoadAll(ctx context.Context, owner string) ([]*Record, error)

	// Append creates one durable record and returns its store-assigned id.
	// Any caller-provided ID on the record is ignored.
	Append(ctx context.Context, rec *Record) (string, error)

	// DeleteAll removes every record for the owner. Deletion is per-record
	// and not atomic; a returned error may represent partial completion.
	DeleteAll(ctx context.Context, owner string) error

	// Close releases any resources held by the store
	Close() error
}
