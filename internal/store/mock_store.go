// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite or Firestore

package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store implementation for testing.
// Records are returned in seed/insertion order, which stands in for the
// document store's unspecified native order. The Fail* fields inject
// errors into individual operations.
type MockStore struct {
	mu      sync.RWMutex
	records map[string][]*Record // keyed by owner, in insertion order

	FailLoad   error // returned by LoadAll when set
	FailAppend error // returned by Append when set
	FailDelete error // returned by DeleteAll when set
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		records: make(map[string][]*Record),
	}
}

// Seed inserts records directly, preserving the given order as the
// store-native order. IDs are assigned when missing.
func (m *MockStore) Seed(recs ...*Record) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range recs {
		r := *rec
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		m.records[r.Owner] = append(m.records[r.Owner], &r)
	}
}

// LoadAll returns every record for the owner in insertion order.
func (m *MockStore) LoadAll(ctx context.Context, owner string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailLoad != nil {
		return nil, m.FailLoad
	}

	recs := m.records[owner]
	out := make([]*Record, 0, len(recs))
	for _, rec := range recs {
		// Return copies to avoid external modification
		r := *rec
		out = append(out, &r)
	}
	return out, nil
}

// Append stores a record and returns a generated id.
func (m *MockStore) Append(ctx context.Context, rec *Record) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailAppend != nil {
		return "", m.FailAppend
	}

	r := *rec
	r.ID = uuid.New().String()
	m.records[r.Owner] = append(m.records[r.Owner], &r)
	return r.ID, nil
}

// DeleteAll removes every record for the owner.
func (m *MockStore) DeleteAll(ctx context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDelete != nil {
		return m.FailDelete
	}

	delete(m.records, owner)
	return nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}
