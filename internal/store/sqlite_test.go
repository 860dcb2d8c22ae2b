// ABOUTME: Tests for SQLite store implementation
// ABOUTME: Covers schema creation, owner filtering, append ids, and best-effort delete

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewSQLiteStore(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	// Verify the database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "nested", "test.db")

	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created in nested directory")
	}
}

func TestAppendAndLoadAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	id, err := s.Append(ctx, &Record{
		Owner:     "user-1",
		Sender:    SenderUser,
		Text:      "¿Cómo renuevo mi licencia?",
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if id == "" {
		t.Fatal("Append returned empty id")
	}

	records, err := s.LoadAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("LoadAll returned %d records, want 1", len(records))
	}

	got := records[0]
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.Owner != "user-1" {
		t.Errorf("Owner = %q, want %q", got.Owner, "user-1")
	}
	if got.Sender != SenderUser {
		t.Errorf("Sender = %q, want %q", got.Sender, SenderUser)
	}
	if got.Text != "¿Cómo renuevo mi licencia?" {
		t.Errorf("Text = %q, want %q", got.Text, "¿Cómo renuevo mi licencia?")
	}
	if !got.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, createdAt)
	}
}

func TestAppend_PreservesSubsecondPrecision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 123456789, time.UTC)
	if _, err := s.Append(ctx, &Record{
		Owner:     "user-1",
		Sender:    SenderAssistant,
		Text:      "hola",
		CreatedAt: createdAt,
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	records, err := s.LoadAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if !records[0].CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", records[0].CreatedAt, createdAt)
	}
}

func TestLoadAll_FiltersByOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, rec := range []*Record{
		{Owner: "user-1", Sender: SenderUser, Text: "mine", CreatedAt: now},
		{Owner: "user-2", Sender: SenderUser, Text: "theirs", CreatedAt: now},
		{Owner: "user-1", Sender: SenderAssistant, Text: "also mine", CreatedAt: now},
	} {
		if _, err := s.Append(ctx, rec); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	records, err := s.LoadAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("LoadAll returned %d records, want 2", len(records))
	}
	for _, rec := range records {
		if rec.Owner != "user-1" {
			t.Errorf("record %s has owner %q, want user-1", rec.ID, rec.Owner)
		}
	}
}

func TestLoadAll_EmptyOwner(t *testing.T) {
	s := newTestStore(t)

	records, err := s.LoadAll(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("LoadAll returned %d records, want 0", len(records))
	}
}

func TestDeleteAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		if _, err := s.Append(ctx, &Record{
			Owner:     "user-1",
			Sender:    SenderUser,
			Text:      "msg",
			CreatedAt: now,
		}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if _, err := s.Append(ctx, &Record{
		Owner:     "user-2",
		Sender:    SenderUser,
		Text:      "keep",
		CreatedAt: now,
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := s.DeleteAll(ctx, "user-1"); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	records, err := s.LoadAll(ctx, "user-1")
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("LoadAll after DeleteAll returned %d records, want 0", len(records))
	}

	// Other owners are untouched
	records, err = s.LoadAll(ctx, "user-2")
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("user-2 has %d records, want 1", len(records))
	}
}

func TestDeleteAll_NoRecords(t *testing.T) {
	s := newTestStore(t)

	if err := s.DeleteAll(context.Background(), "nobody"); err != nil {
		t.Fatalf("DeleteAll on empty owner failed: %v", err)
	}
}
