// ABOUTME: Tests for message identity, record conversion, ordering, and truncation
// ABOUTME: Exercises the provisional/durable ID union and the stable chronological sort

package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovaedu/vial-chat/internal/store"
)

func TestMessageID_ProvisionalAndDurable(t *testing.T) {
	prov := NewProvisionalID()
	assert.False(t, prov.Durable())
	assert.NotEmpty(t, prov.String())

	other := NewProvisionalID()
	assert.NotEqual(t, prov.String(), other.String(), "provisional ids must be unique")

	dur := DurableID("store-abc")
	assert.True(t, dur.Durable())
	assert.Equal(t, "store-abc", dur.String())
}

func TestFromRecord(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	rec := &store.Record{
		ID:        "rec-1",
		Owner:     "user-1",
		Sender:    store.SenderUser,
		Text:      "hola",
		CreatedAt: ts,
	}

	msg := fromRecord(rec)
	assert.True(t, msg.ID.Durable(), "loaded records carry durable identity")
	assert.Equal(t, "rec-1", msg.ID.String())
	assert.Equal(t, "user-1", msg.Owner)
	assert.Equal(t, store.SenderUser, msg.Sender)
	assert.Equal(t, "hola", msg.Text)
	assert.Equal(t, ts, msg.CreatedAt)
}

func TestSortByCreatedAt(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	msgs := []Message{
		{Text: "c", CreatedAt: base.Add(2 * time.Second)},
		{Text: "a", CreatedAt: base},
		{Text: "b", CreatedAt: base.Add(time.Second)},
	}

	sortByCreatedAt(msgs)

	assert.Equal(t, "a", msgs[0].Text)
	assert.Equal(t, "b", msgs[1].Text)
	assert.Equal(t, "c", msgs[2].Text)
}

func TestSortByCreatedAt_StableOnTies(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	msgs := []Message{
		{Text: "x", CreatedAt: ts},
		{Text: "y", CreatedAt: ts},
		{Text: "z", CreatedAt: ts},
	}

	sortByCreatedAt(msgs)

	assert.Equal(t, "x", msgs[0].Text)
	assert.Equal(t, "y", msgs[1].Text)
	assert.Equal(t, "z", msgs[2].Text)
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"under limit", "hola", 10, "hola"},
		{"at limit", "hola", 4, "hola"},
		{"over limit", "holamundo", 4, "hola"},
		{"multibyte boundary", "ññññ", 2, "ññ"},
		{"empty", "", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunes(tt.in, tt.limit)
			require.Equal(t, tt.want, got)
		})
	}
}
