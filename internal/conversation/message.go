// ABOUTME: In-memory message model for the conversation engine
// ABOUTME: Provisional/durable identity, chronological ordering, fixed texts

package conversation

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/innovaedu/vial-chat/internal/store"
)

// Fixed conversation texts. The greeting seeds every empty history and is
// persisted so reloads see the same message instead of regenerating one.
// The fallback stands in for the assistant whenever the responder cannot
// be reached, and is persisted like any other reply.
const (
	Greeting      = "Hola, soy InnovaEdu. ¿En qué puedo ayudarte sobre normas de tránsito?"
	FallbackReply = "Error al conectar con el servidor."
)

// maxMessageRunes bounds message text at composition time.
const maxMessageRunes = 500

// MessageID is a message identity in one of two spaces: provisional
// (locally generated, pre-write) or durable (store-assigned). A provisional
// id is replaced, never reused, once the durable id is known.
type MessageID struct {
	value   string
	durable bool
}

// NewProvisionalID generates a local identity for an optimistic append.
func NewProvisionalID() MessageID {
	return MessageID{value: uuid.New().String()}
}

// DurableID wraps a store-assigned identity.
func DurableID(id string) MessageID {
	return MessageID{value: id, durable: true}
}

// String returns the identifier value.
func (id MessageID) String() string { return id.value }

// Durable reports whether the identity is store-assigned.
func (id MessageID) Durable() bool { return id.durable }

// Message is one entry of the in-memory conversation. Immutable once
// created except for the provisional-to-durable identity swap.
type Message struct {
	ID        MessageID
	Owner     string
	Sender    string // store.SenderUser or store.SenderAssistant
	Text      string
	CreatedAt time.Time
}

// fromRecord maps a store record into a Message with durable identity.
func fromRecord(rec *store.Record) Message {
	return Message{
		ID:        DurableID(rec.ID),
		Owner:     rec.Owner,
		Sender:    rec.Sender,
		Text:      rec.Text,
		CreatedAt: rec.CreatedAt,
	}
}

// sortByCreatedAt orders messages chronologically, in place.
// The sort is stable: records with equal timestamps keep their read order,
// which keeps results reproducible. This client-side sort substitutes for
// the server-side ordering the store cannot provide.
func sortByCreatedAt(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}

// truncateRunes bounds s to at most n code points.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
