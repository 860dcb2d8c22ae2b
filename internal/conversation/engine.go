// ABOUTME: Conversation engine: owns in-memory state, orders history client-side,
// ABOUTME: performs optimistic appends, and reconciles store/responder results

package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/innovaedu/vial-chat/internal/session"
	"github.com/innovaedu/vial-chat/internal/store"
	"github.com/innovaedu/vial-chat/internal/voice"
)

// Phase is the session state of the engine.
type Phase int

// Session phases.
const (
	PhaseUnauthenticated Phase = iota
	PhaseLoading
	PhaseReady
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ErrNoVoiceBridge is returned by the recording controls when the engine
// was built without a voice bridge.
var ErrNoVoiceBridge = errors.New("no voice bridge attached")

// defaultSettleDelay is the wait after a final transcript before an
// automatic send, leaving room for a last correction.
const defaultSettleDelay = 300 * time.Millisecond

// Responder defines what the engine needs from the remote inference client.
type Responder interface {
	Converse(ctx context.Context, text string) (string, error)
}

// Snapshot is a read-only view of engine state for presentation surfaces.
type Snapshot struct {
	Phase      Phase
	Owner      string
	Sending    bool
	Recording  bool
	Transcript string
	LoadErr    error
	Messages   []Message
}

// Engine owns the in-memory conversation for the active session.
//
// All collaborators are injected; the engine holds no ambient state. The
// conversation is never the durable copy (the store is), but the engine
// favors the live conversation over durability: store write failures are
// absorbed, never rolled back into the UI.
type Engine struct {
	store     store.Store
	responder Responder
	sessions  session.Provider
	logger    *slog.Logger

	broadcaster *Broadcaster

	// Voice capture, optional
	bridge      voice.Bridge
	locale      string
	settleDelay time.Duration

	mu         sync.Mutex
	phase      Phase
	owner      string
	epoch      uint64 // conversation generation; bumped on session change and clear
	sending    bool
	recording  bool
	transcript string
	loadErr    error
	messages   []Message
}

// New creates a conversation engine. Pass nil logger for default.
func New(st store.Store, resp Responder, sessions session.Provider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "engine")
	return &Engine{
		store:       st,
		responder:   resp,
		sessions:    sessions,
		logger:      logger,
		broadcaster: NewBroadcaster(logger),
		settleDelay: defaultSettleDelay,
		phase:       PhaseUnauthenticated,
	}
}

// AttachVoice wires a voice capture bridge. Must be called before Start.
// A zero settleDelay keeps the default.
func (e *Engine) AttachVoice(bridge voice.Bridge, locale string, settleDelay time.Duration) {
	e.bridge = bridge
	e.locale = locale
	if settleDelay > 0 {
		e.settleDelay = settleDelay
	}
}

// Start begins consuming session identity changes (and voice events when a
// bridge is attached) until ctx is cancelled. The engine's goroutines and
// subscriptions are all torn down through ctx.
func (e *Engine) Start(ctx context.Context) {
	changes := e.sessions.Watch(ctx)
	go func() {
		for user := range changes {
			e.handleSessionChange(ctx, user)
		}
	}()

	if e.bridge != nil {
		go e.consumeVoice(ctx)
	}

	go func() {
		<-ctx.Done()
		e.broadcaster.Close()
	}()
}

// Subscribe registers a presentation surface for state snapshots.
func (e *Engine) Subscribe(ctx context.Context) (<-chan Snapshot, string) {
	return e.broadcaster.Subscribe(ctx)
}

// Snapshot returns a copy of the current engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// snapshotLocked builds a Snapshot. Must be called with mu held.
func (e *Engine) snapshotLocked() Snapshot {
	msgs := make([]Message, len(e.messages))
	copy(msgs, e.messages)
	return Snapshot{
		Phase:      e.phase,
		Owner:      e.owner,
		Sending:    e.sending,
		Recording:  e.recording,
		Transcript: e.transcript,
		LoadErr:    e.loadErr,
		Messages:   msgs,
	}
}

// publish broadcasts the current state to subscribers.
func (e *Engine) publish() {
	e.broadcaster.Publish(e.Snapshot())
}

// handleSessionChange drives the Unauthenticated -> Loading -> Ready state
// machine from identity notifications.
func (e *Engine) handleSessionChange(ctx context.Context, user *session.User) {
	if user == nil {
		e.mu.Lock()
		e.epoch++
		e.owner = ""
		e.phase = PhaseUnauthenticated
		e.messages = nil
		e.sending = false
		e.transcript = ""
		e.loadErr = nil
		e.mu.Unlock()

		e.logger.Info("session ended, conversation discarded")
		e.publish()
		return
	}

	e.mu.Lock()
	if user.ID == e.owner {
		e.mu.Unlock()
		return
	}
	e.epoch++
	epoch := e.epoch
	e.owner = user.ID
	e.phase = PhaseLoading
	e.messages = nil
	e.sending = false
	e.transcript = ""
	e.loadErr = nil
	e.mu.Unlock()

	e.logger.Info("session started, loading history", "owner", user.ID)
	e.publish()

	e.load(ctx, user.ID, epoch)
}

// load fetches the owner's history, orders it client-side, and transitions
// to Ready. An empty history is seeded with a persisted greeting. A read
// failure surfaces to the user and leaves the conversation empty; there is
// no automatic retry.
func (e *Engine) load(ctx context.Context, owner string, epoch uint64) {
	records, err := e.store.LoadAll(ctx, owner)
	if err != nil {
		e.logger.Error("failed to load history", "owner", owner, "error", err)

		e.mu.Lock()
		if e.epoch != epoch {
			e.mu.Unlock()
			return
		}
		e.loadErr = fmt.Errorf("loading history: %w", err)
		e.phase = PhaseReady
		e.mu.Unlock()
		e.publish()
		return
	}

	if len(records) == 0 {
		e.seedGreeting(ctx, owner, epoch)
		return
	}

	msgs := make([]Message, 0, len(records))
	for _, rec := range records {
		msgs = append(msgs, fromRecord(rec))
	}
	// The store returns records in native, unspecified order; chronological
	// order is always recomputed here.
	sortByCreatedAt(msgs)

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return
	}
	e.messages = msgs
	e.phase = PhaseReady
	e.mu.Unlock()

	e.logger.Info("history loaded", "owner", owner, "messages", len(msgs))
	e.publish()
}

// seedGreeting synthesizes the greeting message, persists it so a reload
// sees the same record instead of generating another, and sets the
// conversation to exactly that one message. A store failure leaves the
// greeting local-only: shown, logged, not fatal.
func (e *Engine) seedGreeting(ctx context.Context, owner string, epoch uint64) {
	greeting := Message{
		ID:        NewProvisionalID(),
		Owner:     owner,
		Sender:    store.SenderAssistant,
		Text:      Greeting,
		CreatedAt: time.Now(),
	}

	id, err := e.store.Append(ctx, &store.Record{
		Owner:     owner,
		Sender:    greeting.Sender,
		Text:      greeting.Text,
		CreatedAt: greeting.CreatedAt,
	})
	if err != nil {
		e.logger.Warn("greeting not persisted", "owner", owner, "error", err)
	} else {
		greeting.ID = DurableID(id)
	}

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return
	}
	e.messages = []Message{greeting}
	e.phase = PhaseReady
	e.mu.Unlock()

	e.logger.Info("conversation seeded with greeting", "owner", owner)
	e.publish()
}

// Send dispatches one user turn: optimistic append, best-effort persist,
// responder call, reply append, best-effort persist.
//
// Preconditions: Ready, not Sending, an owner, and trimmed non-empty text.
// Violations are silent no-ops; this is what absorbs rapid repeated taps
// and the race between voice auto-submit and a manual submit.
func (e *Engine) Send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)

	e.mu.Lock()
	if e.phase != PhaseReady || e.sending || e.owner == "" || text == "" {
		e.mu.Unlock()
		e.logger.Debug("send ignored", "phase", e.phase, "sending", e.sending)
		return
	}
	if truncated := truncateRunes(text, maxMessageRunes); truncated != text {
		e.logger.Debug("message truncated", "runes", maxMessageRunes)
		text = truncated
	}

	e.sending = true
	e.transcript = ""
	owner := e.owner
	epoch := e.epoch

	// Optimistic append before any I/O: the user sees their message
	// immediately regardless of what the store or responder do next.
	userMsg := Message{
		ID:        NewProvisionalID(),
		Owner:     owner,
		Sender:    store.SenderUser,
		Text:      text,
		CreatedAt: time.Now(),
	}
	e.messages = append(e.messages, userMsg)
	e.mu.Unlock()
	e.publish()

	// The Sending flag must clear on every exit path, or the session is
	// stuck unable to send.
	defer func() {
		e.mu.Lock()
		if e.epoch == epoch {
			e.sending = false
		}
		e.mu.Unlock()
		e.publish()
	}()

	// Persist the user turn. On failure the optimistic message stays: the
	// conversation must not flicker because of a transient store error.
	id, err := e.store.Append(ctx, &store.Record{
		Owner:     owner,
		Sender:    store.SenderUser,
		Text:      text,
		CreatedAt: userMsg.CreatedAt,
	})
	if err != nil {
		e.logger.Warn("failed to persist user message", "owner", owner, "error", err)
	} else {
		e.reconcileDurable(epoch, userMsg.ID, id)
	}

	reply, err := e.responder.Converse(ctx, text)
	if err != nil {
		// The failure becomes conversation content, and it is persisted so
		// a reload still shows it.
		e.logger.Warn("responder failed, substituting fallback", "error", err)
		reply = FallbackReply
	}

	assistantMsg := Message{
		ID:        NewProvisionalID(),
		Owner:     owner,
		Sender:    store.SenderAssistant,
		Text:      reply,
		CreatedAt: time.Now(),
	}

	e.mu.Lock()
	if e.epoch == epoch {
		e.messages = append(e.messages, assistantMsg)
	}
	e.mu.Unlock()
	e.publish()

	id, err = e.store.Append(ctx, &store.Record{
		Owner:     owner,
		Sender:    store.SenderAssistant,
		Text:      reply,
		CreatedAt: assistantMsg.CreatedAt,
	})
	if err != nil {
		e.logger.Warn("failed to persist assistant message", "owner", owner, "error", err)
	} else {
		e.reconcileDurable(epoch, assistantMsg.ID, id)
	}
}

// reconcileDurable swaps a provisional message identity for its
// store-assigned one. Idempotent: once swapped, later calls find nothing.
// A stale epoch means the conversation was discarded; nothing to update.
func (e *Engine) reconcileDurable(epoch uint64, provisional MessageID, durableID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.epoch != epoch {
		return
	}
	for i := range e.messages {
		if !e.messages[i].ID.Durable() && e.messages[i].ID.String() == provisional.String() {
			e.messages[i].ID = DurableID(durableID)
			return
		}
	}
}

// Clear wipes the owner's history and reseeds the greeting. The engine
// receives only the already-confirmed intent; confirmation UI lives in the
// presentation surface.
//
// Deletion is best-effort per record. On partial failure the in-memory
// conversation still resets; orphaned records surface on the next full
// load. This inconsistency window is accepted rather than hidden.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	if e.phase != PhaseReady || e.owner == "" {
		e.mu.Unlock()
		e.logger.Debug("clear ignored", "phase", e.phase)
		return
	}
	e.epoch++
	epoch := e.epoch
	owner := e.owner
	e.phase = PhaseLoading
	e.messages = nil
	e.sending = false
	e.transcript = ""
	e.loadErr = nil
	e.mu.Unlock()
	e.publish()

	if err := e.store.DeleteAll(ctx, owner); err != nil {
		e.logger.Warn("delete incomplete, orphaned records remain",
			"owner", owner, "error", err)
	}

	e.seedGreeting(ctx, owner, epoch)
}

// StartRecording begins voice capture.
func (e *Engine) StartRecording() error {
	if e.bridge == nil {
		return ErrNoVoiceBridge
	}

	e.mu.Lock()
	e.transcript = ""
	e.mu.Unlock()

	return e.bridge.Start(e.locale)
}

// StopRecording ends voice capture. Whether a send follows depends on the
// bridge delivering a final transcript, not on this call.
func (e *Engine) StopRecording() error {
	if e.bridge == nil {
		return ErrNoVoiceBridge
	}
	return e.bridge.Stop()
}

// consumeVoice handles bridge events until the stream closes.
//
// A final transcript fills the composition buffer and, only when no send
// is pending, schedules an automatic send after the settle delay. A stop
// without a final transcript never sends. Errors clear the recording
// indicator and are logged; they never become conversation content.
func (e *Engine) consumeVoice(ctx context.Context) {
	events := e.bridge.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.handleVoiceEvent(ctx, ev)
		}
	}
}

// handleVoiceEvent applies one bridge event to engine state.
func (e *Engine) handleVoiceEvent(ctx context.Context, ev voice.Event) {
	switch ev.Kind {
	case voice.EventStart:
		e.mu.Lock()
		e.recording = true
		e.mu.Unlock()
		e.publish()

	case voice.EventPartial:
		e.mu.Lock()
		e.transcript = ev.Transcript
		e.mu.Unlock()
		e.publish()

	case voice.EventFinal:
		e.mu.Lock()
		e.transcript = ev.Transcript
		epoch := e.epoch
		pending := e.sending
		e.mu.Unlock()
		e.publish()

		if !pending {
			go e.autoSend(ctx, epoch)
		}

	case voice.EventEnd:
		e.mu.Lock()
		e.recording = false
		e.mu.Unlock()
		e.publish()

	case voice.EventError:
		e.logger.Warn("voice capture error", "error", ev.Err)
		e.mu.Lock()
		e.recording = false
		e.mu.Unlock()
		e.publish()
	}
}

// autoSend waits out the settle delay, then sends whatever is in the
// composition buffer by then, so a late partial correction wins. Send's own
// preconditions absorb the case where a manual submit got there first.
func (e *Engine) autoSend(ctx context.Context, epoch uint64) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(e.settleDelay):
	}

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		return
	}
	text := e.transcript
	e.mu.Unlock()

	e.Send(ctx, text)
}
