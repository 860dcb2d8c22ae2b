// ABOUTME: Voice capture bridge boundary for platform speech recognition
// ABOUTME: Tagged event stream consumed by the conversation engine

package voice

// EventKind tags a bridge event.
type EventKind int

// Bridge event kinds.
const (
	// EventStart: recognition began.
	EventStart EventKind = iota
	// EventEnd: recognition stopped, with or without a final transcript.
	EventEnd
	// EventPartial: an interim transcript, subject to correction.
	EventPartial
	// EventFinal: a final transcript for the utterance.
	EventFinal
	// EventError: recognition failed.
	EventError
)

// String returns the kind name for logging.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventPartial:
		return "partial"
	case EventFinal:
		return "final"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one notification from the speech recognizer.
type Event struct {
	Kind       EventKind
	Transcript string // set for Partial and Final
	Err        error  // set for Error
}

// Bridge wraps platform speech recognition. The recognition engine itself
// is an external capability; this module only starts and stops it and
// consumes its event stream.
type Bridge interface {
	// Start begins recognition for the given locale (e.g. "es-ES").
	Start(locale string) error

	// Stop ends recognition. A Final event may still arrive before End.
	Stop() error

	// Events returns the event stream. The bridge closes it on teardown.
	Events() <-chan Event
}
