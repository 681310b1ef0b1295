package loader

import "marginalia/internal/books"

// Kind discriminates the events a load stream carries.
type Kind string

const (
	// EventBook delivers one fully assembled book.
	EventBook Kind = "book"
	// EventError reports a non-fatal per-file failure, or the single
	// fatal validation failure that ends a load before streaming.
	EventError Kind = "error"
	// EventCompleted is the final event of a successful load.
	EventCompleted Kind = "completed"
)

// Event is one result in a progressive load stream. Book is set for
// EventBook, Err for EventError, and Total for EventCompleted.
type Event struct {
	Kind  Kind
	Book  books.Book
	Err   error
	Total int
}

// Phase tracks where a load currently is in its lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseReplaying  Phase = "replaying"
	PhaseScanning   Phase = "scanning"
	PhaseStreaming  Phase = "streaming"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)
