// Package triggers defines the push-to-talk activation events exchanged
// between a trigger source and the orchestrator.
package triggers

import "time"

type Kind string

const (
	// Engaged means the activation signal was pressed; recording should run.
	Engaged Kind = "engaged"
	// Released means the activation signal ended; recording should stop.
	Released Kind = "released"
)

// Event is one discrete activation change. There is no payload beyond the
// kind; the source does not know what the orchestrator does with it.
type Event struct {
	kind      Kind
	timestamp time.Time
}

func NewEvent(kind Kind) Event {
	return Event{kind: kind, timestamp: time.Now()}
}

func (e Event) Kind() Kind           { return e.kind }
func (e Event) Timestamp() time.Time { return e.timestamp }
