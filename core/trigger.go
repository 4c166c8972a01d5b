package orchestration

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/aafsar/multi-modal-agent/core/triggers"
)

// triggerInput wraps the configured push-to-talk listener. Events are
// buffered so a release arriving while a turn is mid-flight is not lost, and
// the queue is drained before each recording window so stale engagements
// from previous turns cannot start a capture.
type triggerInput struct {
	// client stores the configured trigger listener implementation.
	client TriggerListener

	// events buffers incoming trigger events for the orchestration loop.
	events chan triggers.Event

	listening atomic.Bool
}

func newTriggerInput(client TriggerListener) *triggerInput {
	t := &triggerInput{
		events: make(chan triggers.Event, 16),
	}
	t.set(client)
	return t
}

func (t *triggerInput) set(client TriggerListener) {
	if t != nil {
		t.client = client
	}
}

func (t *triggerInput) isConfigured() bool {
	return t != nil && t.client != nil
}

// Start launches the listener loop. Events that arrive while the buffer is
// full are dropped rather than blocking the listener.
func (t *triggerInput) Start(ctx context.Context) {
	if !t.isConfigured() {
		return
	}

	if !t.listening.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer t.listening.Store(false)
		if err := t.client.Listen(ctx, func(event triggers.Event) {
			select {
			case t.events <- event:
			default:
				log.Printf("Dropped trigger event: %v", event.Kind())
			}
		}); err != nil && ctx.Err() == nil {
			log.Printf("Trigger listener stopped: %v", err)
		}
	}()
}

// Events exposes the buffered event stream to the orchestration loop.
func (t *triggerInput) Events() <-chan triggers.Event {
	if t == nil {
		return nil
	}
	return t.events
}

// Drain discards any queued events. Called before a recording window opens
// so only fresh engagements count.
func (t *triggerInput) Drain() {
	if t == nil {
		return
	}

	for {
		select {
		case <-t.events:
		default:
			return
		}
	}
}

func (t *triggerInput) Close() error {
	if !t.isConfigured() {
		return nil
	}
	return t.client.Close()
}
