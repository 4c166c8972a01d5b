// Package keyboard emits push-to-talk trigger events from terminal key
// presses.
//
// Terminals deliver key presses but not releases, so the trigger key toggles:
// the first press engages capture, the next press (or Enter/Esc) releases it.
package keyboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/aafsar/multi-modal-agent/core/triggers"
	"github.com/eiannone/keyboard"
)

const defaultTriggerKey = ' '

// Listener watches the terminal for the designated trigger key and emits
// engage/release events independent of the orchestrator's control flow.
type Listener struct {
	triggerKey rune

	openOnce  sync.Once
	closeOnce sync.Once
	openErr   error
}

type ListenerOption func(*Listener)

func WithTriggerKey(key rune) ListenerOption {
	return func(l *Listener) {
		l.triggerKey = key
	}
}

func NewListener(opts ...ListenerOption) *Listener {
	listener := &Listener{triggerKey: defaultTriggerKey}
	for _, opt := range opts {
		opt(listener)
	}
	return listener
}

// Listen blocks reading key events and forwards engage/release transitions to
// onEvent until ctx is done or the keyboard is closed. It is intended to run
// on its own goroutine.
func (l *Listener) Listen(ctx context.Context, onEvent func(triggers.Event)) error {
	l.openOnce.Do(func() {
		if err := keyboard.Open(); err != nil {
			l.openErr = fmt.Errorf("failed to open keyboard: %w", err)
		}
	})
	if l.openErr != nil {
		return l.openErr
	}

	engaged := false
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		char, key, err := keyboard.GetKey()
		if err != nil {
			// GetKey fails once the keyboard is closed; treat it as shutdown.
			if engaged {
				onEvent(triggers.NewEvent(triggers.Released))
			}
			return nil
		}

		switch {
		case char == l.triggerKey || key == keyboard.KeySpace && l.triggerKey == ' ':
			if engaged {
				engaged = false
				onEvent(triggers.NewEvent(triggers.Released))
			} else {
				engaged = true
				onEvent(triggers.NewEvent(triggers.Engaged))
			}
		case key == keyboard.KeyEnter || key == keyboard.KeyEsc:
			if engaged {
				engaged = false
				onEvent(triggers.NewEvent(triggers.Released))
			}
		}
	}
}

func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		keyboard.Close()
	})
	return nil
}
