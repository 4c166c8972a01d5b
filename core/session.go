package orchestration

import (
	"fmt"
	"sync"
)

// Mode is the externally visible state of the session orchestrator.
type Mode string

const (
	ModeIdle       Mode = "idle"
	ModeRecording  Mode = "recording"
	ModeProcessing Mode = "processing"
	ModeThinking   Mode = "thinking"
	ModeSpeaking   Mode = "speaking"
	ModeDone       Mode = "done"
	ModeTerminated Mode = "terminated"
)

// InputChannel selects how a turn's input arrives.
type InputChannel string

const (
	InputVoice InputChannel = "voice"
	InputText  InputChannel = "text"
)

// session is owned exclusively by the orchestrator and mutated only through
// transition, completeTurn and terminate.
type session struct {
	mu           sync.Mutex
	mode         Mode
	inputChannel InputChannel
	turnCount    int
}

func newSession() *session {
	return &session{mode: ModeIdle}
}

func (s *session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *session) TurnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnCount
}

func (s *session) InputChannel() InputChannel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputChannel
}

func (s *session) setInputChannel(channel InputChannel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputChannel = channel
}

// transition moves the session to the requested mode if the state machine
// allows it. Terminated is absorbing: once reached, every transition fails.
func (s *session) transition(to Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeTerminated {
		return fmt.Errorf("session is terminated: %w", ErrSessionTerminated)
	}

	if !allowedTransition(s.mode, to) {
		return fmt.Errorf("illegal transition from %s to %s", s.mode, to)
	}

	s.mode = to
	return nil
}

// completeTurn returns the session to idle and advances the turn counter.
// Only a turn that reached speaking or done counts as completed.
func (s *session) completeTurn() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != ModeSpeaking && s.mode != ModeDone {
		return fmt.Errorf("cannot complete turn from %s", s.mode)
	}

	s.mode = ModeIdle
	s.turnCount++
	return nil
}

// degrade aborts the in-flight turn and returns to idle without advancing the
// turn counter. It is a no-op once terminated.
func (s *session) degrade() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeTerminated {
		return
	}
	s.mode = ModeIdle
}

// terminate is reachable from any state and absorbing.
func (s *session) terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = ModeTerminated
}

func (s *session) isTerminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode == ModeTerminated
}

func allowedTransition(from, to Mode) bool {
	if to == ModeTerminated {
		return true
	}

	switch from {
	case ModeIdle:
		return to == ModeRecording || to == ModeProcessing
	case ModeRecording:
		return to == ModeProcessing || to == ModeIdle
	case ModeProcessing:
		return to == ModeThinking || to == ModeIdle
	case ModeThinking:
		return to == ModeSpeaking || to == ModeDone || to == ModeIdle
	case ModeSpeaking, ModeDone:
		return to == ModeIdle
	}
	return false
}
