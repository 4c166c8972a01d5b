package orchestration

import "testing"

func TestSessionAllowsDocumentedTransitions(t *testing.T) {
	paths := [][]Mode{
		{ModeRecording, ModeProcessing, ModeThinking, ModeSpeaking},
		{ModeProcessing, ModeThinking, ModeDone},
	}

	for _, path := range paths {
		s := newSession()
		for _, mode := range path {
			if err := s.transition(mode); err != nil {
				t.Fatalf("expected transition to %s to succeed, got %v", mode, err)
			}
		}
		if err := s.completeTurn(); err != nil {
			t.Fatalf("expected turn to complete from %s, got %v", path[len(path)-1], err)
		}
		if got := s.Mode(); got != ModeIdle {
			t.Fatalf("expected session to return to idle, got %s", got)
		}
	}
}

func TestSessionRejectsSkippedStates(t *testing.T) {
	s := newSession()
	if err := s.transition(ModeSpeaking); err == nil {
		t.Fatalf("expected idle to speaking to be rejected")
	}
	if err := s.transition(ModeThinking); err == nil {
		t.Fatalf("expected idle to thinking to be rejected")
	}
	if err := s.completeTurn(); err == nil {
		t.Fatalf("expected completing a turn from idle to be rejected")
	}
}

func TestSessionTurnCountIncrementsOnlyOnCompletion(t *testing.T) {
	s := newSession()

	for turn := 1; turn <= 3; turn++ {
		for _, mode := range []Mode{ModeProcessing, ModeThinking, ModeDone} {
			if err := s.transition(mode); err != nil {
				t.Fatalf("expected transition to %s to succeed, got %v", mode, err)
			}
		}
		if err := s.completeTurn(); err != nil {
			t.Fatalf("expected turn %d to complete, got %v", turn, err)
		}
		if got := s.TurnCount(); got != turn {
			t.Fatalf("expected turn count %d, got %d", turn, got)
		}
	}

	// A degraded turn must not advance the counter.
	if err := s.transition(ModeProcessing); err != nil {
		t.Fatalf("expected transition to processing to succeed, got %v", err)
	}
	s.degrade()
	if got := s.TurnCount(); got != 3 {
		t.Fatalf("expected degraded turn to leave count at 3, got %d", got)
	}
	if got := s.Mode(); got != ModeIdle {
		t.Fatalf("expected degraded session to be idle, got %s", got)
	}
}

func TestSessionTerminatedIsAbsorbing(t *testing.T) {
	s := newSession()
	if err := s.transition(ModeProcessing); err != nil {
		t.Fatalf("expected transition to processing to succeed, got %v", err)
	}

	s.terminate()
	if !s.isTerminated() {
		t.Fatalf("expected session to report terminated")
	}

	for _, mode := range []Mode{ModeIdle, ModeRecording, ModeProcessing, ModeThinking, ModeSpeaking, ModeDone} {
		if err := s.transition(mode); err == nil {
			t.Fatalf("expected transition to %s after termination to fail", mode)
		}
	}
	if err := s.completeTurn(); err == nil {
		t.Fatalf("expected completing a turn after termination to fail")
	}

	s.degrade()
	if !s.isTerminated() {
		t.Fatalf("expected degrade to be a no-op after termination")
	}
}
