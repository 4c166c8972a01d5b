package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTextToSpeechSpeaksOnceOnSuccess(t *testing.T) {
	client := &synthesizerStub{}
	tts := newTextToSpeech(client, time.Second)

	if err := tts.Speak(context.Background(), "hello"); err != nil {
		t.Fatalf("expected speak to succeed, got %v", err)
	}
	if spoken := client.spokenTexts(); len(spoken) != 1 || spoken[0] != "hello" {
		t.Fatalf("expected exactly one utterance %q, got %v", "hello", spoken)
	}
	if client.reinitCount() != 0 {
		t.Fatalf("expected no reinitialization on success, got %d", client.reinitCount())
	}
}

func TestTextToSpeechRetriesOnceAfterReinitialize(t *testing.T) {
	attempts := 0
	client := &synthesizerStub{}
	client.speak = func(ctx context.Context, text string) error {
		attempts++
		if attempts == 1 {
			return errors.New("engine wedged")
		}
		if client.reinitCount() != 1 {
			t.Fatalf("expected reinitialization before the retry")
		}
		return nil
	}

	tts := newTextToSpeech(client, time.Second)
	if err := tts.Speak(context.Background(), "hello"); err != nil {
		t.Fatalf("expected recovery after reinitialization, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected exactly two attempts, got %d", attempts)
	}
}

func TestTextToSpeechSurfacesFailureAfterRetry(t *testing.T) {
	client := &synthesizerStub{
		speak: func(ctx context.Context, text string) error {
			return errors.New("engine wedged")
		},
	}

	tts := newTextToSpeech(client, time.Second)
	err := tts.Speak(context.Background(), "hello")
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Fatalf("expected ErrSynthesisFailed, got %v", err)
	}
	if got := len(client.spokenTexts()); got != 2 {
		t.Fatalf("expected exactly two attempts, got %d", got)
	}
	if client.reinitCount() != 1 {
		t.Fatalf("expected exactly one reinitialization, got %d", client.reinitCount())
	}
}

func TestTextToSpeechReinitializeIsIdempotent(t *testing.T) {
	client := &synthesizerStub{}
	tts := newTextToSpeech(client, time.Second)

	if err := tts.Reinitialize(); err != nil {
		t.Fatalf("expected reinitialize to succeed, got %v", err)
	}
	if err := tts.Reinitialize(); err != nil {
		t.Fatalf("expected repeated reinitialize to succeed, got %v", err)
	}
	if err := tts.Speak(context.Background(), "still works"); err != nil {
		t.Fatalf("expected synthesizer to be usable after reinitialize, got %v", err)
	}
}

func TestTextToSpeechEmptyTextIsNoop(t *testing.T) {
	client := &synthesizerStub{}
	tts := newTextToSpeech(client, time.Second)

	if err := tts.Speak(context.Background(), ""); err != nil {
		t.Fatalf("expected empty text to be a no-op, got %v", err)
	}
	if got := len(client.spokenTexts()); got != 0 {
		t.Fatalf("expected no utterances for empty text, got %d", got)
	}
}
