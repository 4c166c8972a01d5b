package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// textToSpeech wraps the configured synthesizer. A failed synthesis is
// retried exactly once after reinitializing the engine; engines that wedge
// mid-utterance tend to recover only after being rebuilt.
type textToSpeech struct {
	// client stores the configured text-to-speech implementation.
	client SpeechSynthesizer

	timeout time.Duration
}

func newTextToSpeech(client SpeechSynthesizer, timeout time.Duration) *textToSpeech {
	return &textToSpeech{client: client, timeout: timeout}
}

func (t *textToSpeech) set(client SpeechSynthesizer) {
	if t != nil {
		t.client = client
	}
}

func (t *textToSpeech) isConfigured() bool {
	return t != nil && t.client != nil
}

// Speak synthesizes and plays the given text, blocking until playback
// completes or the deadline passes. On failure the engine is reinitialized
// and the utterance retried once from the start.
func (t *textToSpeech) Speak(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "orchestration.speak")
	defer span.End()

	if !t.isConfigured() {
		err := errors.New("no text-to-speech client configured")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}

	if text == "" {
		return nil
	}

	firstErr := t.speakOnce(ctx, text)
	if firstErr == nil {
		return nil
	}
	span.RecordError(firstErr)

	if err := t.client.Reinitialize(); err != nil {
		joined := errors.Join(firstErr, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, joined.Error())
		return fmt.Errorf("%w: %w", ErrSynthesisFailed, joined)
	}

	if retryErr := t.speakOnce(ctx, text); retryErr != nil {
		joined := errors.Join(firstErr, retryErr)
		span.RecordError(retryErr)
		span.SetStatus(codes.Error, joined.Error())
		return fmt.Errorf("%w: %w", ErrSynthesisFailed, joined)
	}

	logger.InfoContext(ctx, "Recovered speech synthesis after reinitialization")
	return nil
}

func (t *textToSpeech) speakOnce(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	return t.client.Speak(ctx, text)
}

// Reinitialize rebuilds the underlying engine. Safe to call on a healthy
// synthesizer.
func (t *textToSpeech) Reinitialize() error {
	if !t.isConfigured() {
		return nil
	}
	return t.client.Reinitialize()
}

func (t *textToSpeech) Close() {
	if !t.isConfigured() {
		return
	}

	if closer, ok := t.client.(interface{ Close() }); ok {
		closer.Close()
	}
}
