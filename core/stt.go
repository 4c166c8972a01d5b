package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aafsar/multi-modal-agent/core/speechtotext"
	"go.opentelemetry.io/otel/codes"
)

// Transcript is the outcome of transcribing a sealed recording. Silence is a
// valid outcome, not a failure: HasText reports whether the audio produced
// usable text, while engine failures surface through the error return.
type Transcript struct {
	Text    string
	HasText bool
}

// speechToText wraps the configured transcriber. Calls are bounded by the
// orchestrator's step timeout so a stalled recognizer cannot wedge a turn.
type speechToText struct {
	// client stores the configured speech-to-text implementation.
	client Transcriber

	language string
	timeout  time.Duration
}

func newSpeechToText(client Transcriber, timeout time.Duration) *speechToText {
	return &speechToText{client: client, timeout: timeout}
}

func (s *speechToText) set(client Transcriber) {
	if s != nil {
		s.client = client
	}
}

func (s *speechToText) setLanguage(language string) {
	if s != nil {
		s.language = language
	}
}

func (s *speechToText) isConfigured() bool {
	return s != nil && s.client != nil
}

// Transcribe consumes the recording and produces a transcript. The recording
// is spent regardless of outcome. Recognizer errors and deadline overruns
// surface as errors; an empty transcript from silent audio is a valid
// outcome with HasText set to false.
func (s *speechToText) Transcribe(ctx context.Context, recording *Recording) (Transcript, error) {
	ctx, span := tracer.Start(ctx, "orchestration.transcribe")
	defer span.End()

	if !s.isConfigured() {
		err := errors.New("no speech-to-text client configured")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Transcript{}, fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	pcm, err := recording.Consume()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Transcript{}, fmt.Errorf("%w: %w", ErrTranscriptionFailed, err)
	}

	if len(pcm) == 0 {
		return Transcript{Text: "", HasText: false}, nil
	}

	opts := []speechtotext.TranscribeOption{
		speechtotext.WithEncodingInfo(recording.EncodingInfo()),
	}
	if s.language != "" {
		opts = append(opts, speechtotext.WithLanguage(s.language))
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := s.client.Transcribe(ctx, pcm, opts...)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		span.SetStatus(codes.Error, ctx.Err().Error())
		return Transcript{}, fmt.Errorf("%w: %w", ErrTranscriptionTimeout, ctx.Err())
	case res := <-done:
		if res.err != nil {
			if errors.Is(res.err, context.DeadlineExceeded) {
				span.RecordError(res.err)
				span.SetStatus(codes.Error, res.err.Error())
				return Transcript{}, fmt.Errorf("%w: %w", ErrTranscriptionTimeout, res.err)
			}
			span.RecordError(res.err)
			span.SetStatus(codes.Error, res.err.Error())
			return Transcript{}, fmt.Errorf("%w: %w", ErrTranscriptionFailed, res.err)
		}

		text := strings.TrimSpace(res.text)
		return Transcript{Text: text, HasText: text != ""}, nil
	}
}
