package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aafsar/multi-modal-agent/core/audio"
	"github.com/aafsar/multi-modal-agent/core/speechtotext"
)

func sealedRecording(t *testing.T, pcm []byte) *Recording {
	t.Helper()
	buffer := newCaptureBuffer(audio.GetDefaultEncodingInfo(), time.Second)
	buffer.AddAudio(pcm)
	return buffer.Seal()
}

func TestSpeechToTextTranscribeTrimsAndReportsText(t *testing.T) {
	client := &transcriberStub{
		transcribe: func(ctx context.Context, pcm []byte, opts ...speechtotext.TranscribeOption) (string, error) {
			if len(pcm) != 4 {
				t.Fatalf("expected 4 bytes of audio, got %d", len(pcm))
			}
			options := speechtotext.TranscribeOptions{}
			for _, opt := range opts {
				opt(&options)
			}
			if options.EncodingInfo.IsZero() {
				t.Fatalf("expected encoding info to be forwarded")
			}
			return "  hello there  ", nil
		},
	}

	stt := newSpeechToText(client, time.Second)
	transcript, err := stt.Transcribe(context.Background(), sealedRecording(t, []byte{1, 2, 3, 4}))
	if err != nil {
		t.Fatalf("expected transcription to succeed, got %v", err)
	}
	if !transcript.HasText || transcript.Text != "hello there" {
		t.Fatalf("expected transcript %q, got %+v", "hello there", transcript)
	}
}

func TestSpeechToTextSilenceIsNotAnError(t *testing.T) {
	calls := 0
	client := &transcriberStub{
		transcribe: func(ctx context.Context, pcm []byte, opts ...speechtotext.TranscribeOption) (string, error) {
			calls++
			return "", nil
		},
	}

	stt := newSpeechToText(client, time.Second)
	transcript, err := stt.Transcribe(context.Background(), sealedRecording(t, []byte{0, 0, 0, 0}))
	if err != nil {
		t.Fatalf("expected silent audio to transcribe without error, got %v", err)
	}
	if transcript.HasText {
		t.Fatalf("expected empty transcript to report HasText=false")
	}
	if calls != 1 {
		t.Fatalf("expected recognizer to be invoked once, got %d", calls)
	}
}

func TestSpeechToTextFailureSurfaces(t *testing.T) {
	client := &transcriberStub{
		transcribe: func(ctx context.Context, pcm []byte, opts ...speechtotext.TranscribeOption) (string, error) {
			return "", errors.New("engine unavailable")
		},
	}

	stt := newSpeechToText(client, time.Second)
	if _, err := stt.Transcribe(context.Background(), sealedRecording(t, []byte{1, 2})); !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
}

func TestSpeechToTextTimeout(t *testing.T) {
	client := &transcriberStub{
		transcribe: func(ctx context.Context, pcm []byte, opts ...speechtotext.TranscribeOption) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}

	stt := newSpeechToText(client, 10*time.Millisecond)
	if _, err := stt.Transcribe(context.Background(), sealedRecording(t, []byte{1, 2})); !errors.Is(err, ErrTranscriptionTimeout) {
		t.Fatalf("expected ErrTranscriptionTimeout, got %v", err)
	}
}

func TestSpeechToTextConsumesRecordingOnce(t *testing.T) {
	client := &transcriberStub{}
	stt := newSpeechToText(client, time.Second)
	recording := sealedRecording(t, []byte{1, 2, 3, 4})

	if _, err := stt.Transcribe(context.Background(), recording); err != nil {
		t.Fatalf("expected first transcription to succeed, got %v", err)
	}
	if _, err := stt.Transcribe(context.Background(), recording); !errors.Is(err, ErrTranscriptionFailed) {
		t.Fatalf("expected reuse of a consumed recording to fail, got %v", err)
	}
}
