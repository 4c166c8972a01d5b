package orchestration

import (
	"context"
	"time"

	"github.com/aafsar/multi-modal-agent/core/audio"
	"github.com/aafsar/multi-modal-agent/core/intents"
	"github.com/aafsar/multi-modal-agent/core/responders"
	"github.com/aafsar/multi-modal-agent/core/speechtotext"
	"github.com/aafsar/multi-modal-agent/core/triggers"
)

type OrchestratorOption func(*Orchestrator)

type AudioInput interface {
	audioInputBase
}

// AudioInputFine is implemented by capture clients that can start and stop
// the device per recording window instead of streaming continuously.
type AudioInputFine interface {
	AudioInput
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
}

func WithAudioInput(client AudioInput) OrchestratorOption {
	return func(o *Orchestrator) { o.audioInput.Set(client) }
}

type TriggerListener interface {
	Listen(ctx context.Context, onEvent func(triggers.Event)) error
	Close() error
}

func WithTriggerListener(client TriggerListener) OrchestratorOption {
	return func(o *Orchestrator) { o.triggerInput.set(client) }
}

type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte, opts ...speechtotext.TranscribeOption) (string, error)
}

func WithTranscriber(client Transcriber) OrchestratorOption {
	return func(o *Orchestrator) { o.speechToText.set(client) }
}

type SpeechSynthesizer interface {
	Speak(ctx context.Context, text string) error
	Reinitialize() error
}

func WithSynthesizer(client SpeechSynthesizer) OrchestratorOption {
	return func(o *Orchestrator) { o.textToSpeech.set(client) }
}

type IntentClassifier interface {
	Classify(ctx context.Context, text string) (intents.Record, error)
}

func WithClassifier(client IntentClassifier) OrchestratorOption {
	return func(o *Orchestrator) { o.intentClassification.set(client) }
}

func WithResponders(registry *responders.Registry) OrchestratorOption {
	return func(o *Orchestrator) { o.dispatcher.set(registry) }
}

// WithLanguage hints transcription with a BCP-47 language tag.
func WithLanguage(language string) OrchestratorOption {
	return func(o *Orchestrator) { o.speechToText.setLanguage(language) }
}

// WithRecordingLimit caps a single recording window. Audio past the cap is
// dropped and the recording is marked truncated.
func WithRecordingLimit(limit time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if limit > 0 {
			o.recordingLimit = limit
		}
	}
}

// WithStepTimeout bounds each external call (transcription, responder
// dispatch, synthesis).
func WithStepTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.stepTimeout = timeout
		}
	}
}

// WithClassificationTimeout bounds intent classification separately from the
// step timeout; classification overruns fall back instead of failing.
func WithClassificationTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if timeout > 0 {
			o.classificationTimeout = timeout
		}
	}
}

// WithSentenceBudget caps spoken responses to at most n sentences. Zero
// disables clipping.
func WithSentenceBudget(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n >= 0 {
			o.sentenceBudget = n
		}
	}
}

type RunOptions struct {
	onModeChanged   func(mode Mode)
	onRecording     func(level float64)
	onTranscription func(transcript string)
	onResponse      func(response AgentResponse)
	onNotice        func(notice string)
}

type RunOption func(*RunOptions)

// WithModeChangedCallback registers a callback invoked on every session mode
// transition, including degradations back to idle.
func WithModeChangedCallback(callback func(mode Mode)) RunOption {
	return func(o *RunOptions) {
		o.onModeChanged = callback
	}
}

// WithRecordingLevelCallback registers a callback fed the capture level in
// [0, 1] while a recording window is open. It runs on the audio path and
// should not block.
func WithRecordingLevelCallback(callback func(level float64)) RunOption {
	return func(o *RunOptions) {
		o.onRecording = callback
	}
}

// WithTranscriptionCallback registers a callback for final transcripts.
//
// Text turns submitted through [Orchestrator.SubmitText] do not trigger this
// callback.
func WithTranscriptionCallback(callback func(transcript string)) RunOption {
	return func(o *RunOptions) {
		o.onTranscription = callback
	}
}

func WithResponseCallback(callback func(response AgentResponse)) RunOption {
	return func(o *RunOptions) {
		o.onResponse = callback
	}
}

// WithNoticeCallback registers a callback for user-facing notices such as
// truncation warnings and failure explanations.
func WithNoticeCallback(callback func(notice string)) RunOption {
	return func(o *RunOptions) {
		o.onNotice = callback
	}
}

type audioInputBase interface {
	EncodingInfo() audio.EncodingInfo
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	Close()
}
