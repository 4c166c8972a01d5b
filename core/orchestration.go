// Package orchestration coordinates a push-to-talk conversational session:
// capture, transcription, intent classification, responder dispatch and
// speech delivery, driven by a single sequential state machine.
package orchestration

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRecordingLimit        = 30 * time.Second
	defaultStepTimeout           = 30 * time.Second
	defaultClassificationTimeout = 2 * time.Second
	defaultSentenceBudget        = 3
)

type Orchestrator struct {
	session *session
	metrics *turnMetrics

	// audioInput is the input facade used to normalize capture behavior.
	audioInput *audioInput
	// triggerInput buffers push-to-talk events from the configured listener.
	triggerInput *triggerInput
	// speechToText is the STT facade used to handle optional client wiring.
	speechToText *speechToText
	// textToSpeech owns the synthesis retry policy.
	textToSpeech *textToSpeech
	// intentClassification absorbs classifier failures into the fallback.
	intentClassification *intentClassification
	// dispatcher routes classified utterances to responders.
	dispatcher *dispatcher

	recordingLimit        time.Duration
	stepTimeout           time.Duration
	classificationTimeout time.Duration
	sentenceBudget        int

	runOptions  RunOptions
	baseContext context.Context
	cancelBase  context.CancelFunc

	closeOnce sync.Once
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		session:               newSession(),
		metrics:               &turnMetrics{},
		recordingLimit:        defaultRecordingLimit,
		stepTimeout:           defaultStepTimeout,
		classificationTimeout: defaultClassificationTimeout,
		sentenceBudget:        defaultSentenceBudget,
		baseContext:           context.Background(),
	}

	o.audioInput = newAudioInput(nil)
	o.triggerInput = newTriggerInput(nil)
	o.speechToText = newSpeechToText(nil, o.stepTimeout)
	o.textToSpeech = newTextToSpeech(nil, o.stepTimeout)
	o.intentClassification = newIntentClassification(nil, o.classificationTimeout)
	o.dispatcher = newDispatcher(nil, o.stepTimeout, o.sentenceBudget)

	for _, opt := range opts {
		opt(o)
	}

	o.speechToText.timeout = o.stepTimeout
	o.textToSpeech.timeout = o.stepTimeout
	o.intentClassification.timeout = o.classificationTimeout
	o.dispatcher.timeout = o.stepTimeout
	o.dispatcher.sentenceBudget = o.sentenceBudget

	return o
}

// Start launches the background collaborators (trigger listener and, for
// coarse clients, the audio stream) and registers the run callbacks.
//
// Contract: call Start at most once per orchestrator instance. Repeated or
// concurrent calls are unsupported and may race while run callbacks are
// being reconfigured.
func (o *Orchestrator) Start(ctx context.Context, opts ...RunOption) {
	if o.session.isTerminated() {
		log.Println("Warning: orchestrator already terminated, skipping Start")
		return
	}

	o.runOptions = RunOptions{}
	for _, opt := range opts {
		opt(&o.runOptions)
	}

	ctx, cancel := context.WithCancel(ctx)
	o.baseContext = ctx
	o.cancelBase = cancel

	// An externally cancelled context counts as an exit request.
	withContextCancelHook(ctx, o.session.terminate)

	o.triggerInput.Start(ctx)
	o.audioInput.Start(ctx)
}

// Terminate moves the session into its absorbing terminal state and cancels
// any in-flight external call. In-flight calls are abandoned, not awaited.
func (o *Orchestrator) Terminate() {
	o.session.terminate()
	if o.cancelBase != nil {
		o.cancelBase()
	}
}

func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.Terminate()

		if err := o.triggerInput.Close(); err != nil {
			recordedErr := fmt.Errorf("failed to close trigger listener: %w", err)
			span := trace.SpanFromContext(o.baseContext)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
		}

		if err := o.audioInput.Close(); err != nil {
			recordedErr := fmt.Errorf("failed to close audio input: %w", err)
			span := trace.SpanFromContext(o.baseContext)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
		}

		o.textToSpeech.Close()
	})
}

// Mode reports the session's current state.
func (o *Orchestrator) Mode() Mode {
	return o.session.Mode()
}

// TurnCount reports the number of completed turns. Degraded turns are not
// counted.
func (o *Orchestrator) TurnCount() int {
	return o.session.TurnCount()
}

// Metrics returns a snapshot of per-turn latency averages.
func (o *Orchestrator) Metrics() Metrics {
	return o.metrics.snapshot()
}
