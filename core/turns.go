package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aafsar/multi-modal-agent/core/triggers"
)

// VoiceTurn runs one voice turn: waits for the trigger to engage, records
// until release or the recording limit, then transcribes, classifies,
// dispatches and speaks the response. Failures degrade the session back to
// idle with a notice instead of an error; only terminal conditions (a
// terminated session or a cancelled context) return one.
func (o *Orchestrator) VoiceTurn(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "orchestration.voiceTurn")
	defer span.End()

	if o.session.isTerminated() {
		return ErrSessionTerminated
	}
	o.session.setInputChannel(InputVoice)

	turnStart := time.Now()
	sample := turnSample{}

	recording, err := o.record(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, ErrSessionTerminated) {
			return err
		}
		span.RecordError(err)
		o.degrade(ctx, err.Error())
		return nil
	}
	if recording.Len() == 0 {
		o.degrade(ctx, "No audio was captured. Check your microphone and try again.")
		return nil
	}
	if recording.Truncated() {
		o.notify(fmt.Sprintf("Recording stopped at the %s limit; using what was captured.", o.recordingLimit))
	}

	if err := o.setMode(ctx, ModeProcessing); err != nil {
		return err
	}

	transcriptionStart := time.Now()
	transcript, err := o.speechToText.Transcribe(ctx, recording)
	sample.transcription = time.Since(transcriptionStart)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.degrade(ctx, "I couldn't transcribe that. Please try again.")
		return nil
	}
	if !transcript.HasText {
		o.degrade(ctx, "I didn't catch anything. Please try again.")
		return nil
	}
	span.SetAttributes(attribute.Int("transcript.length", len(transcript.Text)))
	if o.runOptions.onTranscription != nil {
		o.runOptions.onTranscription(transcript.Text)
	}

	response, thinkErr := o.think(ctx, transcript.Text, &sample)
	if thinkErr != nil {
		return thinkErr
	}
	if !response.Succeeded {
		o.degrade(ctx, response.Text)
		return nil
	}

	if err := o.setMode(ctx, ModeSpeaking); err != nil {
		return err
	}

	synthesisStart := time.Now()
	speakErr := o.textToSpeech.Speak(ctx, response.Text)
	sample.synthesis = time.Since(synthesisStart)
	if speakErr != nil {
		span.RecordError(speakErr)
		span.SetStatus(codes.Error, speakErr.Error())
		o.degrade(ctx, "Speech output failed. The response is shown above.")
		return nil
	}

	sample.total = time.Since(turnStart)
	return o.completeTurn(ctx, sample)
}

// SubmitText runs one text turn with already-available input. Synthesis is
// never invoked; the response is delivered through the response callback
// only.
func (o *Orchestrator) SubmitText(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "orchestration.textTurn")
	defer span.End()

	if o.session.isTerminated() {
		return ErrSessionTerminated
	}
	o.session.setInputChannel(InputText)

	text = strings.TrimSpace(text)
	if text == "" {
		o.degrade(ctx, "Nothing to answer: the input was empty.")
		return nil
	}

	turnStart := time.Now()
	sample := turnSample{}

	if err := o.setMode(ctx, ModeProcessing); err != nil {
		return err
	}

	response, err := o.think(ctx, text, &sample)
	if err != nil {
		return err
	}
	if !response.Succeeded {
		o.degrade(ctx, response.Text)
		return nil
	}

	if err := o.setMode(ctx, ModeDone); err != nil {
		return err
	}

	sample.total = time.Since(turnStart)
	return o.completeTurn(ctx, sample)
}

// record opens a recording window: waits for the trigger to engage, streams
// audio into a bounded buffer, and seals it on release, at the byte cap, or
// when the recording limit elapses, whichever comes first.
func (o *Orchestrator) record(ctx context.Context) (*Recording, error) {
	if !o.audioInput.IsConfigured() {
		return nil, errors.New("no audio input configured")
	}
	if !o.triggerInput.isConfigured() {
		return nil, errors.New("no trigger listener configured")
	}

	// Stale events from previous turns must not start a capture.
	o.triggerInput.Drain()
	o.notify("Press and hold the trigger to record.")

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case event := <-o.triggerInput.Events():
			if o.session.isTerminated() {
				return nil, ErrSessionTerminated
			}
			if event.Kind() != triggers.Engaged {
				continue
			}
			return o.captureUntilRelease(ctx)
		}
	}
}

func (o *Orchestrator) captureUntilRelease(ctx context.Context) (*Recording, error) {
	if err := o.setMode(ctx, ModeRecording); err != nil {
		return nil, err
	}

	buffer := newCaptureBuffer(o.audioInput.EncodingInfo(), o.recordingLimit)
	if err := o.audioInput.AttachSink(ctx, buffer); err != nil {
		return nil, fmt.Errorf("failed to start audio capture: %w", err)
	}
	defer func() {
		if err := o.audioInput.DetachSink(); err != nil {
			logger.WarnContext(ctx, "Failed to stop audio capture", "error", err)
		}
	}()

	var levelTicker *time.Ticker
	var levelTick <-chan time.Time
	if o.runOptions.onRecording != nil {
		levelTicker = time.NewTicker(100 * time.Millisecond)
		levelTick = levelTicker.C
		defer levelTicker.Stop()
	}

	// The byte cap bounds the data; the wall clock bounds the wait. A stalled
	// or slow device must not hold the recording window open past the limit.
	limit := time.NewTimer(o.recordingLimit)
	defer limit.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-levelTick:
			o.runOptions.onRecording(buffer.Level())
		case <-limit.C:
			return buffer.SealTruncated(), nil
		case <-buffer.Full():
			return buffer.Seal(), nil
		case event := <-o.triggerInput.Events():
			if o.session.isTerminated() {
				return nil, ErrSessionTerminated
			}
			// Repeated engagements while recording are no-ops.
			if event.Kind() != triggers.Released {
				continue
			}
			return buffer.Seal(), nil
		}
	}
}

// think classifies the text and dispatches it to a responder. Classification
// cannot fail the turn; responder failures produce a notice-bearing response
// with Succeeded set to false, which is still delivered.
func (o *Orchestrator) think(ctx context.Context, text string, sample *turnSample) (AgentResponse, error) {
	if err := o.setMode(ctx, ModeThinking); err != nil {
		return AgentResponse{}, err
	}

	thinkingStart := time.Now()
	record := o.intentClassification.Classify(ctx, text)
	response := o.dispatcher.Dispatch(ctx, record, text)
	sample.thinking = time.Since(thinkingStart)

	if response.Succeeded && o.runOptions.onResponse != nil {
		o.runOptions.onResponse(response)
	}
	return response, nil
}

// setMode transitions the session and emits the mode-change callback. A
// terminated session aborts the turn.
func (o *Orchestrator) setMode(ctx context.Context, to Mode) error {
	if o.session.isTerminated() {
		return ErrSessionTerminated
	}
	if err := o.session.transition(to); err != nil {
		if o.session.isTerminated() {
			return ErrSessionTerminated
		}
		return err
	}

	logger.DebugContext(ctx, "Session mode changed", "mode", string(to))
	if o.runOptions.onModeChanged != nil {
		o.runOptions.onModeChanged(to)
	}
	return nil
}

func (o *Orchestrator) completeTurn(ctx context.Context, sample turnSample) error {
	if err := o.session.completeTurn(); err != nil {
		if o.session.isTerminated() {
			return ErrSessionTerminated
		}
		return err
	}
	o.metrics.record(sample)

	if o.runOptions.onModeChanged != nil {
		o.runOptions.onModeChanged(ModeIdle)
	}
	logger.InfoContext(ctx, "Turn completed", "turn", o.session.TurnCount())
	return nil
}

// degrade aborts the current turn, returns the session to idle without
// counting the turn, and surfaces the notice to the user.
func (o *Orchestrator) degrade(ctx context.Context, notice string) {
	o.session.degrade()
	o.metrics.recordError()
	o.notify(notice)

	if o.runOptions.onModeChanged != nil {
		o.runOptions.onModeChanged(ModeIdle)
	}
	logger.InfoContext(ctx, "Turn degraded", "notice", notice)
}

func (o *Orchestrator) notify(notice string) {
	if o.runOptions.onNotice != nil {
		o.runOptions.onNotice(notice)
	}
}
