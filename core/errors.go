package orchestration

import "errors"

// Turn-level failure taxonomy. Classification failures are deliberately
// absent: they are absorbed by the fallback intent and never surface.
var (
	// ErrTranscriptionFailed means the recognizer explicitly reported failure.
	// The turn is aborted without retry; failed recognition usually indicates
	// silence or noise rather than a transient fault.
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrTranscriptionTimeout means the recognizer did not answer within the
	// configured bound. Treated like an explicit failure.
	ErrTranscriptionTimeout = errors.New("transcription timed out")
	// ErrResponderFailed means the dispatched responder errored or timed out.
	ErrResponderFailed = errors.New("responder failed")
	// ErrSynthesisFailed means speech synthesis failed even after the
	// automatic engine re-initialization retry.
	ErrSynthesisFailed = errors.New("speech synthesis failed")
	// ErrEmptyInput means there was nothing to process: no audio captured,
	// a silent transcript, or blank typed text.
	ErrEmptyInput = errors.New("empty input")
	// ErrSessionTerminated means an exit was requested; not a failure.
	ErrSessionTerminated = errors.New("session terminated")
)
