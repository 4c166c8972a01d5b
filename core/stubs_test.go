package orchestration

import (
	"context"
	"sync"

	"github.com/aafsar/multi-modal-agent/core/audio"
	"github.com/aafsar/multi-modal-agent/core/intents"
	"github.com/aafsar/multi-modal-agent/core/speechtotext"
	"github.com/aafsar/multi-modal-agent/core/triggers"
)

type transcriberStub struct {
	transcribe func(ctx context.Context, pcm []byte, opts ...speechtotext.TranscribeOption) (string, error)
}

func (s *transcriberStub) Transcribe(ctx context.Context, pcm []byte, opts ...speechtotext.TranscribeOption) (string, error) {
	if s.transcribe == nil {
		return "", nil
	}
	return s.transcribe(ctx, pcm, opts...)
}

type synthesizerStub struct {
	mu sync.Mutex

	speak        func(ctx context.Context, text string) error
	reinitialize func() error

	spoken  []string
	reinits int
}

func (s *synthesizerStub) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()
	if s.speak == nil {
		return nil
	}
	return s.speak(ctx, text)
}

func (s *synthesizerStub) Reinitialize() error {
	s.mu.Lock()
	s.reinits++
	s.mu.Unlock()
	if s.reinitialize == nil {
		return nil
	}
	return s.reinitialize()
}

func (s *synthesizerStub) spokenTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func (s *synthesizerStub) reinitCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reinits
}

type classifierStub struct {
	classify func(ctx context.Context, text string) (intents.Record, error)
}

func (s *classifierStub) Classify(ctx context.Context, text string) (intents.Record, error) {
	if s.classify == nil {
		return intents.Fallback(), nil
	}
	return s.classify(ctx, text)
}

// triggerListenerStub forwards events fed by the test until the context is
// cancelled or Close is called.
type triggerListenerStub struct {
	feed chan triggers.Event

	closeOnce sync.Once
	closed    chan struct{}
}

func newTriggerListenerStub() *triggerListenerStub {
	return &triggerListenerStub{
		feed:   make(chan triggers.Event, 16),
		closed: make(chan struct{}),
	}
}

func (s *triggerListenerStub) Listen(ctx context.Context, onEvent func(triggers.Event)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.closed:
			return nil
		case event := <-s.feed:
			onEvent(event)
		}
	}
}

func (s *triggerListenerStub) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

func (s *triggerListenerStub) engage()  { s.feed <- triggers.NewEvent(triggers.Engaged) }
func (s *triggerListenerStub) release() { s.feed <- triggers.NewEvent(triggers.Released) }

// audioInputStub is a fine-control capture client that emits a fixed frame
// whenever capture starts.
type audioInputStub struct {
	frame []byte
}

func (s *audioInputStub) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (s *audioInputStub) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	return nil
}

func (s *audioInputStub) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	if len(s.frame) > 0 {
		onAudio(s.frame)
	}
	return nil
}

func (s *audioInputStub) StopCapture() error { return nil }

func (s *audioInputStub) Close() {}
