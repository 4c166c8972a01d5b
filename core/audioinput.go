package orchestration

import (
	"context"
	"log"
	"sync/atomic"

	"github.com/aafsar/multi-modal-agent/core/audio"
)

// audioInput normalizes capture behavior across backends. Coarse clients
// stream continuously once started and frames are routed to whichever
// capture buffer is attached; fine clients additionally support starting and
// stopping the device per recording window.
type audioInput struct {
	// base stores the configured input client used for streaming audio.
	base AudioInput
	// fineCaptureControl is set when the client supports explicit capture controls.
	fineCaptureControl AudioInputFine

	// connected reports whether a concrete input client is configured.
	connected atomic.Bool
	// streaming reports whether a coarse client's stream loop is running.
	streaming atomic.Bool

	// sink is the capture buffer frames are routed into; nil drops frames.
	sink atomic.Pointer[captureBuffer]
}

func newAudioInput(client AudioInput) *audioInput {
	input := &audioInput{}
	input.Set(client)
	return input
}

func (a *audioInput) Set(client AudioInput) {
	if a == nil {
		return
	}

	a.base = client
	a.fineCaptureControl = nil
	a.connected.Store(false)

	if client == nil {
		return
	}

	a.connected.Store(true)
	if fine, ok := client.(AudioInputFine); ok {
		a.fineCaptureControl = fine
	}
}

func (a *audioInput) IsConfigured() bool            { return a != nil && a.connected.Load() }
func (a *audioInput) SupportsCaptureControls() bool { return a != nil && a.fineCaptureControl != nil }

// Start launches the stream loop for coarse clients. Fine clients start per
// recording window instead, so nothing happens here.
func (a *audioInput) Start(ctx context.Context) {
	if !a.IsConfigured() || a.SupportsCaptureControls() {
		return
	}

	if !a.streaming.CompareAndSwap(false, true) {
		return
	}

	go func() {
		if err := a.base.Stream(ctx, a.onAudio); err != nil {
			a.streaming.Store(false)
			// TODO: Find a way to propagate this error
			log.Printf("Failed to start audio input: %v", err)
		}
	}()
}

// AttachSink routes incoming frames into the given capture buffer. For fine
// clients this also starts the device.
func (a *audioInput) AttachSink(ctx context.Context, buffer *captureBuffer) error {
	if a == nil || !a.IsConfigured() {
		return nil
	}

	a.sink.Store(buffer)
	if a.SupportsCaptureControls() {
		if err := a.fineCaptureControl.StartCapture(ctx, a.onAudio); err != nil {
			a.sink.Store(nil)
			return err
		}
	}
	return nil
}

// DetachSink stops routing frames. For fine clients this also stops the
// device.
func (a *audioInput) DetachSink() error {
	if a == nil || !a.IsConfigured() {
		return nil
	}

	a.sink.Store(nil)
	if a.SupportsCaptureControls() {
		return a.fineCaptureControl.StopCapture()
	}
	return nil
}

func (a *audioInput) Close() error {
	if a == nil || !a.IsConfigured() {
		return nil
	}

	a.sink.Store(nil)
	if a.SupportsCaptureControls() {
		if err := a.fineCaptureControl.StopCapture(); err != nil {
			log.Printf("Failed to stop audio capture: %v", err)
		}
	}
	a.base.Close()
	a.connected.Store(false)
	return nil
}

func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	if a == nil || a.base == nil {
		return audio.GetDefaultEncodingInfo()
	}

	return a.base.EncodingInfo()
}

func (a *audioInput) onAudio(frame []byte) {
	if sink := a.sink.Load(); sink != nil {
		sink.AddAudio(frame)
	}
}
