package orchestration

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aafsar/multi-modal-agent/core/audio"
)

// captureBuffer accumulates raw audio frames for one recording window. It is
// bounded: once maxBytes is reached further frames are dropped (the tail of
// the frame that crosses the cap is truncated) and the full signal fires so
// the recording stops implicitly instead of failing.
type captureBuffer struct {
	mu sync.Mutex

	encodingInfo audio.EncodingInfo

	frames    [][]byte
	byteCount int
	maxBytes  int

	truncated bool
	sealed    bool

	// fullSignal fires once when the cap is reached.
	fullSignal chan struct{}
	fullOnce   sync.Once
}

func newCaptureBuffer(encodingInfo audio.EncodingInfo, maxDuration time.Duration) *captureBuffer {
	maxBytes := encodingInfo.Bytes(maxDuration)
	if maxBytes <= 0 {
		maxBytes = encodingInfo.BytesPerSecond() * 30
	}

	return &captureBuffer{
		encodingInfo: encodingInfo,
		maxBytes:     maxBytes,
		fullSignal:   make(chan struct{}),
	}
}

// AddAudio appends a frame, clipping it to whatever room remains under the
// cap. Frames arriving after the buffer is sealed or full are dropped.
func (b *captureBuffer) AddAudio(frame []byte) {
	if b == nil || len(frame) == 0 {
		return
	}

	b.mu.Lock()
	if b.sealed || b.byteCount >= b.maxBytes {
		b.mu.Unlock()
		return
	}

	room := b.maxBytes - b.byteCount
	if len(frame) > room {
		frame = frame[:room]
		b.truncated = true
	}

	stored := make([]byte, len(frame))
	copy(stored, frame)
	b.frames = append(b.frames, stored)
	b.byteCount += len(stored)
	full := b.byteCount >= b.maxBytes
	b.mu.Unlock()

	if full {
		b.fullOnce.Do(func() { close(b.fullSignal) })
	}
}

// Full returns a channel that is closed once the cap has been reached.
func (b *captureBuffer) Full() <-chan struct{} {
	return b.fullSignal
}

// Level reports the RMS level of the most recent frame in [0.0, 1.0], for
// live metering while the window is open.
func (b *captureBuffer) Level() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.frames) == 0 {
		return 0
	}
	return rmsLevel(b.frames[len(b.frames)-1])
}

// SealTruncated seals the buffer marked as cut off at the recording limit,
// for when the wall clock expires before the byte cap is reached.
func (b *captureBuffer) SealTruncated() *Recording {
	b.mu.Lock()
	b.truncated = true
	b.mu.Unlock()
	return b.Seal()
}

// Seal freezes the buffer and hands the accumulated audio over as an
// immutable Recording. Frames arriving afterwards are discarded.
func (b *captureBuffer) Seal() *Recording {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sealed = true

	pcm := make([]byte, 0, b.byteCount)
	for _, frame := range b.frames {
		pcm = append(pcm, frame...)
	}
	b.frames = nil

	return &Recording{
		encodingInfo: b.encodingInfo,
		pcm:          pcm,
		truncated:    b.truncated,
	}
}

// Recording is a sealed, immutable audio buffer produced by one recording
// window. It is consumed exactly once by transcription.
type Recording struct {
	encodingInfo audio.EncodingInfo
	pcm          []byte
	truncated    bool
	consumed     atomic.Bool
}

// Consume returns the raw audio and marks the recording consumed. A second
// call fails: the buffer belongs to exactly one transcription.
func (r *Recording) Consume() ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("no recording")
	}

	if !r.consumed.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("recording already consumed")
	}
	return r.pcm, nil
}

func (r *Recording) Len() int {
	if r == nil {
		return 0
	}
	return len(r.pcm)
}

func (r *Recording) Duration() time.Duration {
	if r == nil {
		return 0
	}
	return r.encodingInfo.Duration(len(r.pcm))
}

func (r *Recording) Truncated() bool {
	return r != nil && r.truncated
}

func (r *Recording) EncodingInfo() audio.EncodingInfo {
	if r == nil {
		return audio.GetDefaultEncodingInfo()
	}
	return r.encodingInfo
}

// Level reports the RMS level of the recording in [0.0, 1.0], for UI
// metering.
func (r *Recording) Level() float64 {
	if r == nil {
		return 0
	}
	return rmsLevel(r.pcm)
}

// rmsLevel computes the RMS of linear16 little-endian samples, normalized to
// [0.0, 1.0].
func rmsLevel(pcm []byte) float64 {
	samples := len(pcm) / 2
	if samples == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < samples; i++ {
		sample := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / math.MaxInt16
		sum += sample * sample
	}
	return math.Sqrt(sum / float64(samples))
}
