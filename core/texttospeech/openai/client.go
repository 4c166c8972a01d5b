package openai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/aafsar/multi-modal-agent/core/texttospeech"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client synthesizes speech through the OpenAI TTS API and plays it through
// the beep speaker.
//
// The playback engine handle is owned explicitly so Reinitialize can discard
// and recreate it. On some platforms the device goes silent after the first
// playback within a process lifetime; the orchestrator relies on
// Reinitialize before its retry to recover from that.
type Client struct {
	api     *openai.Client
	voice   openai.SpeechVoice
	speed   float64
	volume  float64
	options texttospeech.SynthesizeOptions

	mu     sync.Mutex
	engine *playbackEngine
}

func NewClient(apiKey string, opts ...texttospeech.SynthesizeOption) *Client {
	options := texttospeech.DefaultSynthesizeOptions()
	for _, opt := range opts {
		opt(&options)
	}

	voice := openai.VoiceAlloy
	if options.Voice != "" {
		voice = openai.SpeechVoice(options.Voice)
	}

	return &Client{
		api:     openai.NewClient(apiKey),
		voice:   voice,
		speed:   float64(options.Rate) / float64(texttospeech.DefaultRate),
		volume:  options.Volume,
		options: options,
		engine:  &playbackEngine{},
	}
}

// Speak synthesizes text and blocks until playback finishes or ctx is done.
func (c *Client) Speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "speak response")
	defer span.End()
	span.SetAttributes(attribute.Int("request.text_length", len(text)))

	response, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          c.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          c.speed,
	})
	if err != nil {
		err = fmt.Errorf("speech synthesis failed: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer response.Close()

	encoded, err := io.ReadAll(response)
	if err != nil {
		err = fmt.Errorf("failed to read synthesized audio: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	c.mu.Lock()
	engine := c.engine
	c.mu.Unlock()

	if err := engine.play(ctx, encoded, c.volume); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

// Reinitialize discards the playback engine and creates a fresh one. The old
// handle is drained before replacement so no dangling playback survives.
// Calling it repeatedly is safe and equivalent to calling it once.
func (c *Client) Reinitialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.engine.discard()
	c.engine = &playbackEngine{}
	return nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.discard()
}

// playbackEngine is a single-owner handle around the beep speaker. The
// speaker itself is process-global, so the handle tracks whether this
// instance has claimed and initialized it.
type playbackEngine struct {
	mu          sync.Mutex
	initialized bool
	sampleRate  beep.SampleRate
	discarded   bool
}

func (e *playbackEngine) play(ctx context.Context, encoded []byte, volume float64) error {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(encoded)))
	if err != nil {
		return fmt.Errorf("failed to decode synthesized audio: %w", err)
	}
	defer streamer.Close()

	e.mu.Lock()
	if e.discarded {
		e.mu.Unlock()
		return fmt.Errorf("playback engine already discarded")
	}
	if !e.initialized || e.sampleRate != format.SampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			e.mu.Unlock()
			return fmt.Errorf("failed to initialize playback device: %w", err)
		}
		e.initialized = true
		e.sampleRate = format.SampleRate
	}
	e.mu.Unlock()

	done := make(chan struct{})
	speaker.Play(beep.Seq(leveled(streamer, volume), beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

func (e *playbackEngine) discard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.discarded {
		return
	}

	if e.initialized {
		speaker.Clear()
	}
	e.discarded = true
	e.initialized = false
}

// leveled maps the configured [0,1] volume onto beep's logarithmic scale.
func leveled(streamer beep.Streamer, volume float64) beep.Streamer {
	if volume >= 1 {
		return streamer
	}

	return &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   math.Log2(math.Max(volume, 0.05)),
		Silent:   volume <= 0,
	}
}
