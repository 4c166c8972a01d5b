package whisper

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"strings"

	coreaudio "github.com/aafsar/multi-modal-agent/core/audio"
	"github.com/aafsar/multi-modal-agent/core/speechtotext"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client transcribes sealed recordings through the OpenAI Whisper API.
//
// The API only accepts containerized audio, so the raw linear16 buffer is
// staged as a WAV file on an in-memory filesystem before upload.
type Client struct {
	api     *openai.Client
	model   string
	fileSys afero.Fs
}

func NewClient(apiKey string) *Client {
	return &Client{
		api:     openai.NewClient(apiKey),
		model:   openai.Whisper1,
		fileSys: afero.NewMemMapFs(),
	}
}

func (c *Client) Transcribe(ctx context.Context, pcm []byte, opts ...speechtotext.TranscribeOption) (string, error) {
	options := speechtotext.TranscribeOptions{EncodingInfo: coreaudio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, span := tracer.Start(ctx, "transcribe with whisper")
	defer span.End()
	span.SetAttributes(
		attribute.Int("request.audio_bytes", len(pcm)),
		attribute.String("request.language", options.Language),
	)

	if len(pcm) == 0 {
		return "", nil
	}

	wavBytes, err := c.encodeWAV(pcm, options.EncodingInfo)
	if err != nil {
		err = fmt.Errorf("failed to encode capture as wav: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.model,
		FilePath: "capture.wav",
		Reader:   bytes.NewReader(wavBytes),
		Language: options.Language,
	})
	if err != nil {
		err = fmt.Errorf("whisper transcription failed: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	return strings.TrimSpace(resp.Text), nil
}

// encodeWAV writes the linear16 buffer into a WAV container on the in-memory
// filesystem. The wav encoder needs an io.WriteSeeker to backfill the header,
// which afero files provide without touching the real disk.
func (c *Client) encodeWAV(pcm []byte, encodingInfo coreaudio.EncodingInfo) ([]byte, error) {
	file, err := c.fileSys.Create("capture.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to stage wav file: %w", err)
	}
	defer c.fileSys.Remove(file.Name())
	defer file.Close()

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	channels := encodingInfo.Channels
	if channels == 0 {
		channels = coreaudio.DefaultChannels
	}

	encoder := wav.NewEncoder(file, encodingInfo.SampleRate, 16, channels, 1)
	if err := encoder.Write(&audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  encodingInfo.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}); err != nil {
		return nil, fmt.Errorf("failed to write wav data: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize wav header: %w", err)
	}

	return afero.ReadFile(c.fileSys, file.Name())
}
