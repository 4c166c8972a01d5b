package deepgram

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	coreaudio "github.com/aafsar/multi-modal-agent/core/audio"
	"github.com/aafsar/multi-modal-agent/core/speechtotext"
	listenv1rest "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest"
	interfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces"
	listen "github.com/deepgram/deepgram-go-sdk/pkg/client/listen"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const model = "nova-3"

// Client transcribes sealed recordings through Deepgram's prerecorded REST
// API. Raw linear16 audio is accepted directly as long as the encoding
// metadata rides along as query options, so no container staging is needed.
type Client struct {
	api *listenv1rest.Client
}

// NewClientFromEnvironment builds a client authenticated by DEEPGRAM_API_KEY.
func NewClientFromEnvironment() *Client {
	return &Client{api: listenv1rest.New(listen.NewRESTWithDefaults())}
}

func (c *Client) Transcribe(ctx context.Context, pcm []byte, opts ...speechtotext.TranscribeOption) (string, error) {
	options := speechtotext.TranscribeOptions{EncodingInfo: coreaudio.GetDefaultEncodingInfo()}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, span := tracer.Start(ctx, "transcribe with deepgram")
	defer span.End()
	span.SetAttributes(
		attribute.Int("request.audio_bytes", len(pcm)),
		attribute.String("request.model", model),
	)

	if len(pcm) == 0 {
		return "", nil
	}

	channels := options.EncodingInfo.Channels
	if channels == 0 {
		channels = coreaudio.DefaultChannels
	}

	response, err := c.api.FromStream(ctx, bytes.NewReader(pcm), &interfaces.PreRecordedTranscriptionOptions{
		Model:       model,
		Language:    options.Language,
		SmartFormat: true,
		Encoding:    options.EncodingInfo.Format.Name(),
		SampleRate:  options.EncodingInfo.SampleRate,
		Channels:    channels,
	})
	if err != nil {
		err = fmt.Errorf("deepgram transcription failed: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	// Results is optional in the response; Deepgram returns an empty or
	// absent result set for silence, which is a valid empty transcript
	// rather than a failure.
	if response == nil || response.Results == nil ||
		len(response.Results.Channels) == 0 || len(response.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}

	return strings.TrimSpace(response.Results.Channels[0].Alternatives[0].Transcript), nil
}
