package audio

import "time"

const (
	DefaultSampleRate = 16000
	DefaultChannels   = 1
	DefaultFormat     = "linear16"
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Channels: DefaultChannels, Format: encodingFormat(DefaultFormat)}
}

// EncodingInfo describes the raw sample layout shared between capture clients
// and transcription uploads.
type EncodingInfo struct {
	SampleRate int
	Channels   int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// BytesPerSecond reports how many buffer bytes correspond to one second of
// audio in this encoding.
func (e EncodingInfo) BytesPerSecond() int {
	channels := e.Channels
	if channels == 0 {
		channels = 1
	}
	return e.SampleRate * e.Format.ByteSize() * channels
}

// Duration converts a byte count into playback time.
func (e EncodingInfo) Duration(byteCount int) time.Duration {
	perSecond := e.BytesPerSecond()
	if perSecond <= 0 {
		return 0
	}
	return time.Duration(float64(byteCount) / float64(perSecond) * float64(time.Second))
}

// Bytes converts a duration into the number of buffer bytes it occupies.
func (e EncodingInfo) Bytes(duration time.Duration) int {
	return int(float64(duration) / float64(time.Second) * float64(e.BytesPerSecond()))
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
