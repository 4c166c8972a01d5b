package speechtotext

import "github.com/aafsar/multi-modal-agent/core/audio"

type TranscribeOptions struct {
	// Language hints the recognizer; empty means engine default.
	Language string

	EncodingInfo audio.EncodingInfo
}

type TranscribeOption func(*TranscribeOptions)

func WithLanguage(language string) TranscribeOption {
	return func(o *TranscribeOptions) {
		o.Language = language
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TranscribeOption {
	return func(o *TranscribeOptions) {
		if encodingInfo.IsZero() {
			return
		}

		o.EncodingInfo = encodingInfo
	}
}
