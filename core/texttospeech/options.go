package texttospeech

const (
	// DefaultRate is the speaking rate in words per minute.
	DefaultRate = 175
	// DefaultVolume is the playback volume in [0.0, 1.0].
	DefaultVolume = 0.9
)

type SynthesizeOptions struct {
	// Voice selects the engine voice; empty means engine default.
	Voice string
	// Rate is the speaking rate in words per minute.
	Rate int
	// Volume is the playback volume in [0.0, 1.0].
	Volume float64
}

type SynthesizeOption func(*SynthesizeOptions)

func DefaultSynthesizeOptions() SynthesizeOptions {
	return SynthesizeOptions{Rate: DefaultRate, Volume: DefaultVolume}
}

func WithVoice(voice string) SynthesizeOption {
	return func(o *SynthesizeOptions) {
		o.Voice = voice
	}
}

func WithRate(wordsPerMinute int) SynthesizeOption {
	return func(o *SynthesizeOptions) {
		if wordsPerMinute <= 0 {
			return
		}
		o.Rate = wordsPerMinute
	}
}

func WithVolume(volume float64) SynthesizeOption {
	return func(o *SynthesizeOptions) {
		if volume < 0 || volume > 1 {
			return
		}
		o.Volume = volume
	}
}
