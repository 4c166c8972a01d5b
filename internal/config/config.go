package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type STTEngine string

const (
	STTDeepgram STTEngine = "deepgram"
	STTWhisper  STTEngine = "whisper"
)

type Config struct {
	OpenAIAPIKey   string
	DeepgramAPIKey string

	STTEngine STTEngine
	Language  string

	Voice  string
	Rate   int     // words per minute
	Volume float64 // 0.0 - 1.0

	RecordMaxSeconds int
	StepTimeout      time.Duration
	SentenceBudget   int

	SchedulePath    string
	PreferencesPath string
	Track           string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}

func getFloatEnv(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return parsed
}

// Load reads all env vars and builds the config.
func Load() (*Config, error) {
	var engine STTEngine
	switch getEnv("ASSISTANT_STT_ENGINE", "whisper") {
	case "deepgram":
		engine = STTDeepgram
	default:
		engine = STTWhisper
	}

	cfg := &Config{
		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),

		STTEngine: engine,
		Language:  getEnv("ASSISTANT_LANGUAGE", "en"),

		Voice:  getEnv("ASSISTANT_TTS_VOICE", ""),
		Rate:   getIntEnv("ASSISTANT_TTS_RATE", 175),
		Volume: getFloatEnv("ASSISTANT_TTS_VOLUME", 0.9),

		RecordMaxSeconds: getIntEnv("ASSISTANT_RECORD_MAX_SECONDS", 30),
		StepTimeout:      time.Duration(getIntEnv("ASSISTANT_STEP_TIMEOUT_SECONDS", 30)) * time.Second,
		SentenceBudget:   getIntEnv("ASSISTANT_SENTENCE_BUDGET", 3),

		SchedulePath:    getEnv("ASSISTANT_SCHEDULE_PATH", "data/schedule.csv"),
		PreferencesPath: getEnv("ASSISTANT_PREFERENCES_PATH", "knowledge/user_preference.txt"),
		Track:           getEnv("ASSISTANT_TRACK", "Tech"),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY must be set")
	}
	if cfg.STTEngine == STTDeepgram && cfg.DeepgramAPIKey == "" {
		return nil, fmt.Errorf("DEEPGRAM_API_KEY must be set when ASSISTANT_STT_ENGINE=deepgram")
	}
	if cfg.Volume < 0 || cfg.Volume > 1 {
		return nil, fmt.Errorf("ASSISTANT_TTS_VOLUME must be between 0.0 and 1.0, got %f", cfg.Volume)
	}

	return cfg, nil
}

func (c *Config) RecordingLimit() time.Duration {
	return time.Duration(c.RecordMaxSeconds) * time.Second
}
