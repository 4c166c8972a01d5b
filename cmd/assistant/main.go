package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	orchestration "github.com/aafsar/multi-modal-agent/core"
	"github.com/aafsar/multi-modal-agent/core/audio/miniaudio"
	intentsopenai "github.com/aafsar/multi-modal-agent/core/intents/openai"
	"github.com/aafsar/multi-modal-agent/core/responders"
	"github.com/aafsar/multi-modal-agent/core/responders/course"
	"github.com/aafsar/multi-modal-agent/core/speechtotext/deepgram"
	"github.com/aafsar/multi-modal-agent/core/speechtotext/whisper"
	"github.com/aafsar/multi-modal-agent/core/texttospeech"
	ttsopenai "github.com/aafsar/multi-modal-agent/core/texttospeech/openai"
	"github.com/aafsar/multi-modal-agent/core/triggers/keyboard"
	"github.com/aafsar/multi-modal-agent/internal/config"
	"github.com/aafsar/multi-modal-agent/internal/ui"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("assistant stopped: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	terminal := ui.NewTerminal(os.Stdout)
	terminal.Welcome(course.Capabilities())

	audioIn, err := miniaudio.NewClient()
	if err != nil {
		return fmt.Errorf("failed to init audio capture: %w", err)
	}

	var transcriber orchestration.Transcriber
	switch cfg.STTEngine {
	case config.STTDeepgram:
		transcriber = deepgram.NewClientFromEnvironment()
	default:
		transcriber = whisper.NewClient(cfg.OpenAIAPIKey)
	}

	synthesizer := ttsopenai.NewClient(cfg.OpenAIAPIKey,
		texttospeech.WithVoice(cfg.Voice),
		texttospeech.WithRate(cfg.Rate),
		texttospeech.WithVolume(cfg.Volume),
	)

	registry := responders.NewRegistry()
	crew := course.NewCrew(course.NewOpenAILLM(cfg.OpenAIAPIKey),
		course.WithSchedulePath(cfg.SchedulePath),
		course.WithPreferencesPath(cfg.PreferencesPath),
		course.WithDefaultTrack(cfg.Track),
	)
	crew.Register(registry)

	orchestrator := orchestration.NewOrchestrator(
		orchestration.WithAudioInput(audioIn),
		orchestration.WithTriggerListener(keyboard.NewListener()),
		orchestration.WithTranscriber(transcriber),
		orchestration.WithSynthesizer(synthesizer),
		orchestration.WithClassifier(intentsopenai.NewClassifier(cfg.OpenAIAPIKey)),
		orchestration.WithResponders(registry),
		orchestration.WithLanguage(cfg.Language),
		orchestration.WithRecordingLimit(cfg.RecordingLimit()),
		orchestration.WithStepTimeout(cfg.StepTimeout),
		orchestration.WithSentenceBudget(cfg.SentenceBudget),
	)
	defer orchestrator.Close()

	orchestrator.Start(ctx,
		orchestration.WithModeChangedCallback(func(mode orchestration.Mode) {
			terminal.State(string(mode))
		}),
		orchestration.WithRecordingLevelCallback(terminal.Level),
		orchestration.WithTranscriptionCallback(terminal.Transcript),
		orchestration.WithResponseCallback(func(response orchestration.AgentResponse) {
			terminal.Response(response.Text)
		}),
		orchestration.WithNoticeCallback(terminal.Notice),
	)

	stdin := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			orchestrator.Terminate()
			return nil
		}

		fmt.Print("\n[v]oice, [t]ext or [e]xit? ")
		choice, err := stdin.ReadString('\n')
		if err != nil {
			orchestrator.Terminate()
			return nil
		}

		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "v", "voice":
			if err := orchestrator.VoiceTurn(ctx); err != nil {
				if errors.Is(err, orchestration.ErrSessionTerminated) || ctx.Err() != nil {
					return nil
				}
				terminal.Notice(err.Error())
			}
		case "t", "text":
			fmt.Print("> ")
			line, err := stdin.ReadString('\n')
			if err != nil {
				orchestrator.Terminate()
				return nil
			}
			if err := orchestrator.SubmitText(ctx, line); err != nil {
				if errors.Is(err, orchestration.ErrSessionTerminated) || ctx.Err() != nil {
					return nil
				}
				terminal.Notice(err.Error())
			}
		case "e", "exit", "q", "quit":
			orchestrator.Terminate()
			metrics := orchestrator.Metrics()
			terminal.Metrics(fmt.Sprintf(
				"Turns: %d | errors: %d | avg transcription %v | avg thinking %v | avg synthesis %v | avg turn %v",
				metrics.Turns, metrics.Errors, metrics.AvgTranscription, metrics.AvgThinking, metrics.AvgSynthesis, metrics.AvgTurn,
			))
			return nil
		default:
			terminal.Notice("Please answer v, t or e.")
		}
	}
}
