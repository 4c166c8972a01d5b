package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aafsar/multi-modal-agent/core/intents"
)

func TestIntentClassificationPassesThroughConfidentVerdicts(t *testing.T) {
	client := &classifierStub{
		classify: func(ctx context.Context, text string) (intents.Record, error) {
			return intents.Record{
				Label:      intents.LabelNextClass,
				Parameters: map[string]string{"topic": "testing"},
				Confidence: 0.9,
			}, nil
		},
	}

	classification := newIntentClassification(client, time.Second)
	record := classification.Classify(context.Background(), "what's next?")
	if record.Label != intents.LabelNextClass {
		t.Fatalf("expected label %q, got %q", intents.LabelNextClass, record.Label)
	}
	if record.Parameters["topic"] != "testing" {
		t.Fatalf("expected parameters to pass through, got %v", record.Parameters)
	}
}

func TestIntentClassificationFallsBackOnError(t *testing.T) {
	client := &classifierStub{
		classify: func(ctx context.Context, text string) (intents.Record, error) {
			return intents.Record{}, errors.New("classifier unavailable")
		},
	}

	classification := newIntentClassification(client, time.Second)
	record := classification.Classify(context.Background(), "anything")
	if record.Label != intents.FallbackLabel {
		t.Fatalf("expected fallback label, got %q", record.Label)
	}
}

func TestIntentClassificationFallsBackOnTimeout(t *testing.T) {
	client := &classifierStub{
		classify: func(ctx context.Context, text string) (intents.Record, error) {
			<-ctx.Done()
			return intents.Record{}, ctx.Err()
		},
	}

	classification := newIntentClassification(client, 10*time.Millisecond)
	record := classification.Classify(context.Background(), "anything")
	if record.Label != intents.FallbackLabel {
		t.Fatalf("expected fallback label on timeout, got %q", record.Label)
	}
}

func TestIntentClassificationFallsBackOnUnknownLabel(t *testing.T) {
	client := &classifierStub{
		classify: func(ctx context.Context, text string) (intents.Record, error) {
			return intents.Record{Label: "order_pizza", Confidence: 0.99}, nil
		},
	}

	classification := newIntentClassification(client, time.Second)
	record := classification.Classify(context.Background(), "anything")
	if record.Label != intents.FallbackLabel {
		t.Fatalf("expected fallback label for unknown verdict, got %q", record.Label)
	}
}

func TestIntentClassificationFallsBackOnLowConfidence(t *testing.T) {
	client := &classifierStub{
		classify: func(ctx context.Context, text string) (intents.Record, error) {
			return intents.Record{Label: intents.LabelWeeklyPlan, Confidence: 0.1}, nil
		},
	}

	classification := newIntentClassification(client, time.Second)
	record := classification.Classify(context.Background(), "anything")
	if record.Label != intents.FallbackLabel {
		t.Fatalf("expected fallback label for low confidence, got %q", record.Label)
	}
}

func TestIntentClassificationWithoutClientFallsBack(t *testing.T) {
	classification := newIntentClassification(nil, time.Second)
	record := classification.Classify(context.Background(), "anything")
	if record.Label != intents.FallbackLabel {
		t.Fatalf("expected fallback label without a classifier, got %q", record.Label)
	}
}
