package orchestration

import (
	"context"
	"time"

	"github.com/aafsar/multi-modal-agent/core/intents"
	"go.opentelemetry.io/otel/attribute"
)

// minClassificationConfidence is the floor below which a classification is
// treated as unreliable and replaced with the fallback record.
const minClassificationConfidence = 0.3

// intentClassification wraps the configured classifier. Classification never
// fails a turn: errors, timeouts, unknown labels and low-confidence verdicts
// all collapse into the fallback record so the turn proceeds.
type intentClassification struct {
	// client stores the configured intent classifier implementation.
	client IntentClassifier

	timeout time.Duration
}

func newIntentClassification(client IntentClassifier, timeout time.Duration) *intentClassification {
	return &intentClassification{client: client, timeout: timeout}
}

func (i *intentClassification) set(client IntentClassifier) {
	if i != nil {
		i.client = client
	}
}

func (i *intentClassification) isConfigured() bool {
	return i != nil && i.client != nil
}

// Classify maps the transcript to an intent record. The returned record is
// always usable for dispatch; when the classifier cannot produce a reliable
// verdict in time the fallback record is returned instead.
func (i *intentClassification) Classify(ctx context.Context, text string) intents.Record {
	ctx, span := tracer.Start(ctx, "orchestration.classify")
	defer span.End()

	if !i.isConfigured() {
		return intents.Fallback()
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	done := make(chan intents.Record, 1)
	go func() {
		record, err := i.client.Classify(ctx, text)
		if err != nil {
			span.RecordError(err)
			done <- intents.Fallback()
			return
		}
		done <- record
	}()

	var record intents.Record
	select {
	case <-ctx.Done():
		span.RecordError(ctx.Err())
		record = intents.Fallback()
	case record = <-done:
	}

	if !intents.Known(record.Label) {
		record = intents.Fallback()
	}
	if record.Label != intents.FallbackLabel && record.Confidence < minClassificationConfidence {
		logger.InfoContext(ctx, "Discarded low-confidence classification",
			"label", record.Label, "confidence", record.Confidence)
		record = intents.Fallback()
	}

	span.SetAttributes(
		attribute.String("intent.label", record.Label),
		attribute.Float64("intent.confidence", record.Confidence),
	)
	return record
}
