package orchestration

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/aafsar/multi-modal-agent/core/intents"
	"github.com/aafsar/multi-modal-agent/core/responders"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// requestDateLayout matches the schedule data's date format so responders can
// compare against it directly.
const requestDateLayout = "01/02/2006"

// AgentResponse is the outcome of dispatching one classified utterance.
type AgentResponse struct {
	// Text is the response to deliver. Non-empty even on failure.
	Text string
	// SourceLabel names the intent whose responder produced the text.
	SourceLabel string
	// Succeeded is false when the responder errored and Text holds the
	// failure notice instead of an answer.
	Succeeded bool
}

// dispatcher routes classified utterances to registered responders. Each
// call builds a fresh request so no state leaks between turns.
type dispatcher struct {
	registry *responders.Registry

	timeout        time.Duration
	sentenceBudget int
}

func newDispatcher(registry *responders.Registry, timeout time.Duration, sentenceBudget int) *dispatcher {
	return &dispatcher{
		registry:       registry,
		timeout:        timeout,
		sentenceBudget: sentenceBudget,
	}
}

func (d *dispatcher) set(registry *responders.Registry) {
	if d != nil {
		d.registry = registry
	}
}

func (d *dispatcher) isConfigured() bool {
	return d != nil && d.registry != nil
}

// Dispatch resolves the responder for the record's label and invokes it with
// an isolated request. Responder failures are converted into a failure
// notice rather than propagated, so the turn can still deliver something.
func (d *dispatcher) Dispatch(ctx context.Context, record intents.Record, question string) AgentResponse {
	ctx, span := tracer.Start(ctx, "orchestration.dispatch")
	defer span.End()

	if !d.isConfigured() {
		return AgentResponse{
			Text:        "No responders are configured.",
			SourceLabel: record.Label,
			Succeeded:   false,
		}
	}

	responder, specialized := d.registry.Lookup(record.Label)
	label := record.Label
	if !specialized {
		label = intents.FallbackLabel
	}
	span.SetAttributes(
		attribute.String("dispatch.label", label),
		attribute.Bool("dispatch.specialized", specialized),
	)

	if responder == nil {
		err := fmt.Errorf("no responder registered for %q and no fallback installed", record.Label)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AgentResponse{
			Text:        "I don't know how to help with that yet.",
			SourceLabel: label,
			Succeeded:   false,
		}
	}

	request, err := d.buildRequest(record, question)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return AgentResponse{
			Text:        "Something went wrong preparing your request.",
			SourceLabel: label,
			Succeeded:   false,
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	text, err := responder.Respond(ctx, request)
	if err != nil {
		recordedErr := fmt.Errorf("%w: %w", ErrResponderFailed, err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return AgentResponse{
			Text:        "I ran into a problem answering that. Please try again.",
			SourceLabel: label,
			Succeeded:   false,
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		text = "I don't have an answer for that."
	}

	return AgentResponse{
		Text:        clipSentences(text, d.sentenceBudget),
		SourceLabel: label,
		Succeeded:   true,
	}
}

// buildRequest assembles a per-call request. Parameters are deep copied so a
// responder mutating them cannot affect the classifier's record or another
// call.
func (d *dispatcher) buildRequest(record intents.Record, question string) (responders.Request, error) {
	parameters := map[string]string{}
	if len(record.Parameters) > 0 {
		if err := copier.CopyWithOption(&parameters, record.Parameters, copier.Option{DeepCopy: true}); err != nil {
			return responders.Request{}, fmt.Errorf("failed to copy intent parameters: %w", err)
		}
	}

	return responders.Request{
		ID:          uuid.NewString(),
		Intent:      record.Label,
		Question:    question,
		Parameters:  parameters,
		CurrentDate: time.Now().Format(requestDateLayout),
	}, nil
}

// clipSentences trims text to at most budget sentences. A budget of zero or
// less means no clipping.
func clipSentences(text string, budget int) string {
	if budget <= 0 {
		return text
	}

	count := 0
	for i, r := range text {
		switch r {
		case '.', '!', '?':
			if i+1 < len(text) {
				next := rune(text[i+1])
				// Treat runs of terminal punctuation as one boundary.
				if strings.ContainsRune(".!?", next) {
					continue
				}
				// A terminator inside a token ("3.5", "10.30") is not a
				// sentence end; require trailing whitespace or end of text.
				if !unicode.IsSpace(next) {
					continue
				}
			}
			count++
			if count >= budget {
				return strings.TrimSpace(text[:i+1])
			}
		}
	}
	return text
}
