package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aafsar/multi-modal-agent/core/intents"
)

func testClassifier(t *testing.T, handler http.HandlerFunc) *Classifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	classifier := NewClassifier("test-key")
	classifier.baseURL = server.URL
	return classifier
}

func completionWith(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(body)
}

func TestClassifyParsesStructuredVerdict(t *testing.T) {
	classifier := testClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("expected bearer auth, got %q", got)
		}

		var req requestBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Fatalf("expected a json_schema response format, got %+v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("expected system + user messages, got %+v", req.Messages)
		}

		fmt.Fprint(w, completionWith(`{"intent":"topic_research","topic":"RAG pipelines","track":"","confidence":0.87}`))
	})

	record, err := classifier.Classify(context.Background(), "look into RAG pipelines for me")
	if err != nil {
		t.Fatalf("expected classification to succeed, got %v", err)
	}
	if record.Label != intents.LabelTopicResearch {
		t.Fatalf("expected label %q, got %q", intents.LabelTopicResearch, record.Label)
	}
	if record.Parameters["topic"] != "RAG pipelines" {
		t.Fatalf("expected topic parameter, got %v", record.Parameters)
	}
	if record.Confidence != 0.87 {
		t.Fatalf("expected confidence 0.87, got %f", record.Confidence)
	}
}

func TestClassifyMapsOtherToFallback(t *testing.T) {
	classifier := testClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionWith(`{"intent":"other","topic":"","track":"","confidence":0.95}`))
	})

	record, err := classifier.Classify(context.Background(), "sing me a song")
	if err != nil {
		t.Fatalf("expected classification to succeed, got %v", err)
	}
	if record.Label != intents.FallbackLabel {
		t.Fatalf("expected fallback label, got %q", record.Label)
	}
}

func TestClassifyReportsHTTPErrors(t *testing.T) {
	classifier := testClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	})

	if _, err := classifier.Classify(context.Background(), "anything"); err == nil {
		t.Fatalf("expected an error for a non-OK status")
	}
}

func TestClassifyReportsMalformedVerdicts(t *testing.T) {
	classifier := testClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, completionWith(`not json at all`))
	})

	if _, err := classifier.Classify(context.Background(), "anything"); err == nil {
		t.Fatalf("expected an error for an unparseable verdict")
	}
}

func TestToRecordExtractsParameters(t *testing.T) {
	record := toRecord(classification{Intent: "assignments", Track: "Analyst", Confidence: 0.7})
	if record.Label != intents.LabelAssignments {
		t.Fatalf("expected assignments label, got %q", record.Label)
	}
	if record.Parameters["track"] != "Analyst" {
		t.Fatalf("expected track parameter, got %v", record.Parameters)
	}
	if _, ok := record.Parameters["topic"]; ok {
		t.Fatalf("expected no topic parameter for an empty topic")
	}
}
