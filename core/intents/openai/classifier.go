package openai

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/aafsar/multi-modal-agent/core/intents"
	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	url          = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o-mini"
)

//go:embed classifierInstr.tmpl
var classifierSystemPrompt string

// classification is the schema the model is constrained to. Intent names must
// stay in sync with the labels in the intents package.
type classification struct {
	Intent     string  `json:"intent" jsonschema:"title=Intent,description=The category of the user request,enum=next_class,enum=topic_research,enum=weekly_plan,enum=assignments,enum=help,enum=other"`
	Topic      string  `json:"topic" jsonschema:"title=Topic,description=The research topic if the user named one,default="`
	Track      string  `json:"track" jsonschema:"title=Track,description=The course track if the user named one,enum=,enum=Tech,enum=Analyst,default="`
	Confidence float64 `json:"confidence" jsonschema:"title=Confidence,description=How certain the classification is between 0 and 1"`
}

// Classifier maps free-form text onto the intent vocabulary using an OpenAI
// chat completion constrained by a JSON schema.
type Classifier struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewClassifier(apiKey string) *Classifier {
	return &Classifier{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: url,
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) (intents.Record, error) {
	ctx, span := tracer.Start(ctx, "classify intent")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.model))

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(classification{})

	reqBody := requestBody{
		Model:       c.model,
		Temperature: 0.1,
		MaxTokens:   200,
		Messages: []message{
			{Role: "system", Content: classifierSystemPrompt},
			{Role: "user", Content: fmt.Sprintf("User query: %q", text)},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &responseSchema{
				Name:   "classification",
				Schema: *schema,
				Strict: true,
			},
		},
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return intents.Record{}, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return intents.Record{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return intents.Record{}, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return intents.Record{}, err
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("error reading response body: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return intents.Record{}, err
	}

	var response responseBody
	if err := json.Unmarshal(respBodyBytes, &response); err != nil {
		err = fmt.Errorf("error unmarshalling response: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return intents.Record{}, err
	}
	if len(response.Choices) == 0 {
		err := fmt.Errorf("classifier returned no choices")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return intents.Record{}, err
	}

	var verdict classification
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &verdict); err != nil {
		err = fmt.Errorf("error unmarshalling classification: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return intents.Record{}, err
	}

	record := toRecord(verdict)
	span.SetAttributes(
		attribute.String("response.intent", record.Label),
		attribute.Float64("response.confidence", record.Confidence),
	)
	return record, nil
}

func toRecord(verdict classification) intents.Record {
	parameters := map[string]string{}
	if verdict.Topic != "" {
		parameters["topic"] = verdict.Topic
	}
	if verdict.Track != "" {
		parameters["track"] = verdict.Track
	}

	label := verdict.Intent
	if !intents.Known(label) {
		label = intents.FallbackLabel
	}

	return intents.Record{
		Label:      label,
		Parameters: parameters,
		Confidence: verdict.Confidence,
	}
}

type requestBody struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *responseSchema `json:"json_schema,omitempty"`
}

type responseSchema struct {
	Name   string            `json:"name"`
	Schema jsonschema.Schema `json:"schema"`
	Strict bool              `json:"strict"`
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}
