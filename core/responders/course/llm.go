package course

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// LLM is the minimal completion surface the course responders need.
type LLM interface {
	Respond(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// OpenAILLM answers responder prompts with an OpenAI chat completion.
type OpenAILLM struct {
	api   *openai.Client
	model string
}

func NewOpenAILLM(apiKey string) *OpenAILLM {
	return &OpenAILLM{api: openai.NewClient(apiKey), model: openai.GPT4oMini}
}

func (l *OpenAILLM) Respond(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "prompt course llm")
	defer span.End()

	response, err := l.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("course llm request failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("course llm returned no choices")
	}

	return response.Choices[0].Message.Content, nil
}
