package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAI generates text with any OpenAI-compatible chat completion API
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI backend. An empty baseURL uses the default
// OpenAI endpoint.
func NewOpenAI(apiKey, model, baseURL string) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Generate sends prompt as a single user message
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
