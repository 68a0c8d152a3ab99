package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaURL is used when no base URL is configured
const DefaultOllamaURL = "http://localhost:11434"

// Ollama generates text with a local Ollama server
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama creates an Ollama backend
func NewOllama(baseURL, model string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama base URL %q: %w", baseURL, err)
	}
	return &Ollama{
		client: api.NewClient(u, http.DefaultClient),
		model:  model,
	}, nil
}

// Generate runs a non-streaming completion
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: &stream,
	}

	var out strings.Builder
	err := o.client.Generate(ctx, req, func(r api.GenerateResponse) error {
		out.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	return out.String(), nil
}
