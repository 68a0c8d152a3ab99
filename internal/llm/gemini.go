package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Gemini generates text with Google's Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini backend. An empty baseURL uses Google's
// endpoint.
func NewGemini(ctx context.Context, apiKey, model, baseURL string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends prompt as a single user turn
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return resp.Text(), nil
}
