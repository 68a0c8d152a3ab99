// Package llm wraps the text-generation services that produce hand
// evaluations. Every backend reduces to rendering a prompt and returning
// the model's text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Provider names accepted by New
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ErrGeneration wraps every failure returned by a backend
var ErrGeneration = errors.New("text generation failed")

// ErrEmptyResponse is returned when a backend answers with no text
var ErrEmptyResponse = errors.New("empty response from model")

// Generator turns a rendered prompt into the model's free-text reply
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures a backend
type Options struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// DefaultModel returns the model used when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderOllama:
		return "llama3.1"
	default:
		return "gemini-2.5-pro"
	}
}

// DefaultAPIKeyEnv returns the environment variable conventionally holding
// the provider's credential
func DefaultAPIKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderOllama:
		return "OLLAMA_API_KEY"
	default:
		return "GOOGLE_AI_API_KEY"
	}
}

// RequiresAPIKey reports whether the provider needs a credential
func RequiresAPIKey(provider string) bool {
	return provider != ProviderOllama
}

// New creates the backend named by opts.Provider, wrapped so that each call
// is bounded by opts.Timeout and logged.
func New(ctx context.Context, opts Options, logger *log.Logger) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = ProviderGemini
	}
	if opts.Model == "" {
		opts.Model = DefaultModel(provider)
	}
	if RequiresAPIKey(provider) && opts.APIKey == "" {
		return nil, fmt.Errorf("%s provider requires an API key", provider)
	}

	var (
		gen Generator
		err error
	)
	switch provider {
	case ProviderGemini:
		gen, err = NewGemini(ctx, opts.APIKey, opts.Model, opts.BaseURL)
	case ProviderOpenAI:
		gen = NewOpenAI(opts.APIKey, opts.Model, opts.BaseURL)
	case ProviderOllama:
		gen, err = NewOllama(opts.BaseURL, opts.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q", opts.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &logged{
		next:     gen,
		provider: provider,
		model:    opts.Model,
		timeout:  opts.Timeout,
		logger:   logger.WithPrefix("llm"),
	}, nil
}

// logged bounds each request with a timeout and records its outcome
type logged struct {
	next     Generator
	provider string
	model    string
	timeout  time.Duration
	logger   *log.Logger
}

func (l *logged) Generate(ctx context.Context, prompt string) (string, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	start := time.Now()
	l.logger.Debug("Sending prompt", "provider", l.provider, "model", l.model, "bytes", len(prompt))

	text, err := l.next.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		l.logger.Error("Generation failed", "provider", l.provider, "model", l.model,
			"duration", time.Since(start), "error", err)
		if errors.Is(err, ErrGeneration) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	l.logger.Info("Received evaluation", "provider", l.provider, "model", l.model,
		"duration", time.Since(start), "chars", len(text))
	return text, nil
}
