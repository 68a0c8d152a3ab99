// Package config loads the evaluator's HCL configuration and resolves the
// model credential from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/lox/pokerevaluator/internal/llm"
)

// ErrMissingCredential is returned when the model API key is not set
var ErrMissingCredential = errors.New("missing API credential")

// Config represents the complete evaluator configuration
type Config struct {
	Model   *ModelSettings   `hcl:"model,block"`
	Files   *FileSettings    `hcl:"files,block"`
	Session *SessionSettings `hcl:"session,block"`
	Log     *LogSettings     `hcl:"log,block"`
}

// ModelSettings selects the text-generation backend
type ModelSettings struct {
	Provider  string `hcl:"provider,optional"`
	Name      string `hcl:"name,optional"`
	BaseURL   string `hcl:"base_url,optional"`
	APIKeyEnv string `hcl:"api_key_env,optional"`
	// Timeout is in seconds; 0 disables the request timeout
	Timeout *int `hcl:"timeout,optional"`
}

// FileSettings locates the files the evaluator reads and writes
type FileSettings struct {
	Prompt     string `hcl:"prompt,optional"`
	Transcript string `hcl:"transcript,optional"`
	Env        string `hcl:"env,optional"`
}

// SessionSettings tunes the interactive loop
type SessionSettings struct {
	// MaxClarificationRounds bounds follow-ups per hand; 0 means no limit
	MaxClarificationRounds *int `hcl:"max_clarification_rounds,optional"`
	NoColor                bool `hcl:"no_color,optional"`
}

// LogSettings controls the diagnostic log
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Model: &ModelSettings{
			Provider:  llm.ProviderGemini,
			Name:      llm.DefaultModel(llm.ProviderGemini),
			APIKeyEnv: llm.DefaultAPIKeyEnv(llm.ProviderGemini),
			Timeout:   intPtr(120),
		},
		Files: &FileSettings{
			Prompt:     "prompt.txt",
			Transcript: "outputs.txt",
			Env:        ".env",
		},
		Session: &SessionSettings{
			MaxClarificationRounds: intPtr(5),
		},
		Log: &LogSettings{
			Level: "info",
			File:  "PokerEvaluator.log",
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills every unset value from DefaultConfig
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Model == nil {
		c.Model = defaults.Model
	}
	if c.Model.Provider == "" {
		c.Model.Provider = defaults.Model.Provider
	}
	if c.Model.Name == "" {
		c.Model.Name = llm.DefaultModel(c.Model.Provider)
	}
	if c.Model.APIKeyEnv == "" {
		c.Model.APIKeyEnv = llm.DefaultAPIKeyEnv(c.Model.Provider)
	}
	if c.Model.Timeout == nil {
		c.Model.Timeout = defaults.Model.Timeout
	}

	if c.Files == nil {
		c.Files = defaults.Files
	}
	if c.Files.Prompt == "" {
		c.Files.Prompt = defaults.Files.Prompt
	}
	if c.Files.Transcript == "" {
		c.Files.Transcript = defaults.Files.Transcript
	}
	if c.Files.Env == "" {
		c.Files.Env = defaults.Files.Env
	}

	if c.Session == nil {
		c.Session = defaults.Session
	}
	if c.Session.MaxClarificationRounds == nil {
		c.Session.MaxClarificationRounds = defaults.Session.MaxClarificationRounds
	}

	if c.Log == nil {
		c.Log = defaults.Log
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = defaults.Log.File
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderOllama:
	default:
		return fmt.Errorf("invalid model provider: %s", c.Model.Provider)
	}

	if c.Model.Timeout != nil && *c.Model.Timeout < 0 {
		return fmt.Errorf("model timeout cannot be negative")
	}

	if c.Files.Prompt == "" {
		return fmt.Errorf("prompt file is required")
	}

	if c.Files.Transcript == "" {
		return fmt.Errorf("transcript file is required")
	}

	if c.Session.MaxClarificationRounds != nil && *c.Session.MaxClarificationRounds < 0 {
		return fmt.Errorf("max clarification rounds cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}

	return nil
}

// RequestTimeout returns the per-request model timeout
func (c *Config) RequestTimeout() time.Duration {
	if c.Model.Timeout == nil {
		return 0
	}
	return time.Duration(*c.Model.Timeout) * time.Second
}

// ClarificationRounds returns the per-hand clarification limit
func (c *Config) ClarificationRounds() int {
	if c.Session.MaxClarificationRounds == nil {
		return 0
	}
	return *c.Session.MaxClarificationRounds
}

func intPtr(v int) *int {
	return &v
}

// LoadEnv loads the configured env file into the process environment.
// A missing file is not an error; variables already set are kept.
func (c *Config) LoadEnv() error {
	if c.Files.Env == "" {
		return nil
	}
	if err := godotenv.Load(c.Files.Env); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", c.Files.Env, err)
	}
	return nil
}

// APIKey resolves the model credential from the environment. Providers that
// need no credential return an empty key.
func (c *Config) APIKey() (string, error) {
	key := os.Getenv(c.Model.APIKeyEnv)
	if key == "" && llm.RequiresAPIKey(c.Model.Provider) {
		return "", fmt.Errorf("%w: %s not found in environment or %s", ErrMissingCredential, c.Model.APIKeyEnv, c.Files.Env)
	}
	return key, nil
}

// DefaultHCL is the configuration file written by the init command
const DefaultHCL = `# Poker evaluator configuration

model {
  # gemini, openai or ollama
  provider    = "gemini"
  name        = "gemini-2.5-pro"
  api_key_env = "GOOGLE_AI_API_KEY"
  # base_url  = "http://localhost:11434"
  timeout     = 120
}

files {
  prompt     = "prompt.txt"
  transcript = "outputs.txt"
  env        = ".env"
}

session {
  max_clarification_rounds = 5
  no_color                 = false
}

log {
  level = "info"
  file  = "PokerEvaluator.log"
}
`
