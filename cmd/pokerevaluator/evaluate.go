package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lox/pokerevaluator/cmd/pokerevaluator/shared"
	"github.com/lox/pokerevaluator/internal/classify"
	"github.com/lox/pokerevaluator/internal/config"
	"github.com/lox/pokerevaluator/internal/llm"
	"github.com/lox/pokerevaluator/internal/normalize"
	"github.com/lox/pokerevaluator/internal/prompt"
	"github.com/lox/pokerevaluator/internal/session"
	"github.com/lox/pokerevaluator/internal/transcript"
)

// EvaluateCmd runs the interactive evaluation session
type EvaluateCmd struct {
	Config     string `short:"c" default:"pokerevaluator.hcl" help:"Path to HCL configuration file"`
	Prompt     string `short:"p" help:"Prompt template file (overrides config)"`
	Transcript string `short:"o" help:"Session transcript file (overrides config)"`
	LogFile    string `help:"Diagnostic log file (overrides config)"`
	LogLevel   string `short:"l" help:"Log level: debug, info, warn, error (overrides config)"`
	Provider   string `help:"Model provider: gemini, openai, ollama (overrides config)"`
	Model      string `short:"m" help:"Model name (overrides config)"`
	BaseURL    string `name:"base-url" help:"Model API base URL (overrides config)"`
	EnvFile    string `help:"Environment file holding the API key (overrides config)"`
	NoColor    bool   `help:"Disable colored output"`
}

func (c *EvaluateCmd) Run() error {
	cfg, err := c.loadConfig()
	if err != nil {
		c.logStartupError(err)
		return err
	}

	logger, closeLog, err := shared.SetupFileLogger(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closeLog()

	if cfg.Session.NoColor || os.Getenv("NO_COLOR") != "" {
		session.DisableColor()
	}

	if err := cfg.LoadEnv(); err != nil {
		logger.Error("Failed to load environment file", "file", cfg.Files.Env, "error", err)
		return err
	}
	apiKey, err := cfg.APIKey()
	if err != nil {
		logger.Error("Missing credential", "env", cfg.Model.APIKeyEnv, "error", err)
		return err
	}

	tmpl, err := prompt.Load(cfg.Files.Prompt)
	if err != nil {
		logger.Error("Failed to load prompt template", "file", cfg.Files.Prompt, "error", err)
		return err
	}
	logger.Info("Loaded prompt template", "file", tmpl.Source)

	ctx, cancel := shared.SetupSignalHandler(logger)
	defer cancel()

	gen, err := llm.New(ctx, llm.Options{
		Provider: cfg.Model.Provider,
		Model:    cfg.Model.Name,
		APIKey:   apiKey,
		BaseURL:  cfg.Model.BaseURL,
		Timeout:  cfg.RequestTimeout(),
	}, logger)
	if err != nil {
		logger.Error("Failed to create model client", "provider", cfg.Model.Provider, "error", err)
		return err
	}

	logger.Info("Starting Poker Evaluator",
		"provider", cfg.Model.Provider,
		"model", cfg.Model.Name,
		"config", c.Config,
		"transcript", cfg.Files.Transcript)

	console := session.NewConsole(os.Stdin, os.Stdout)
	defer console.Close()

	sess := session.New(session.Config{
		Console:                console,
		Generator:              gen,
		Template:               tmpl,
		Normalizer:             normalize.New(logger),
		Classifier:             classify.New(),
		Transcript:             transcript.New(cfg.Files.Transcript, nil),
		Logger:                 logger,
		MaxClarificationRounds: cfg.ClarificationRounds(),
	})
	return sess.Run(ctx)
}

// logStartupError records a configuration failure in the diagnostic log.
// The configured log settings are unusable at this point, so the --log-file
// override or the default file is used at info level.
func (c *EvaluateCmd) logStartupError(err error) {
	path := c.LogFile
	if path == "" {
		path = config.DefaultConfig().Log.File
	}
	logger, closeLog, lerr := shared.SetupFileLogger(path, "info")
	if lerr != nil {
		return
	}
	defer closeLog()
	logger.Error("Invalid configuration", "config", c.Config, "error", err)
}

// loadConfig reads the config file and applies command line overrides
func (c *EvaluateCmd) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if c.Prompt != "" {
		cfg.Files.Prompt = c.Prompt
	}
	if c.Transcript != "" {
		cfg.Files.Transcript = c.Transcript
	}
	if c.EnvFile != "" {
		cfg.Files.Env = c.EnvFile
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}
	if c.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(c.LogLevel)
	}
	if c.Provider != "" {
		previous := cfg.Model.Provider
		cfg.Model.Provider = strings.ToLower(c.Provider)
		if c.Model == "" {
			cfg.Model.Name = llm.DefaultModel(cfg.Model.Provider)
		}
		if cfg.Model.APIKeyEnv == llm.DefaultAPIKeyEnv(previous) {
			cfg.Model.APIKeyEnv = llm.DefaultAPIKeyEnv(cfg.Model.Provider)
		}
	}
	if c.Model != "" {
		cfg.Model.Name = c.Model
	}
	if c.BaseURL != "" {
		cfg.Model.BaseURL = c.BaseURL
	}
	if c.NoColor {
		cfg.Session.NoColor = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
