package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/lox/pokerevaluator/internal/config"
	"github.com/lox/pokerevaluator/internal/fileutil"
	"github.com/lox/pokerevaluator/internal/prompt"
)

// InitCmd writes starter files for a new evaluator setup
type InitCmd struct {
	Dir   string `default:"." help:"Directory to write the files into"`
	Force bool   `help:"Overwrite existing files"`
}

func (c *InitCmd) Run() error {
	files := []struct {
		name    string
		content string
	}{
		{"prompt.txt", prompt.Default + "\n"},
		{"pokerevaluator.hcl", config.DefaultHCL},
	}

	for _, f := range files {
		path := filepath.Join(c.Dir, f.name)
		err := fileutil.Scaffold(path, []byte(f.content), c.Force)
		switch {
		case errors.Is(err, fileutil.ErrExists):
			fmt.Printf("Skipped %s (already exists, use --force to overwrite)\n", path)
		case err != nil:
			return fmt.Errorf("writing %s: %w", path, err)
		default:
			fmt.Printf("Wrote %s\n", path)
		}
	}
	return nil
}
