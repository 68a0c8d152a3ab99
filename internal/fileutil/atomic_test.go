package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "prompt.txt")

	if err := WriteFileAtomic(testFile, []byte("initial"), 0644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(testFile, []byte("Hand: {} {} {}"), 0600); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "Hand: {} {} {}" {
		t.Errorf("File content mismatch: got %q", string(data))
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("File permissions mismatch: got %o, want %o", info.Mode().Perm(), 0600)
	}

	// No temp files left behind
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only prompt.txt, got %d entries", len(entries))
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	t.Parallel()

	err := WriteFileAtomic(filepath.Join(t.TempDir(), "nope", "f.txt"), []byte("x"), 0644)
	if err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestScaffold(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "config", "pokerevaluator.hcl")

	if err := Scaffold(target, []byte("first"), false); err != nil {
		t.Fatalf("Scaffold failed: %v", err)
	}

	err := Scaffold(target, []byte("second"), false)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if data, _ := os.ReadFile(target); string(data) != "first" {
		t.Errorf("existing file was modified: %q", string(data))
	}

	if err := Scaffold(target, []byte("second"), true); err != nil {
		t.Fatalf("Scaffold overwrite failed: %v", err)
	}
	if data, _ := os.ReadFile(target); string(data) != "second" {
		t.Errorf("overwrite not applied: %q", string(data))
	}
}
