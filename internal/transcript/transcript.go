// Package transcript appends a human-readable record of an evaluation
// session to a text file. The file is opened, appended and closed for
// every entry so that nothing is lost if the process dies mid-session.
package transcript

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// TimeFormat is used for session start and end stamps
const TimeFormat = "2006-01-02 15:04:05.000000"

// Transcript writes entries for a single session
type Transcript struct {
	path  string
	clock quartz.Clock
	id    string
	mu    sync.Mutex
}

// New creates a transcript appending to path. A nil clock uses real time.
func New(path string, clock quartz.Clock) *Transcript {
	if clock == nil {
		clock = quartz.NewReal()
	}
	id := ""
	if u, err := uuid.NewV7(); err == nil {
		id = u.String()
	} else {
		id = uuid.NewString()
	}
	return &Transcript{path: path, clock: clock, id: id}
}

// Path returns the transcript file path
func (t *Transcript) Path() string {
	return t.path
}

// SessionID identifies this session in the transcript
func (t *Transcript) SessionID() string {
	return t.id
}

// Start records the beginning of a session
func (t *Transcript) Start() error {
	return t.append(fmt.Sprintf("\n--- Session %s started at %s ---", t.id, t.clock.Now().Format(TimeFormat)))
}

// End records the end of a session
func (t *Transcript) End() error {
	return t.append(fmt.Sprintf("--- Session %s ended at %s ---", t.id, t.clock.Now().Format(TimeFormat)))
}

// Request records the hand details that were submitted or rejected
func (t *Transcript) Request(playerCards, communityCards, context string) error {
	return t.append(fmt.Sprintf("Input: Player's cards: %s; Community cards: %s; Context: %s",
		playerCards, communityCards, context))
}

// Response records the model's evaluation
func (t *Transcript) Response(text string) error {
	return t.append("Output: " + text)
}

// Error records a failure shown to the user
func (t *Transcript) Error(err error) error {
	return t.append("Error: " + err.Error())
}

// Clarification records extra input supplied after the model asked for it
func (t *Transcript) Clarification(input string) error {
	return t.append("Additional input: " + input)
}

// Retry records a resubmission with unchanged inputs
func (t *Transcript) Retry() error {
	return t.append("Retrying with original inputs.")
}

// Note records a free-form line
func (t *Transcript) Note(text string) error {
	return t.append(text)
}

// Continue records the answer to the evaluate-another-hand prompt
func (t *Transcript) Continue(choice string) error {
	return t.append("Continue choice: " + choice)
}

func (t *Transcript) append(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing transcript: %w", err)
	}
	return f.Close()
}
