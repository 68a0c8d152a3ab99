package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/pokerevaluator/internal/normalize"
	"github.com/lox/pokerevaluator/internal/prompt"
	"github.com/lox/pokerevaluator/internal/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator replays canned responses and records every prompt. The
// last response repeats once the script runs out.
type scriptedGenerator struct {
	responses []string
	err       error
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, rendered string) (string, error) {
	g.prompts = append(g.prompts, rendered)
	if g.err != nil {
		return "", g.err
	}
	idx := len(g.prompts) - 1
	if idx >= len(g.responses) {
		idx = len(g.responses) - 1
	}
	return g.responses[idx], nil
}

type harness struct {
	gen        *scriptedGenerator
	out        *bytes.Buffer
	transcript string
	session    *Session
}

func newHarness(t *testing.T, input string, gen *scriptedGenerator, opts ...func(*Config)) *harness {
	t.Helper()
	DisableColor()

	mockClock := quartz.NewMock(t)
	mockClock.Set(time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC))

	logger := log.New(io.Discard)
	out := &bytes.Buffer{}
	path := filepath.Join(t.TempDir(), "outputs.txt")

	console := NewConsole(strings.NewReader(input), out)
	t.Cleanup(console.Close)

	cfg := Config{
		Console:                console,
		Generator:              gen,
		Template:               &prompt.Template{Text: "P={} C={} X={}"},
		Normalizer:             normalize.New(logger),
		Transcript:             transcript.New(path, mockClock),
		Logger:                 logger,
		MaxClarificationRounds: 5,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &harness{
		gen:        gen,
		out:        out,
		transcript: path,
		session:    New(cfg),
	}
}

func (h *harness) run(t *testing.T) {
	t.Helper()
	require.NoError(t, h.session.Run(context.Background()))
}

func (h *harness) transcriptLines(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(h.transcript)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func countPrefix(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			n++
		}
	}
	return n
}

func TestSessionCompleteEvaluation(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Premium starting hand. Raise to 3x."}}
	h := newHarness(t, "AS, KH\n\n\nn\n", gen)

	h.run(t)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, "P=Ace Spades, King Hearts C= X=", gen.prompts[0])

	out := h.out.String()
	assert.Contains(t, out, "Premium starting hand")
	assert.Contains(t, out, "Evaluate another hand? (y/n)")
	assert.NotContains(t, out, "needs more information")
	assert.Contains(t, out, "Exiting Poker Evaluator.")

	lines := h.transcriptLines(t)
	assert.Equal(t, 1, countPrefix(lines, "Input: "))
	assert.Equal(t, 1, countPrefix(lines, "Output: "))
	assert.Equal(t, 0, countPrefix(lines, "Additional input: "))
	assert.Contains(t, lines, "Input: Player's cards: Ace Spades, King Hearts; Community cards: ; Context: ")
	assert.Contains(t, lines, "Output: Premium starting hand. Raise to 3x.")
	assert.Contains(t, lines, "Continue choice: n")
	assert.True(t, strings.HasPrefix(lines[0], "--- Session "))
	assert.Contains(t, lines[0], "started at 2025-06-01 20:00:00")
	assert.Contains(t, lines[len(lines)-1], "ended at")
}

func TestSessionClarifiesPlayerCards(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"The hole cards are missing from the description.",
		"Pocket queens, raise.",
	}}
	h := newHarness(t, "AS, KH\nQd 10c 5s\nBTN\nQS, QH\nn\n", gen)

	h.run(t)

	out := h.out.String()
	assert.Contains(t, out, "Provide player's cards")
	assert.NotContains(t, out, "Provide community cards")
	assert.NotContains(t, out, "Provide context")
	assert.Contains(t, out, "Updated player's cards: Queen Spades, Queen Hearts")

	require.Len(t, gen.prompts, 2)
	assert.Equal(t, "P=Queen Spades, Queen Hearts C=Queen Diamonds, 10 Clubs, 5 Spades X=BTN", gen.prompts[1])

	lines := h.transcriptLines(t)
	assert.Equal(t, 2, countPrefix(lines, "Output: "))
	assert.Contains(t, lines, "Additional input: QS, QH")
}

func TestSessionRejectsInvalidClarifiedPlayerCards(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Invalid player cards.", "Fine."}}
	h := newHarness(t, "AS, KH\n\n\nAS\nn\n", gen)

	h.run(t)

	assert.Contains(t, h.out.String(), "need exactly two player cards")
	require.Len(t, gen.prompts, 2)
	assert.Equal(t, gen.prompts[0], gen.prompts[1])
	assert.Contains(t, h.transcriptLines(t), "Error: need exactly two player cards")
}

func TestSessionClarifiesCommunityCards(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"The flop is unclear.", "Top pair."}}
	h := newHarness(t, "AS, KH\nxx\n\nah kd 2c\nn\n", gen)

	h.run(t)

	assert.Contains(t, h.out.String(), "Provide community cards")
	require.Len(t, gen.prompts, 2)
	assert.Equal(t, "P=Ace Spades, King Hearts C=xx X=", gen.prompts[0])
	assert.Equal(t, "P=Ace Spades, King Hearts C=Ace Hearts, King Diamonds, 2 Clubs X=", gen.prompts[1])
}

func TestSessionClarifiesContext(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Your position is missing.", "Open raise."}}
	h := newHarness(t, "AS, KH\n\n\nearlly positon, folded to me\nn\n", gen)

	h.run(t)

	assert.Contains(t, h.out.String(), "Provide context")
	require.Len(t, gen.prompts, 2)
	assert.Equal(t, "P=Ace Spades, King Hearts C= X=early position, folded to me", gen.prompts[1])
}

func TestSessionGenericClarificationAppendsContext(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Please clarify stack sizes.", "Shove."}}
	h := newHarness(t, "AS, KH\n\nBTN\n10BB effective\nn\n", gen)

	h.run(t)

	assert.Contains(t, h.out.String(), "Provide additional details")
	require.Len(t, gen.prompts, 2)
	assert.Equal(t, "P=Ace Spades, King Hearts C= X=BTN, 10BB effective", gen.prompts[1])
}

func TestSessionEmptyClarificationRetries(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"The board is incomplete.", "Call."}}
	h := newHarness(t, "AS, KH\n\n\n\nn\n", gen)

	h.run(t)

	assert.Contains(t, h.out.String(), "Retrying with original inputs.")
	require.Len(t, gen.prompts, 2)
	assert.Equal(t, gen.prompts[0], gen.prompts[1])
	assert.Contains(t, h.transcriptLines(t), "Retrying with original inputs.")
}

func TestSessionClarificationLimit(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Needs more detail."}}
	h := newHarness(t, "AS, KH\n\n\n\n\nn\n", gen, func(c *Config) {
		c.MaxClarificationRounds = 2
	})

	h.run(t)

	assert.Len(t, gen.prompts, 3)
	assert.Contains(t, h.out.String(), "Giving up after 2 clarification rounds.")
	assert.Contains(t, h.out.String(), "Evaluate another hand?")
}

func TestSessionValidationReprompts(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Raise."}}
	h := newHarness(t, "AS\n\n\n\n\n\nAS KH\n\n\nn\n", gen)

	h.run(t)

	out := h.out.String()
	assert.Contains(t, out, "Error: need exactly two player cards")
	assert.Contains(t, out, "Error: player's cards cannot be empty")
	require.Len(t, gen.prompts, 1)

	lines := h.transcriptLines(t)
	assert.Contains(t, lines, "Error: need exactly two player cards")
	assert.Contains(t, lines, "Error: player's cards cannot be empty")
	assert.Equal(t, 1, countPrefix(lines, "Output: "))
}

func TestSessionGenerationFailure(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("quota exceeded")}
	h := newHarness(t, "AS, KH\n\n\ny\nKs Kd\n\n\nn\n", gen)

	h.run(t)

	out := h.out.String()
	assert.Contains(t, out, "Error querying model: quota exceeded")
	assert.Equal(t, 2, strings.Count(out, "Evaluate another hand?"))
	assert.Len(t, gen.prompts, 2)

	lines := h.transcriptLines(t)
	assert.Equal(t, 2, countPrefix(lines, "Error: quota exceeded"))
	assert.Equal(t, 0, countPrefix(lines, "Output: "))
	assert.Contains(t, lines, "Continue choice: y")
}

func TestSessionTemplateFailure(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"unused"}}
	h := newHarness(t, "AS, KH\n\n\nn\n", gen, func(c *Config) {
		c.Template = &prompt.Template{Text: "Only {} and {}"}
	})

	h.run(t)

	assert.Empty(t, gen.prompts)
	assert.Contains(t, h.out.String(), "Error formatting prompt")
	assert.Equal(t, 1, countPrefix(h.transcriptLines(t), "Error: malformed prompt template"))
}

func TestSessionMultipleHands(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Raise.", "Fold."}}
	h := newHarness(t, "AS, KH\n\n\nYES\n7c 2d\n\nUTG\nno\n", gen)

	h.run(t)

	require.Len(t, gen.prompts, 2)
	assert.Equal(t, "P=7 Clubs, 2 Diamonds C= X=UTG", gen.prompts[1])
	lines := h.transcriptLines(t)
	assert.Contains(t, lines, "Continue choice: yes")
	assert.Contains(t, lines, "Continue choice: no")
}

func TestSessionEndOfInput(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Raise."}}
	h := newHarness(t, "AS, KH\n", gen)

	h.run(t)

	assert.Empty(t, gen.prompts)
	lines := h.transcriptLines(t)
	assert.Contains(t, lines[0], "started at")
	assert.Contains(t, lines[len(lines)-1], "ended at")
}

func TestSessionCancelled(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"Raise."}}
	pr, pw := io.Pipe()
	defer pw.Close()

	console := NewConsole(pr, &bytes.Buffer{})
	defer console.Close()

	h := newHarness(t, "", gen, func(c *Config) {
		c.Console = console
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.session.Run(ctx))
	assert.Contains(t, h.transcriptLines(t)[len(h.transcriptLines(t))-1], "ended at")
}

func TestIsAffirmative(t *testing.T) {
	assert.True(t, IsAffirmative("y"))
	assert.True(t, IsAffirmative(" Yes "))
	assert.False(t, IsAffirmative("n"))
	assert.False(t, IsAffirmative(""))
	assert.False(t, IsAffirmative("sure"))
}
