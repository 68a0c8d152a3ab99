// Package prompt loads the evaluation prompt template and fills in hand
// details.
//
// Templates use positional fields: "{}" takes the next argument in order,
// "{0}", "{1}" and "{2}" select one explicitly, and "{{" / "}}" produce
// literal braces. Argument 0 is the player's cards, 1 the community cards
// and 2 the context.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Slots is the number of positional fields a template must reference
const Slots = 3

// ErrTemplate is returned when a template cannot be filled
var ErrTemplate = errors.New("malformed prompt template")

// Template is a prompt loaded from disk
type Template struct {
	Source string
	Text   string
}

// Load reads and trims a template file
func Load(filename string) (*Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("prompt template %s not found: %w", filename, err)
		}
		return nil, fmt.Errorf("reading prompt template %s: %w", filename, err)
	}
	return &Template{Source: filename, Text: strings.TrimSpace(string(data))}, nil
}

// Render fills the template with the player cards, community cards and
// context, in that order.
func (t *Template) Render(playerCards, communityCards, context string) (string, error) {
	return Render(t.Text, playerCards, communityCards, context)
}

// Render fills text with exactly three positional arguments. Every slot
// must be referenced at least once.
func Render(text string, args ...string) (string, error) {
	if len(args) != Slots {
		return "", fmt.Errorf("%w: expected %d arguments, got %d", ErrTemplate, Slots, len(args))
	}

	var (
		out      strings.Builder
		used     [Slots]bool
		next     int
		auto     bool
		explicit bool
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch ch {
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				out.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d", ErrTemplate, i)
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				out.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed '{' at offset %d", ErrTemplate, i)
			}
			field := text[i+1 : i+1+end]
			i += end + 1

			var idx int
			if field == "" {
				if explicit {
					return "", fmt.Errorf("%w: cannot mix automatic and numbered fields", ErrTemplate)
				}
				auto = true
				idx = next
				next++
			} else {
				if auto {
					return "", fmt.Errorf("%w: cannot mix automatic and numbered fields", ErrTemplate)
				}
				explicit = true
				n, err := strconv.Atoi(field)
				if err != nil {
					return "", fmt.Errorf("%w: unsupported field {%s}", ErrTemplate, field)
				}
				idx = n
			}
			if idx < 0 || idx >= Slots {
				return "", fmt.Errorf("%w: field index %d out of range", ErrTemplate, idx)
			}
			used[idx] = true
			out.WriteString(args[idx])
		default:
			out.WriteByte(ch)
		}
	}

	for idx, ok := range used {
		if !ok {
			return "", fmt.Errorf("%w: no insertion point for argument %d", ErrTemplate, idx)
		}
	}
	return out.String(), nil
}

// Default is the template written by the init command
const Default = `You are an experienced No-Limit Texas Hold'em coach.

Evaluate the following hand and recommend the best action with a short explanation.

Player's cards: {}
Community cards: {}
Context: {}

If any of the details above are missing, incomplete or invalid, say which ones
(player's hole cards, community cards or context) and ask the user to clarify.`
