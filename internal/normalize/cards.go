// Package normalize cleans up free-text hand descriptions before they are
// sent for evaluation: card shorthand expansion, verbose word correction,
// context typo fixes and player-card validation.
package normalize

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/pokerevaluator/internal/deck"
)

// MaxCards is the most cards a single field may resolve to. Anything past
// it is dropped.
const MaxCards = 5

type substitution struct {
	pattern *regexp.Regexp
	replace string
}

func wordFix(word, replace string) substitution {
	return substitution{
		pattern: regexp.MustCompile(`(?i)\b` + word + `\b`),
		replace: replace,
	}
}

// verboseFixes rewrites spelled-out ranks and suits into the canonical
// words before tokens are looked up.
var verboseFixes = []substitution{
	wordFix("of", " "),
	wordFix("ace", "Ace"),
	wordFix("king", "King"),
	wordFix("queen", "Queen"),
	wordFix("jack", "Jack"),
	wordFix("ten", "10"),
	wordFix("spades?", "Spades"),
	wordFix("hearts?", "Hearts"),
	wordFix("diamonds?", "Diamonds"),
	wordFix("clubs?", "Clubs"),
}

// Normalizer maps raw card and context text to canonical form
type Normalizer struct {
	logger *log.Logger
}

// New creates a normalizer that reports discarded tokens to logger
func New(logger *log.Logger) *Normalizer {
	return &Normalizer{logger: logger.WithPrefix("normalize")}
}

// CardsResult is the outcome of normalizing a card field
type CardsResult struct {
	// Cards holds the resolved cards, at most MaxCards
	Cards []deck.Card
	// Rejected holds tokens that did not resolve to a card
	Rejected []string
	// Text is the canonical "Rank Suit, Rank Suit" rendering, or the raw
	// input unchanged when no token resolved.
	Text string
}

// Resolved reports whether at least one card was recognised
func (r CardsResult) Resolved() bool {
	return len(r.Cards) > 0
}

// Cards normalizes a comma or space separated list of cards. It accepts
// shorthand ("AS", "10h", "Td"), spelled out cards ("ace of spades") and
// mixed forms ("K hearts"). It never fails: unknown tokens are dropped with
// a warning and, when nothing resolves, the input is returned verbatim.
func (n *Normalizer) Cards(raw string) CardsResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CardsResult{}
	}

	text := raw
	for _, fix := range verboseFixes {
		text = fix.pattern.ReplaceAllString(text, fix.replace)
	}

	// Commas always separate cards; a rank and suit may only pair up as
	// two words inside the same comma group.
	result := CardsResult{}
	for _, group := range strings.Split(text, ",") {
		n.parseGroup(strings.Fields(group), raw, &result)
	}

	if len(result.Cards) == 0 {
		result.Text = raw
		return result
	}
	result.Text = deck.FormatCards(result.Cards)
	return result
}

func (n *Normalizer) parseGroup(tokens []string, raw string, result *CardsResult) {
	for i := 0; i < len(tokens) && len(result.Cards) < MaxCards; i++ {
		if card, err := deck.ParseCard(tokens[i]); err == nil {
			result.Cards = append(result.Cards, card)
			continue
		}

		// Two-word form: rank followed by suit
		if rank, ok := deck.ParseRank(tokens[i]); ok && i+1 < len(tokens) {
			if suit, ok := deck.ParseSuit(tokens[i+1]); ok {
				result.Cards = append(result.Cards, deck.NewCard(suit, rank))
				i++
				continue
			}
		}

		n.logger.Warn("Invalid card format", "token", tokens[i], "input", raw)
		result.Rejected = append(result.Rejected, tokens[i])
	}
}
