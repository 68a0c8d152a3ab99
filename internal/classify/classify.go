// Package classify decides whether a model evaluation is complete or is
// asking for more information, and if so which field it wants.
package classify

import "strings"

// Verdict is the outcome of classifying a model response
type Verdict int

const (
	Complete Verdict = iota
	NeedsPlayerCards
	NeedsCommunityCards
	NeedsContext
	NeedsGeneric
)

// String returns a readable name for the verdict
func (v Verdict) String() string {
	switch v {
	case Complete:
		return "complete"
	case NeedsPlayerCards:
		return "needs_player_cards"
	case NeedsCommunityCards:
		return "needs_community_cards"
	case NeedsContext:
		return "needs_context"
	case NeedsGeneric:
		return "needs_generic"
	default:
		return "unknown"
	}
}

// NeedsClarification reports whether the verdict asks the user for more input
func (v Verdict) NeedsClarification() bool {
	return v != Complete
}

// Rule maps a keyword group to the verdict it implies
type Rule struct {
	Verdict  Verdict
	Keywords []string
}

// Classifier matches lowercased response text against keyword groups.
// Trigger keywords decide whether clarification is needed at all; rules are
// then tried in order and the first match wins.
type Classifier struct {
	Triggers []string
	Rules    []Rule
}

// DefaultTriggers signal that the model could not finish the evaluation
var DefaultTriggers = []string{"needs", "missing", "incomplete", "unclear", "clarify", "invalid"}

// DefaultRules are checked in priority order: player cards, community cards, context
var DefaultRules = []Rule{
	{Verdict: NeedsPlayerCards, Keywords: []string{"player", "two cards", "hole cards"}},
	{Verdict: NeedsCommunityCards, Keywords: []string{"community", "flop", "board"}},
	{Verdict: NeedsContext, Keywords: []string{"context", "position", "action"}},
}

// New returns a classifier using the default keyword groups
func New() *Classifier {
	return &Classifier{
		Triggers: DefaultTriggers,
		Rules:    DefaultRules,
	}
}

// Classify inspects a response. Text without any trigger keyword is
// Complete; triggered text falling through every rule is NeedsGeneric.
func (c *Classifier) Classify(response string) Verdict {
	text := strings.ToLower(response)
	if !containsAny(text, c.Triggers) {
		return Complete
	}
	for _, rule := range c.Rules {
		if containsAny(text, rule.Keywords) {
			return rule.Verdict
		}
	}
	return NeedsGeneric
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
