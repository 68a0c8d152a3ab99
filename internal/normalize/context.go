package normalize

import "strings"

// contextTypos are misspellings seen in situational context text
var contextTypos = []substitution{
	wordFix("earlly", "early"),
	wordFix("latly", "late"),
	wordFix("positon", "position"),
}

// Context fixes known typos in free-text context. Anything else passes
// through untouched.
func (n *Normalizer) Context(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	fixed := text
	for _, typo := range contextTypos {
		fixed = typo.pattern.ReplaceAllString(fixed, typo.replace)
	}
	if fixed != text {
		n.logger.Debug("Corrected context", "from", text, "to", fixed)
	}
	return fixed
}
