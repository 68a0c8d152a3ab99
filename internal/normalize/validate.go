package normalize

import "strings"

// ValidationError describes user input that cannot be submitted
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ValidatePlayerCards checks that text names exactly two comma separated
// cards. It only inspects the player-card field.
func ValidatePlayerCards(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "player_cards", Reason: "player's cards cannot be empty"}
	}

	count := 0
	for _, part := range strings.Split(text, ",") {
		if strings.TrimSpace(part) != "" {
			count++
		}
	}
	if count != 2 {
		return &ValidationError{Field: "player_cards", Reason: "need exactly two player cards"}
	}
	return nil
}
