// Package deck models playing cards as enumerated rank and suit values.
package deck

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in canonical order
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the canonical name of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "Spades"
	case Hearts:
		return "Hearts"
	case Diamonds:
		return "Diamonds"
	case Clubs:
		return "Clubs"
	default:
		return "?"
	}
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the canonical name of a rank. Face cards and aces are
// spelled out, pip cards use their number.
func (r Rank) String() string {
	switch r {
	case Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten:
		return fmt.Sprintf("%d", int(r))
	case Jack:
		return "Jack"
	case Queen:
		return "Queen"
	case King:
		return "King"
	case Ace:
		return "Ace"
	default:
		return "?"
	}
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the canonical token for a card (e.g., "Ace Spades")
func (c Card) String() string {
	return c.Rank.String() + " " + c.Suit.String()
}

var rankWords = map[string]Rank{
	"2": Two, "two": Two,
	"3": Three, "three": Three,
	"4": Four, "four": Four,
	"5": Five, "five": Five,
	"6": Six, "six": Six,
	"7": Seven, "seven": Seven,
	"8": Eight, "eight": Eight,
	"9": Nine, "nine": Nine,
	"10": Ten, "t": Ten, "ten": Ten,
	"j": Jack, "jack": Jack,
	"q": Queen, "queen": Queen,
	"k": King, "king": King,
	"a": Ace, "ace": Ace,
}

var suitWords = map[string]Suit{
	"s": Spades, "spade": Spades, "spades": Spades, "♠": Spades,
	"h": Hearts, "heart": Hearts, "hearts": Hearts, "♥": Hearts,
	"d": Diamonds, "diamond": Diamonds, "diamonds": Diamonds, "♦": Diamonds,
	"c": Clubs, "club": Clubs, "clubs": Clubs, "♣": Clubs,
}

// ParseRank parses a rank word or code, case-insensitively
func ParseRank(word string) (Rank, bool) {
	r, ok := rankWords[strings.ToLower(strings.TrimSpace(word))]
	return r, ok
}

// ParseSuit parses a suit word, letter or symbol, case-insensitively
func ParseSuit(word string) (Suit, bool) {
	s, ok := suitWords[strings.ToLower(strings.TrimSpace(word))]
	return s, ok
}

// ParseCard parses a single shorthand card such as "As", "10h", "Td" or "K♣"
func ParseCard(token string) (Card, error) {
	token = strings.TrimSpace(token)
	if utf8.RuneCountInString(token) < 2 {
		return Card{}, fmt.Errorf("invalid card %q: too short", token)
	}

	_, size := utf8.DecodeLastRuneInString(token)
	rankPart, suitPart := token[:len(token)-size], token[len(token)-size:]

	rank, ok := ParseRank(rankPart)
	if !ok || len(rankPart) > 2 {
		return Card{}, fmt.Errorf("invalid rank in card %q", token)
	}
	suit, ok := ParseSuit(suitPart)
	if !ok {
		return Card{}, fmt.Errorf("invalid suit in card %q", token)
	}

	return NewCard(suit, rank), nil
}

// FormatCards joins cards using their canonical tokens, comma separated
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
