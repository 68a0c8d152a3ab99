// Package session runs the interactive evaluation loop: collect a hand,
// normalize and validate it, ask the model for an evaluation and follow up
// with clarification rounds until the model is satisfied.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/lox/pokerevaluator/internal/classify"
	"github.com/lox/pokerevaluator/internal/llm"
	"github.com/lox/pokerevaluator/internal/normalize"
	"github.com/lox/pokerevaluator/internal/prompt"
	"github.com/lox/pokerevaluator/internal/transcript"
)

const (
	cardsHint   = "Valid ranks: 2-10, J, Q, K, A; Valid suits: Spades, Hearts, Diamonds, Clubs"
	contextHint = "Example context: Early position, bet half the pot; Late position, called a raise"

	playerPrompt    = "Player's cards (e.g., Ace Spades, King Hearts or AS, KH): "
	communityPrompt = "Community cards (e.g., Queen Diamonds, 10 Clubs, 5 Spades or Qd, 10c, 5s): "
	contextPrompt   = "Context (e.g., Early position, bet half the pot): "
	continuePrompt  = "\nEvaluate another hand? (y/n): "
)

// Request is the hand being evaluated. Clarification rounds update it in
// place.
type Request struct {
	PlayerCards    string
	CommunityCards string
	Context        string
}

// Config wires a session to its collaborators
type Config struct {
	Console    *Console
	Generator  llm.Generator
	Template   *prompt.Template
	Normalizer *normalize.Normalizer
	Classifier *classify.Classifier
	Transcript *transcript.Transcript
	Logger     *log.Logger

	// MaxClarificationRounds bounds follow-up questions per hand; 0 means no limit
	MaxClarificationRounds int
}

// Session drives the evaluate-another-hand loop
type Session struct {
	console    *Console
	generator  llm.Generator
	template   *prompt.Template
	normalizer *normalize.Normalizer
	classifier *classify.Classifier
	transcript *transcript.Transcript
	logger     *log.Logger
	maxRounds  int
}

// New creates a session
func New(cfg Config) *Session {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = classify.New()
	}
	return &Session{
		console:    cfg.Console,
		generator:  cfg.Generator,
		template:   cfg.Template,
		normalizer: cfg.Normalizer,
		classifier: classifier,
		transcript: cfg.Transcript,
		logger:     cfg.Logger.WithPrefix("session"),
		maxRounds:  cfg.MaxClarificationRounds,
	}
}

// Run evaluates hands until the user declines another, input runs out or
// ctx is cancelled. Only console read failures are returned.
func (s *Session) Run(ctx context.Context) error {
	s.record(s.transcript.Start())
	s.logger.Info("Session started", "id", s.transcript.SessionID())

	err := s.loop(ctx)
	if isEndOfInput(err) {
		err = nil
	}

	s.console.Println("Exiting Poker Evaluator.")
	s.logger.Info("Exiting Poker Evaluator")
	s.record(s.transcript.End())
	return err
}

func (s *Session) loop(ctx context.Context) error {
	for {
		req, err := s.readHand(ctx)
		if err != nil {
			var verr *normalize.ValidationError
			if errors.As(err, &verr) {
				s.reject(req, verr)
				continue
			}
			return err
		}

		if err := s.evaluate(ctx, req); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		again, err := s.askContinue(ctx)
		if err != nil || !again {
			return err
		}
	}
}

// readHand prompts for the three hand fields and normalizes them. A
// validation failure still returns the normalized request for the record.
func (s *Session) readHand(ctx context.Context) (*Request, error) {
	s.console.Println(HeaderStyle.Render("\nEnter poker hand details (or press Enter to skip fields):"))

	player, err := s.console.Ask(ctx, playerPrompt)
	if err != nil {
		return nil, err
	}
	community, err := s.console.Ask(ctx, communityPrompt)
	if err != nil {
		return nil, err
	}
	situation, err := s.console.Ask(ctx, contextPrompt)
	if err != nil {
		return nil, err
	}

	req := &Request{
		PlayerCards:    s.normalizer.Cards(player).Text,
		CommunityCards: s.normalizer.Cards(community).Text,
		Context:        s.normalizer.Context(situation),
	}
	if err := normalize.ValidatePlayerCards(req.PlayerCards); err != nil {
		return req, err
	}
	return req, nil
}

func (s *Session) reject(req *Request, err *normalize.ValidationError) {
	s.console.Println(ErrorStyle.Render("Error: " + err.Error()))
	s.logger.Warn("Validation error", "field", err.Field, "reason", err.Reason)
	s.record(s.transcript.Request(req.PlayerCards, req.CommunityCards, req.Context))
	s.record(s.transcript.Error(err))
}

// evaluate submits req until the model stops asking for clarification. Model
// and template failures abandon the hand and are not returned; only console
// errors are.
func (s *Session) evaluate(ctx context.Context, req *Request) error {
	rounds := 0
	for {
		rendered, err := s.template.Render(req.PlayerCards, req.CommunityCards, req.Context)
		if err != nil {
			s.fail("Error formatting prompt", err)
			return nil
		}

		text, err := s.generator.Generate(ctx, rendered)
		if err != nil {
			s.fail("Error querying model", err)
			return nil
		}

		s.console.Println("\nEvaluation:")
		s.console.Println(EvaluationStyle.Render(text))
		s.record(s.transcript.Request(req.PlayerCards, req.CommunityCards, req.Context))
		s.record(s.transcript.Response(text))
		s.logger.Info("Evaluation", "text", text)

		verdict := s.classifier.Classify(text)
		if !verdict.NeedsClarification() {
			return nil
		}

		rounds++
		if s.maxRounds > 0 && rounds > s.maxRounds {
			msg := fmt.Sprintf("Giving up after %d clarification rounds.", s.maxRounds)
			s.console.Println(WarningStyle.Render(msg))
			s.logger.Warn("Clarification limit reached", "rounds", s.maxRounds)
			s.record(s.transcript.Note(msg))
			return nil
		}

		s.console.Println(WarningStyle.Render("\nThe model needs more information to evaluate the hand."))
		s.logger.Debug("Clarification requested", "verdict", verdict, "round", rounds)
		if err := s.clarify(ctx, verdict, req); err != nil {
			return err
		}
	}
}

// clarify asks for the field named by verdict and updates req. An empty or
// rejected answer leaves req unchanged so it is resubmitted as-is.
func (s *Session) clarify(ctx context.Context, verdict classify.Verdict, req *Request) error {
	var (
		field string
		value string
	)

	switch verdict {
	case classify.NeedsPlayerCards:
		s.console.Println(InfoStyle.Render(cardsHint))
		input, err := s.console.Ask(ctx, "Provide player's cards (e.g., Ace Spades, King Hearts or AS, KH) or press Enter to retry: ")
		if err != nil {
			return err
		}
		if input != "" {
			s.record(s.transcript.Clarification(input))
			cards := s.normalizer.Cards(input).Text
			if err := normalize.ValidatePlayerCards(cards); err != nil {
				s.console.Println(ErrorStyle.Render("Error: " + err.Error()))
				s.logger.Warn("Validation error", "field", "player_cards", "reason", err)
				s.record(s.transcript.Error(err))
			} else {
				req.PlayerCards = cards
				field, value = "player's cards", cards
			}
		}

	case classify.NeedsCommunityCards:
		s.console.Println(InfoStyle.Render(cardsHint))
		input, err := s.console.Ask(ctx, "Provide community cards (e.g., Queen Diamonds, 10 Clubs, 5 Spades or Qd, 10c, 5s) or press Enter to retry: ")
		if err != nil {
			return err
		}
		if input != "" {
			s.record(s.transcript.Clarification(input))
			req.CommunityCards = s.normalizer.Cards(input).Text
			field, value = "community cards", req.CommunityCards
		}

	case classify.NeedsContext:
		s.console.Println(InfoStyle.Render(contextHint))
		input, err := s.console.Ask(ctx, "Provide context (e.g., Early position, bet half the pot) or press Enter to retry: ")
		if err != nil {
			return err
		}
		if input != "" {
			s.record(s.transcript.Clarification(input))
			req.Context = s.normalizer.Context(input)
			field, value = "context", req.Context
		}

	default:
		input, err := s.console.Ask(ctx, "Provide additional details or press Enter to retry: ")
		if err != nil {
			return err
		}
		if input != "" {
			s.record(s.transcript.Clarification(input))
			if req.Context != "" {
				input = req.Context + ", " + input
			}
			req.Context = s.normalizer.Context(input)
			field, value = "context", req.Context
		}
	}

	if field != "" {
		s.console.Println(UpdatedStyle.Render(fmt.Sprintf("Updated %s: %s", field, value)))
		return nil
	}

	s.console.Println("Retrying with original inputs.")
	s.record(s.transcript.Retry())
	return nil
}

func (s *Session) askContinue(ctx context.Context) (bool, error) {
	choice, err := s.console.Ask(ctx, continuePrompt)
	if err != nil {
		return false, err
	}
	choice = strings.ToLower(choice)
	s.record(s.transcript.Continue(choice))
	return IsAffirmative(choice), nil
}

// fail reports a hand-level error on the console and in both logs
func (s *Session) fail(msg string, err error) {
	s.console.Println(ErrorStyle.Render(fmt.Sprintf("%s: %v", msg, err)))
	s.logger.Error(msg, "error", err)
	s.record(s.transcript.Error(err))
}

// record logs transcript write failures
func (s *Session) record(err error) {
	if err != nil {
		s.logger.Error("Failed to write transcript", "path", s.transcript.Path(), "error", err)
	}
}

// IsAffirmative reports whether an answer to a yes/no prompt means yes
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled)
}
