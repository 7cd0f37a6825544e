// Package notes asks an LLM for usage notes on vocabulary entries and for
// reviews of the learner's recurring mistakes.
package notes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/abhisek/cihui/internal/llm"
	"github.com/abhisek/cihui/internal/store"
	"github.com/abhisek/cihui/internal/vocab"
)

// ErrUnavailable is returned when no LLM provider is configured.
var ErrUnavailable = errors.New("AI notes unavailable")

// ErrNothingToReview is returned by Review when there are no missed words.
var ErrNothingToReview = errors.New("no mistakes to review yet")

// Service generates notes and caches them per entry.
type Service struct {
	provider llm.Provider
	cfg      Config

	mu    sync.Mutex
	cache map[string]*Note
}

// NewService creates a note service. A nil provider yields a service whose
// every call returns ErrUnavailable.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg, cache: make(map[string]*Note)}
}

// Available reports whether a provider is configured.
func (s *Service) Available() bool {
	return s != nil && s.provider != nil
}

type noteOutput struct {
	Meaning  string    `json:"meaning"`
	Usage    string    `json:"usage"`
	Examples []Example `json:"examples"`
	Mnemonic string    `json:"mnemonic"`
}

// Explain returns the note for e, generating it on first use.
func (s *Service) Explain(ctx context.Context, e vocab.Entry) (*Note, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}

	key := e.Key()
	s.mu.Lock()
	if n, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return n, nil
	}
	s.mu.Unlock()

	ctx = llm.WithPurpose(ctx, "notes")
	req := llm.Request{
		System:      noteSystemPrompt,
		Messages:    llm.UserPrompt(buildNoteUserMessage(e)),
		Schema:      NoteSchema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("note generation: %w", err)
	}

	var out noteOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse note response: %w", err)
	}

	n := &Note{
		Entry:    e,
		Meaning:  out.Meaning,
		Usage:    out.Usage,
		Examples: out.Examples,
		Mnemonic: out.Mnemonic,
	}

	s.mu.Lock()
	s.cache[key] = n
	s.mu.Unlock()
	return n, nil
}

type reviewOutput struct {
	Summary    string   `json:"summary"`
	Confusions []string `json:"confusions"`
	Tips       []string `json:"tips"`
}

// Review summarizes the learner's most-missed words. Reviews are not cached.
func (s *Service) Review(ctx context.Context, missed []store.MissedWord, stats *store.AnswerStats) (*Review, error) {
	if !s.Available() {
		return nil, ErrUnavailable
	}
	if len(missed) == 0 {
		return nil, ErrNothingToReview
	}

	ctx = llm.WithPurpose(ctx, "review")
	req := llm.Request{
		System:      reviewSystemPrompt,
		Messages:    llm.UserPrompt(buildReviewUserMessage(missed, stats)),
		Schema:      ReviewSchema,
		MaxTokens:   s.cfg.ReviewMaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("review generation: %w", err)
	}

	var out reviewOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse review response: %w", err)
	}

	return &Review{
		Summary:     out.Summary,
		Confusions:  out.Confusions,
		Tips:        out.Tips,
		GeneratedAt: time.Now(),
	}, nil
}
