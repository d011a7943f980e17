// Package answers provides the persistent question-answer cache used to fill apply forms.
package answers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jonathan/easyapply/internal/types"
)

// Backend persists answer entries.
type Backend interface {
	// LoadAll returns every stored entry in insertion order
	LoadAll(ctx context.Context) ([]types.AnswerEntry, error)
	// Ensure creates empty storage when none exists; existing content is left intact
	Ensure(ctx context.Context) error
	// Append durably adds one entry
	Append(ctx context.Context, entry types.AnswerEntry) error
}

// ErrCorrupt marks stored content that exists but cannot be parsed.
var ErrCorrupt = errors.New("answer storage is corrupt")

// Recoverer is implemented by backends that can replace corrupt storage with empty storage.
type Recoverer interface {
	// Recover sets the corrupt content aside and returns where it was kept
	Recover(ctx context.Context) (string, error)
}

// Store is the in-memory answer mapping backed by durable storage.
// Keys are normalized questions; the first answer committed for a key wins.
type Store struct {
	backend Backend
	logger  *slog.Logger
	order   []string
	answers map[string]string
}

// NewStore creates an empty store over the given backend.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		backend: backend,
		logger:  logger,
		answers: make(map[string]string),
	}
}

// Load reads every persisted entry into memory. A missing or unreadable backend is not an
// error: the store starts empty and empty storage is created if none exists. Corrupt
// content is moved aside when the backend is a Recoverer.
func (s *Store) Load(ctx context.Context) error {
	s.order = nil
	s.answers = make(map[string]string)

	entries, err := s.backend.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("answer store could not be loaded, starting empty", "error", err)
		if rec, ok := s.backend.(Recoverer); ok && errors.Is(err, ErrCorrupt) {
			// new answers would be appended below the unreadable rows and lost on reload
			backup, recErr := rec.Recover(ctx)
			if recErr != nil {
				return fmt.Errorf("failed to reset corrupt answer store: %w", recErr)
			}
			s.logger.Warn("corrupt answer file moved aside", "backup", backup)
			return nil
		}
		if ensureErr := s.backend.Ensure(ctx); ensureErr != nil {
			return fmt.Errorf("failed to initialize answer store: %w", ensureErr)
		}
		return nil
	}

	for _, e := range entries {
		s.put(types.NormalizeQuestion(e.Question), e.Answer)
	}
	s.logger.Info("loaded answers", "count", len(s.order))
	return nil
}

// Lookup returns the answer of the first stored question that is a substring of the
// normalized question.
func (s *Store) Lookup(question string) (string, bool) {
	q := types.NormalizeQuestion(question)
	if q == "" {
		return "", false
	}
	for _, key := range s.order {
		if key != "" && strings.Contains(q, key) {
			return s.answers[key], true
		}
	}
	return "", false
}

// Has reports whether the exact normalized question is stored.
func (s *Store) Has(question string) bool {
	_, ok := s.answers[types.NormalizeQuestion(question)]
	return ok
}

// Commit stores a new pair and persists it. Existing keys are never overwritten, in which
// case Commit reports false and does not touch the backend. A persistence failure keeps
// the in-memory entry and is returned.
func (s *Store) Commit(ctx context.Context, question, answer string) (bool, error) {
	key := types.NormalizeQuestion(question)
	if key == "" {
		return false, nil
	}
	if _, exists := s.answers[key]; exists {
		return false, nil
	}

	s.put(key, answer)
	if err := s.backend.Append(ctx, types.AnswerEntry{Question: key, Answer: answer}); err != nil {
		return true, fmt.Errorf("failed to persist answer for %q: %w", key, err)
	}
	s.logger.Debug("saved answer", "question", key, "answer", answer)
	return true, nil
}

// Entries returns a snapshot of the stored pairs in insertion order.
func (s *Store) Entries() []types.AnswerEntry {
	out := make([]types.AnswerEntry, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, types.AnswerEntry{Question: key, Answer: s.answers[key]})
	}
	return out
}

// Len returns the number of stored pairs.
func (s *Store) Len() int {
	return len(s.order)
}

func (s *Store) put(key, answer string) {
	if _, exists := s.answers[key]; exists {
		return
	}
	s.order = append(s.order, key)
	s.answers[key] = answer
}
