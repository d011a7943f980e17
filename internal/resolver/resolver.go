// Package resolver answers on-page questions from the answer cache or the heuristic table
// and fills the corresponding form fields.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jonathan/easyapply/internal/form"
	"github.com/jonathan/easyapply/internal/types"
)

// AnswerCache is the lookup/commit surface of the answer store.
type AnswerCache interface {
	Lookup(question string) (string, bool)
	Commit(ctx context.Context, question, answer string) (bool, error)
}

// Heuristic derives answers for questions the cache does not know.
type Heuristic interface {
	Resolve(ctx context.Context, question string) (string, error)
}

// PendingQueue reports questions whose answer is a placeholder awaiting operator review.
type PendingQueue interface {
	IsPending(question string) bool
}

// Source says where an answer came from.
type Source string

const (
	// SourceCache is an answer found in the answer store
	SourceCache Source = "cache"
	// SourceHeuristic is an answer produced by the rule table or its fallback
	SourceHeuristic Source = "heuristic"
	// SourceDeferred is a placeholder for a question queued for review; it is never stored
	SourceDeferred Source = "deferred"
)

// Answer is a resolved question.
type Answer struct {
	Question string
	Text     string
	Source   Source
}

// Resolver resolves questions and fills fields.
type Resolver struct {
	cache     AnswerCache
	heuristic Heuristic
	pending   PendingQueue
	logger    *slog.Logger
}

// New creates a Resolver.
func New(cache AnswerCache, heuristic Heuristic, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{cache: cache, heuristic: heuristic, logger: logger}
}

// WithPending makes answers for questions in q fill fields without being committed, so an
// answer supplied later for the question can still be stored.
func (r *Resolver) WithPending(q PendingQueue) *Resolver {
	r.pending = q
	return r
}

// Resolve normalizes the label and returns its answer. ok is false when the label is
// empty. New pairs are committed to the cache unless the answer is a pending placeholder;
// a commit persistence failure is logged and does not fail the resolution.
func (r *Resolver) Resolve(ctx context.Context, label string) (Answer, bool, error) {
	q := types.NormalizeQuestion(label)
	if q == "" {
		return Answer{}, false, nil
	}

	ans := Answer{Question: q}
	if text, found := r.cache.Lookup(q); found {
		ans.Text, ans.Source = text, SourceCache
		r.logger.Info("found stored answer", "question", q, "answer", text)
	} else {
		text, err := r.heuristic.Resolve(ctx, q)
		if err != nil {
			return Answer{Question: q}, true, fmt.Errorf("failed to answer %q: %w", q, err)
		}
		ans.Text, ans.Source = text, SourceHeuristic
		if r.pending != nil && r.pending.IsPending(q) {
			ans.Source = SourceDeferred
			r.logger.Info("using placeholder answer", "question", q, "answer", text)
			return ans, true, nil
		}
		r.logger.Info("generated new answer", "question", q, "answer", text)
	}

	if _, err := r.cache.Commit(ctx, q, ans.Text); err != nil {
		r.logger.Error("failed to save answer", "question", q, "error", err)
	}
	return ans, true, nil
}

// ResolveAndFill resolves the field's label and fills the field with the answer.
// Returns the answer used; ok is false when the field has no label.
func (r *Resolver) ResolveAndFill(ctx context.Context, field form.Field) (Answer, bool, error) {
	label, err := field.Label(ctx)
	if err != nil {
		return Answer{}, false, fmt.Errorf("failed to read field label: %w", err)
	}

	ans, ok, err := r.Resolve(ctx, label)
	if err != nil || !ok {
		return ans, ok, err
	}

	res, err := form.Fill(ctx, field, ans.Text)
	if err != nil {
		return ans, true, err
	}
	r.logger.Info("filled field", "kind", res.Kind.String(), "question", ans.Question, "option", res.Option)
	return ans, true, nil
}

// ProcessFields resolves and fills every field, isolating failures per field.
// A context cancellation stops processing. Returns the number of fields filled.
func (r *Resolver) ProcessFields(ctx context.Context, fields []form.Field) (int, error) {
	filled := 0
	for i, field := range fields {
		if err := ctx.Err(); err != nil {
			return filled, err
		}
		ans, ok, err := r.ResolveAndFill(ctx, field)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return filled, err
			}
			r.logger.Error("error processing field", "index", i, "question", ans.Question, "error", err)
			continue
		}
		if ok {
			filled++
		}
	}
	return filled, nil
}
