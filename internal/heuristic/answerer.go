// Package heuristic derives answers for unseen application questions from an ordered
// table of question patterns.
package heuristic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/jonathan/easyapply/internal/types"
)

// ErrNoAnswer is returned when no rule matches and the fallback produced nothing.
var ErrNoAnswer = errors.New("no answer available")

// Fallback supplies answers for questions no rule matches.
type Fallback interface {
	Answer(ctx context.Context, question string) (string, error)
}

// FallbackFunc adapts a function to the Fallback interface.
type FallbackFunc func(ctx context.Context, question string) (string, error)

// Answer calls f.
func (f FallbackFunc) Answer(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

type compiledRule struct {
	pattern string
	re      *regexp.Regexp
	answer  string
}

// Answerer tests rules in order; the first pattern found in the question wins.
type Answerer struct {
	rules    []compiledRule
	fallback Fallback
	logger   *slog.Logger
}

// Match describes which rule answered a question.
type Match struct {
	Index   int
	Pattern string
	Answer  string
}

// New compiles the rule table. Answer templates are rendered once against vars.
// A nil fallback makes unmatched questions fail with ErrNoAnswer.
func New(rules []types.AnswerRule, vars map[string]string, fallback Fallback, logger *slog.Logger) (*Answerer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile answer rule %d (%q): %w", i, r.Pattern, err)
		}
		compiled = append(compiled, compiledRule{
			pattern: r.Pattern,
			re:      re,
			answer:  Render(r.Answer, vars),
		})
	}

	return &Answerer{rules: compiled, fallback: fallback, logger: logger}, nil
}

// Match returns the first rule whose pattern occurs in the normalized question.
func (a *Answerer) Match(question string) (Match, bool) {
	q := types.NormalizeQuestion(question)
	for i, r := range a.rules {
		if r.re.MatchString(q) {
			return Match{Index: i, Pattern: r.pattern, Answer: r.answer}, true
		}
	}
	return Match{}, false
}

// Resolve answers a question from the rule table, falling back when nothing matches.
func (a *Answerer) Resolve(ctx context.Context, question string) (string, error) {
	q := types.NormalizeQuestion(question)
	if m, ok := a.Match(q); ok {
		if m.Answer != "" {
			a.logger.Info("found pattern match", "pattern", m.Pattern, "answer", m.Answer)
			return m.Answer, nil
		}
		// The template referenced a profile value that is not configured
		a.logger.Warn("pattern matched but its answer is empty", "pattern", m.Pattern)
	}

	a.logger.Info("no automatic answer", "question", q)
	if a.fallback == nil {
		return "", ErrNoAnswer
	}

	answer, err := a.fallback.Answer(ctx, q)
	if err != nil {
		return "", fmt.Errorf("fallback failed for %q: %w", q, err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", ErrNoAnswer
	}
	return answer, nil
}

// Len returns the number of rules.
func (a *Answerer) Len() int {
	return len(a.rules)
}

// Render replaces {{.Key}} placeholders in template with values from vars.
func Render(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result
}
