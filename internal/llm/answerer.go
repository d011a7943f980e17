package llm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/jonathan/easyapply/internal/heuristic"
	"github.com/jonathan/easyapply/internal/prompts"
)

// unknownReply is what the model answers when the profile is not enough.
const unknownReply = "UNKNOWN"

// Answerer suggests answers with a language model. It satisfies heuristic.Fallback.
type Answerer struct {
	client  Client
	config  *Config
	profile string
	logger  *slog.Logger
}

// NewAnswerer creates an Answerer. profile holds the candidate facts shown to the
// model; empty values are left out.
func NewAnswerer(client Client, config *Config, profile map[string]string, logger *slog.Logger) *Answerer {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Answerer{client: client, config: config, profile: FormatProfile(profile), logger: logger}
}

// Answer asks the model for an answer to question.
func (a *Answerer) Answer(ctx context.Context, question string) (string, error) {
	prompt, err := prompts.Render(prompts.Answering, prompts.KeyAnswerQuestion, map[string]string{
		"Profile":  a.profile,
		"Question": question,
	})
	if err != nil {
		return "", err
	}

	text, err := a.client.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to suggest answer: %w", err)
	}

	answer := CleanAnswer(text)
	switch {
	case answer == "" || strings.EqualFold(answer, unknownReply):
		a.logger.Info("model could not answer question", "question", question)
		return "", heuristic.ErrNoAnswer
	case a.config.MaxAnswerLength > 0 && len(answer) > a.config.MaxAnswerLength:
		a.logger.Warn("model answer too long, ignoring", "question", question, "length", len(answer))
		return "", heuristic.ErrNoAnswer
	}
	a.logger.Info("model suggested answer", "question", question, "answer", answer)
	return answer, nil
}

// CleanAnswer keeps the first non-empty line of a reply and strips code fences and
// surrounding quotes.
func CleanAnswer(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		line = strings.Trim(line, "\"'`")
		return strings.TrimSpace(line)
	}
	return ""
}

// FormatProfile renders profile facts as sorted "Key: value" lines.
func FormatProfile(profile map[string]string) string {
	keys := make([]string, 0, len(profile))
	for k, v := range profile {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + ": " + profile[k]
	}
	return strings.Join(lines, "\n")
}
