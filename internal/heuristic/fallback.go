package heuristic

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/jonathan/easyapply/internal/types"
)

// PromptFallback asks an operator for each unknown question and blocks until a line is read.
// A single reader goroutine owns the input, so a prompt abandoned by cancellation never races
// with the next one.
type PromptFallback struct {
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan lineResult
}

// NewPromptFallback reads answers from in and writes prompts to out.
func NewPromptFallback(in io.Reader, out io.Writer) *PromptFallback {
	return &PromptFallback{in: bufio.NewReader(in), out: out, lines: make(chan lineResult)}
}

type lineResult struct {
	line string
	err  error
}

func (p *PromptFallback) readLines() {
	for {
		line, err := p.in.ReadString('\n')
		p.lines <- lineResult{line: line, err: err}
		if err != nil {
			close(p.lines)
			return
		}
	}
}

// Answer prints the question and waits for one line of input or context cancellation.
func (p *PromptFallback) Answer(ctx context.Context, question string) (string, error) {
	if _, err := fmt.Fprintf(p.out, "Please provide answer for: %s\n", question); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	p.once.Do(func() { go p.readLines() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			return "", fmt.Errorf("failed to read answer: %w", io.EOF)
		}
		if res.err != nil && res.line == "" {
			return "", fmt.Errorf("failed to read answer: %w", res.err)
		}
		return strings.TrimSpace(res.line), nil
	}
}

// StaticFallback answers every unknown question with the same text.
type StaticFallback string

// Answer returns the fixed answer.
func (s StaticFallback) Answer(context.Context, string) (string, error) {
	return string(s), nil
}

// DeferredFallback records unknown questions for later review and answers with a default.
// The pending list is kept in first-seen order without duplicates.
type DeferredFallback struct {
	mu            sync.Mutex
	defaultAnswer string
	pending       []string
	seen          map[string]bool
}

// NewDeferredFallback returns a fallback answering with defaultAnswer.
func NewDeferredFallback(defaultAnswer string) *DeferredFallback {
	return &DeferredFallback{defaultAnswer: defaultAnswer, seen: make(map[string]bool)}
}

// Answer queues the question and returns the default answer.
func (d *DeferredFallback) Answer(_ context.Context, question string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.seen[question] {
		d.seen[question] = true
		d.pending = append(d.pending, question)
	}
	return d.defaultAnswer, nil
}

// IsPending reports whether question was answered with the default and awaits review.
func (d *DeferredFallback) IsPending(question string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seen[question]
}

// Pending returns the queued questions.
func (d *DeferredFallback) Pending() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.pending...)
}

// WritePending appends queued questions to a Question,Answer CSV with blank answers,
// so the file can be completed by hand and merged into the answer store. Questions
// already listed in the file are not repeated. Returns the number of rows added.
func (d *DeferredFallback) WritePending(path string) (int, error) {
	listed, err := listedQuestions(path)
	if err != nil {
		return 0, err
	}
	var fresh []string
	for _, q := range d.Pending() {
		if !listed[q] {
			fresh = append(fresh, q)
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	_, statErr := os.Stat(path)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to open pending questions file %s: %w", path, err)
	}

	w := csv.NewWriter(file)
	if statErr != nil {
		if err := w.Write([]string{"Question", "Answer"}); err != nil {
			_ = file.Close()
			return 0, fmt.Errorf("failed to write pending questions header: %w", err)
		}
	}
	for _, q := range fresh {
		if err := w.Write([]string{q, ""}); err != nil {
			_ = file.Close()
			return 0, fmt.Errorf("failed to write pending question %q: %w", q, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return 0, fmt.Errorf("failed to write pending questions: %w", err)
	}
	return len(fresh), file.Close()
}

// listedQuestions returns the questions already in a pending file. A missing file lists
// nothing.
func listedQuestions(path string) (map[string]bool, error) {
	listed := make(map[string]bool)
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return listed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open pending questions file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read pending questions file %s: %w", path, err)
	}
	for _, row := range rows {
		if len(row) > 0 {
			listed[types.NormalizeQuestion(row[0])] = true
		}
	}
	return listed, nil
}

// Chain tries each fallback in order and returns the first non-empty answer.
// When every fallback fails, the last error is returned.
type Chain []Fallback

// Answer implements Fallback.
func (c Chain) Answer(ctx context.Context, question string) (string, error) {
	var lastErr error
	for _, f := range c {
		answer, err := f.Answer(ctx, question)
		if err != nil {
			lastErr = err
			continue
		}
		if strings.TrimSpace(answer) != "" {
			return answer, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", nil
}
