package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/easyapply/internal/config"
	"github.com/jonathan/easyapply/internal/jobs"
	"github.com/jonathan/easyapply/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted console output
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, boxWidth-4)
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func list(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintRunConfig outputs what a run is about to search for.
func (p *Printer) PrintRunConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Account:   %s\n", cfg.Username))
	sb.WriteString(fmt.Sprintf("Levels:    %s\n", types.DescribeLevels(cfg.ExperienceLevel)))
	sb.WriteString(fmt.Sprintf("Storage:   %s\n", cfg.Storage.Backend))
	sb.WriteString(fmt.Sprintf("Fallback:  %s\n", cfg.Answers.Fallback))
	sb.WriteString(fmt.Sprintf("Budget:    %s per search\n", cfg.Search.MaxSearchTime))
	sb.WriteString("\n")
	list(&sb, "Positions", cfg.Positions)
	list(&sb, "Locations", cfg.Locations)
	list(&sb, "Blacklisted companies", cfg.Blacklist)
	list(&sb, "Blacklisted titles", cfg.BlacklistTitles)

	p.printBox("EASY APPLY RUN", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the totals of a finished run.
func (p *Printer) PrintRunSummary(stats jobs.Stats, pending int, elapsed time.Duration) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Searches:  %d\n", stats.Combos))
	sb.WriteString(fmt.Sprintf("Pages:     %d\n", stats.Pages))
	sb.WriteString(fmt.Sprintf("Attempted: %d\n", stats.Attempted))
	sb.WriteString(fmt.Sprintf("Applied:   %d\n", stats.Applied))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", stats.Failed))
	if pending > 0 {
		sb.WriteString(fmt.Sprintf("Pending questions: %d\n", pending))
	}
	sb.WriteString(fmt.Sprintf("Elapsed:   %s", elapsed.Round(time.Second)))

	p.printBox("RUN SUMMARY", sb.String())
}

// PrintAnswers outputs stored question-answer pairs.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintAnswers(entries []types.AnswerEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "No stored answers.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d stored answers:\n\n", len(entries)))
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("Q: %s\n", e.Question))
		sb.WriteString(fmt.Sprintf("A: %s", e.Answer))
		if i < len(entries)-1 {
			sb.WriteString("\n\n")
		}
	}
	p.printBox("STORED ANSWERS", sb.String())
}

// PrintHistory outputs ledger rows, newest last.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintHistory(recs []types.AppliedJobRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(p.out, "No recent applications.")
		return
	}

	applied := 0
	var sb strings.Builder
	for _, r := range recs {
		mark := "✗"
		if r.Result {
			mark = "✓"
			applied++
		} else if !r.Attempted {
			mark = "-"
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n", mark, r.Timestamp.Format(types.LedgerTimeLayout), r.JobID))
		if r.JobTitle != "" || r.Company != "" {
			sb.WriteString(fmt.Sprintf("    %s @ %s\n", r.JobTitle, r.Company))
		}
	}
	sb.WriteString(fmt.Sprintf("\n%d of %d submitted", applied, len(recs)))

	p.printBox("RECENT APPLICATIONS", sb.String())
}
