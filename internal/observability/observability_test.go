package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/easyapply/internal/config"
	"github.com/jonathan/easyapply/internal/jobs"
	"github.com/jonathan/easyapply/internal/types"
)

func TestLogFileName(t *testing.T) {
	ts := time.Date(2024, 3, 5, 9, 7, 1, 0, time.UTC)
	assert.Equal(t, "03_05_24 09_07_01 applyJobs.log", LogFileName(ts))
}

func TestNewLogger_WritesConsoleAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer
	ts := time.Date(2024, 3, 5, 9, 7, 1, 0, time.UTC)

	l, err := NewLogger(LoggerOptions{Dir: dir, Console: &console, Now: func() time.Time { return ts }})
	require.NoError(t, err)
	l.Info("looking for jobs", "start", 25)
	l.Debug("hidden")
	require.NoError(t, l.Close())

	assert.Equal(t, filepath.Join(dir, "03_05_24 09_07_01 applyJobs.log"), l.Path)
	data, err := os.ReadFile(l.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "looking for jobs")
	assert.Contains(t, string(data), "start=25")
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, console.String(), "looking for jobs")
}

func TestNewLogger_VerboseWithoutFile(t *testing.T) {
	var console bytes.Buffer
	l, err := NewLogger(LoggerOptions{Console: &console, Verbose: true})
	require.NoError(t, err)
	l.Debug("wizard cycle")

	assert.Empty(t, l.Path)
	assert.Contains(t, console.String(), "wizard cycle")
	assert.NoError(t, l.Close())
}

func TestPrintRunConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.Username = "me@example.com"
	cfg.Positions = []string{"Go Developer", "SRE"}
	cfg.Locations = []string{"Berlin"}
	cfg.ExperienceLevel = []types.ExperienceLevel{2, 1}
	cfg.BlacklistTitles = []string{"a", "b", "c", "d", "e", "f", "g"}

	NewPrinter(&buf).PrintRunConfig(&cfg)
	out := buf.String()

	assert.Contains(t, out, "EASY APPLY RUN")
	assert.Contains(t, out, "me@example.com")
	assert.Contains(t, out, "Entry level, Associate")
	assert.Contains(t, out, "Go Developer")
	assert.Contains(t, out, "... and 2 more")
	assert.NotContains(t, out, "Blacklisted companies")
}

func TestPrintRunConfig_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunConfig(nil)
	assert.Empty(t, buf.String())
}

func TestPrintRunSummary(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintRunSummary(jobs.Stats{Combos: 2, Pages: 9, Attempted: 4, Applied: 3, Failed: 2}, 1, 90*time.Second)
	out := buf.String()

	assert.Contains(t, out, "RUN SUMMARY")
	assert.Contains(t, out, "Applied:   3")
	assert.Contains(t, out, "Pending questions: 1")
	assert.Contains(t, out, "1m30s")
}

func TestPrintAnswers(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintAnswers(nil)
	assert.Equal(t, "No stored answers.\n", buf.String())

	buf.Reset()
	p.PrintAnswers([]types.AnswerEntry{{Question: "what is your expected salary?", Answer: "90000"}})
	assert.Contains(t, buf.String(), "Q: what is your expected salary?")
	assert.Contains(t, buf.String(), "A: 90000")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	ts := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	NewPrinter(&buf).PrintHistory([]types.AppliedJobRecord{
		{Timestamp: ts, JobID: "999", JobTitle: "Engineer", Company: "Acme", Attempted: true, Result: true},
		{Timestamp: ts, JobID: "1000", Attempted: true},
		{Timestamp: ts, JobID: "1001"},
	})
	out := buf.String()

	assert.Contains(t, out, "✓ 2024-01-01 10:00:00 999")
	assert.Contains(t, out, "Engineer @ Acme")
	assert.Contains(t, out, "✗ 2024-01-01 10:00:00 1000")
	assert.Contains(t, out, "- 2024-01-01 10:00:00 1001")
	assert.Contains(t, out, "1 of 3 submitted")
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("x", 100))
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
	assert.Contains(t, buf.String(), "...")
}
