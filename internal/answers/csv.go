package answers

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/easyapply/internal/types"
)

var header = []string{"Question", "Answer"}

// corruptSuffixLayout is appended to the name of an unreadable answer file moved aside.
const corruptSuffixLayout = "20060102T150405"

// CSVFile stores answers in a CSV file with a Question,Answer header.
type CSVFile struct {
	path string
	now  func() time.Time
}

// NewCSVFile returns a backend for the given file path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path, now: time.Now}
}

// Path returns the backing file path.
func (f *CSVFile) Path() string {
	return f.path
}

// LoadAll reads every row after the header.
func (f *CSVFile) LoadAll(_ context.Context) ([]types.AnswerEntry, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open answer file %s: %w", f.path, err)
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse answer file %s: %v", ErrCorrupt, f.path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	start := 0
	if strings.EqualFold(strings.Join(rows[0], ","), strings.Join(header, ",")) {
		start = 1
	}

	entries := make([]types.AnswerEntry, 0, len(rows)-start)
	for i, row := range rows[start:] {
		if len(row) < 2 {
			return nil, fmt.Errorf("%w: answer file %s: row %d has %d columns, want 2", ErrCorrupt, f.path, i+start+1, len(row))
		}
		entries = append(entries, types.AnswerEntry{Question: row[0], Answer: row[1]})
	}
	return entries, nil
}

// Ensure creates the file with just the header when it does not exist.
func (f *CSVFile) Ensure(_ context.Context) error {
	if _, err := os.Stat(f.path); err == nil {
		return nil
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create answer file directory: %w", err)
		}
	}
	file, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("failed to create answer file %s: %w", f.path, err)
	}
	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write answer file header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write answer file header: %w", err)
	}
	return file.Close()
}

// Recover moves an unreadable file aside and starts a fresh one holding only the header.
// The old content is kept under the returned name.
func (f *CSVFile) Recover(ctx context.Context) (string, error) {
	backup := f.path + ".corrupt-" + f.now().Format(corruptSuffixLayout)
	if err := os.Rename(f.path, backup); err != nil {
		return "", fmt.Errorf("failed to move aside answer file %s: %w", f.path, err)
	}
	if err := f.Ensure(ctx); err != nil {
		return backup, err
	}
	return backup, nil
}

// Append adds one row, writing the header first if the file does not exist yet.
func (f *CSVFile) Append(ctx context.Context, entry types.AnswerEntry) error {
	if err := f.Ensure(ctx); err != nil {
		return err
	}

	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open answer file %s: %w", f.path, err)
	}
	w := csv.NewWriter(file)
	if err := w.Write([]string{entry.Question, entry.Answer}); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to append answer: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to append answer: %w", err)
	}
	return file.Close()
}
