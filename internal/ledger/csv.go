package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/easyapply/internal/types"
)

// CSVFile is a headerless CSV ledger:
// timestamp,jobID,jobTitle,companyName,attempted,result
type CSVFile struct {
	path   string
	loc    *time.Location
	logger *slog.Logger
}

// NewCSVFile returns a ledger backed by path. Timestamps are written and read in the
// local time zone.
func NewCSVFile(path string, logger *slog.Logger) *CSVFile {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CSVFile{path: path, loc: time.Local, logger: logger}
}

// Path returns the backing file path.
func (f *CSVFile) Path() string {
	return f.path
}

// Append writes one row, creating the file if needed.
func (f *CSVFile) Append(_ context.Context, rec types.AppliedJobRecord) error {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open ledger %s: %w", f.path, err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(f.encode(rec)); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to append ledger row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to append ledger row: %w", err)
	}
	return file.Close()
}

// Since reads the whole file and keeps rows newer than cutoff. A missing file is an
// empty ledger; unparsable rows are logged and skipped.
func (f *CSVFile) Since(_ context.Context, cutoff time.Time) ([]types.AppliedJobRecord, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger %s: %w", f.path, err)
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	var out []types.AppliedJobRecord
	for line := 1; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			f.logger.Warn("skipping unreadable ledger row", "path", f.path, "line", line, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read ledger %s: %w", f.path, err)
		}
		rec, err := f.decode(row)
		if err != nil {
			f.logger.Warn("skipping invalid ledger row", "path", f.path, "line", line, "error", err)
			continue
		}
		if rec.Timestamp.After(cutoff) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *CSVFile) encode(rec types.AppliedJobRecord) []string {
	return []string{
		rec.Timestamp.In(f.loc).Format(types.LedgerTimeLayout),
		rec.JobID,
		rec.JobTitle,
		rec.Company,
		formatBool(rec.Attempted),
		formatBool(rec.Result),
	}
}

func (f *CSVFile) decode(row []string) (types.AppliedJobRecord, error) {
	if len(row) < 6 {
		return types.AppliedJobRecord{}, fmt.Errorf("row has %d columns, want 6", len(row))
	}
	ts, err := time.ParseInLocation(types.LedgerTimeLayout, strings.TrimSpace(row[0]), f.loc)
	if err != nil {
		return types.AppliedJobRecord{}, fmt.Errorf("invalid timestamp %q: %w", row[0], err)
	}
	attempted, err := parseBool(row[4])
	if err != nil {
		return types.AppliedJobRecord{}, err
	}
	result, err := parseBool(row[5])
	if err != nil {
		return types.AppliedJobRecord{}, err
	}
	return types.AppliedJobRecord{
		Timestamp: ts,
		JobID:     strings.TrimSpace(row[1]),
		JobTitle:  row[2],
		Company:   row[3],
		Attempted: attempted,
		Result:    result,
	}, nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func parseBool(s string) (bool, error) {
	b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", s)
	}
	return b, nil
}
