package csvlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"voicebank/internal/model"
	"voicebank/internal/repository"
)

// header is the first row of the metadata log. Column order is part of the
// dataset format and must not change.
var header = []string{"filename", "text", "language", "environment", "timestamp"}

const timestampLayout = time.RFC3339Nano

// Log is a SampleRepository backed by a single append-only CSV file.
//
// Appends are serialized by a mutex and each row is written through one csv
// writer flush on a file opened with O_APPEND, so concurrent submissions can
// never interleave partial rows. Reads open the file independently and never
// mutate it.
type Log struct {
	path string

	mu     sync.Mutex
	lastTS time.Time
	now    func() time.Time
}

// New creates a CSV-backed sample log at path, creating the parent directory
// and the file with its header row if they do not exist.
func New(path string) (*Log, error) {
	if path == "" {
		return nil, fmt.Errorf("metadata log path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dataset directory: %w", err)
		}
	}

	l := &Log{path: path, now: time.Now}
	if err := l.ensureHeader(); err != nil {
		return nil, err
	}
	return l, nil
}

// ensureHeader creates the log file with its header row if it is missing or
// empty. Existing rows are never touched.
func (l *Log) ensureHeader() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metadata log: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat metadata log: %w", err)
	}
	if st.Size() > 0 {
		return nil
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush header: %w", err)
	}
	return f.Sync()
}

// Append writes one row for the sample. The timestamp is assigned here, under
// the append lock, so row order and timestamp order always agree; it is
// clamped to be non-decreasing even if the wall clock steps backwards.
func (l *Log) Append(ctx context.Context, s *model.Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().UTC()
	if ts.Before(l.lastTS) {
		ts = l.lastTS
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metadata log: %w", err)
	}
	defer f.Close()

	// Recreate the header if the log was removed out-of-band.
	if st, err := f.Stat(); err == nil && st.Size() == 0 {
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush header: %w", err)
		}
	}

	w := csv.NewWriter(f)
	record := []string{
		s.Filename,
		s.Text,
		string(s.Language),
		string(s.Environment),
		ts.Format(timestampLayout),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync metadata log: %w", err)
	}

	l.lastTS = ts
	s.CreatedAt = ts
	return nil
}

// Stats computes aggregate counts over the whole log. Per the accessor
// contract a missing or unreadable log degrades to zero counts: display-only
// damage is preferable to blocking new submissions.
func (l *Log) Stats(ctx context.Context) (*repository.DatasetStats, error) {
	stats := repository.NewDatasetStats()

	rows, err := l.readAll(ctx)
	if err != nil {
		return repository.NewDatasetStats(), nil
	}

	for _, row := range rows {
		stats.Total++
		if lang, err := model.ParseLanguage(row[2]); err == nil {
			stats.ByLanguage[lang]++
		}
		if env, err := model.ParseEnvironment(row[3]); err == nil {
			stats.ByEnvironment[env]++
		}
	}
	return stats, nil
}

// List returns a page of samples in append order plus the total row count.
func (l *Log) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Sample], error) {
	rows, err := l.readAll(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &repository.PageResult[model.Sample]{Items: []model.Sample{}}, nil
		}
		return nil, err
	}

	total := len(rows)
	start := pq.Offset
	if start > total {
		start = total
	}
	end := total
	if pq.Limit > 0 && start+pq.Limit < end {
		end = start + pq.Limit
	}

	items := make([]model.Sample, 0, end-start)
	for _, row := range rows[start:end] {
		items = append(items, rowToSample(row))
	}
	return &repository.PageResult[model.Sample]{Items: items, Total: total}, nil
}

// readAll returns every data row (header excluded) with exactly five fields.
func (l *Log) readAll(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	first := true
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read metadata log: %w", err)
		}
		if first {
			first = false
			continue
		}
		if len(row) != len(header) {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowToSample(row []string) model.Sample {
	s := model.Sample{
		Filename:    row[0],
		Text:        row[1],
		Language:    model.Language(row[2]),
		Environment: model.Environment(row[3]),
	}
	if ts, err := time.Parse(timestampLayout, row[4]); err == nil {
		s.CreatedAt = ts
	}
	return s
}
