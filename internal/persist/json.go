// Package persist writes crawl output: the incremental JSON record file,
// the optional XLSX export, and the optional markdown page archive.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/docdex/harvest/pkg/models"
)

// backupGenerations is how many rotated copies of a previous output file are
// kept before the oldest is dropped.
const backupGenerations = 3

// JSONSink persists records to a single JSON array file. Every persist
// rewrites the file atomically (temp file + rename), so an aborted run
// leaves a complete, parseable file containing everything extracted so far.
type JSONSink struct {
	path string

	mu      sync.Mutex
	records []*models.Record
}

// NewJSONSink creates the output directory, rotates any previous output file
// out of the way, and returns an empty sink writing to <dir>/<name>.json.
func NewJSONSink(dir, name string) (*JSONSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, name+".json")
	if err := rotate(path); err != nil {
		return nil, err
	}

	return &JSONSink{path: path}, nil
}

// Path returns the output file path.
func (s *JSONSink) Path() string { return s.path }

// Persist appends a record and flushes the whole file.
func (s *JSONSink) Persist(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return s.flushLocked()
}

// Records returns a copy of everything persisted so far.
func (s *JSONSink) Records() []*models.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*models.Record, len(s.records))
	copy(out, s.records)
	return out
}

func (s *JSONSink) flushLocked() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}

// rotate shifts path → path.1 → path.2 … keeping backupGenerations copies.
func rotate(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	oldest := fmt.Sprintf("%s.%d", path, backupGenerations)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rotate output: %w", err)
	}
	for i := backupGenerations - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", path, i)
		to := fmt.Sprintf("%s.%d", path, i+1)
		if err := os.Rename(from, to); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("rotate output: %w", err)
		}
	}
	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("rotate output: %w", err)
	}

	log.Debug().Str("path", path).Msg("Rotated previous output file")
	return nil
}

// WriteSummary stores the run summary alongside the record file.
func WriteSummary(dir, name string, summary models.RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	path := filepath.Join(dir, name+".summary.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
