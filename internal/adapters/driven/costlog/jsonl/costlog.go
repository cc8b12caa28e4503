// Package jsonl implements the cost log as an append-only JSON Lines file.
// One line per AI call keeps appends cheap and the file greppable.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/custodia-labs/docanalyser-cli/internal/core/ports/driven"
)

// logFileName is the cost log inside the data directory.
const logFileName = "costs.jsonl"

// CostLog implements driven.CostLog on a JSONL file.
type CostLog struct {
	mu   sync.Mutex
	path string
}

var _ driven.CostLog = (*CostLog)(nil)

// NewCostLog creates a cost log in the given data directory.
func NewCostLog(dataDir string) (*CostLog, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &CostLog{path: filepath.Join(dataDir, logFileName)}, nil
}

// Path returns the log file path.
func (l *CostLog) Path() string {
	return l.path
}

// Append adds one record.
func (l *CostLog) Append(_ context.Context, rec driven.CostRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling cost record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("opening cost log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing cost record: %w", err)
	}
	return nil
}

// Records returns all logged records, oldest first. Malformed lines are
// skipped; a damaged line must not make the whole history unreadable.
func (l *CostLog) Records(_ context.Context) ([]driven.CostRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening cost log: %w", err)
	}
	defer f.Close()

	var records []driven.CostRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec driven.CostRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading cost log: %w", err)
	}
	return records, nil
}

// Summary aggregates all records.
func (l *CostLog) Summary(ctx context.Context) (*driven.CostSummary, error) {
	records, err := l.Records(ctx)
	if err != nil {
		return nil, err
	}

	summary := &driven.CostSummary{
		ByProvider: make(map[string]float64),
		ByModel:    make(map[string]float64),
	}
	for _, rec := range records {
		summary.Total += rec.Cost
		summary.ByProvider[rec.Provider] += rec.Cost
		summary.ByModel[rec.Model] += rec.Cost
		summary.Calls++
	}
	return summary, nil
}
