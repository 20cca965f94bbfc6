package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record summarizes one finished game.
type Record struct {
	Winner     int       `json:"winner"` // 0 means a draw
	Moves      int       `json:"moves"`
	Columns    int       `json:"columns"`
	Rows       int       `json:"rows"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

/// Archive persists finished games. Live sessions are never persisted: they
// are bound to their connections and die with the last one.
type Archive interface {
	Append(rec Record) error
}

// FileArchive appends records to a JSON-lines file.
type FileArchive struct {
	path string
	mu   sync.Mutex
}

// NewFileArchive creates the archive file's directory if needed.
func NewFileArchive(path string) (*FileArchive, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &FileArchive{path: path}, nil
}

// Append writes one record as a single JSON line.
func (a *FileArchive) Append(rec Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("failed to write archive record: %w", err)
	}
	return nil
}

// ReadAll loads every record in the archive file. Missing files read as
// empty; the analyze command uses this.
func (a *FileArchive) ReadAll() ([]Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	f, err := os.Open(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer f.Close()

	var records []Record
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to parse archive record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
