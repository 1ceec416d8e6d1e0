package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

// JSONFile stores the snapshot as a single JSON document on disk.
type JSONFile struct {
	mu   sync.Mutex
	path string
}

// NewJSONFile returns a file backend rooted at path. The directory is created if missing.
func NewJSONFile(path string) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &JSONFile{path: path}, nil
}

func (f *JSONFile) Load(_ context.Context) (*model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return model.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	return model.DecodeSnapshot(data)
}

// Save writes to a temporary file in the same directory and renames it into place.
func (f *JSONFile) Save(_ context.Context, snap *model.Snapshot) error {
	data, err := model.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}

// Path returns the document location.
func (f *JSONFile) Path() string { return f.path }

func (f *JSONFile) Close() error { return nil }
