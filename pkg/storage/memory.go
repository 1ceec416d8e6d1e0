package storage

import (
	"context"
	"sync"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

// Memory keeps the snapshot in process. Useful for tests and ephemeral runs.
type Memory struct {
	mu    sync.Mutex
	snap  *model.Snapshot
	saves int
	err   error
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return model.NewSnapshot(), nil
	}
	return m.snap.Clone(), nil
}

func (m *Memory) Save(_ context.Context, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.snap = snap.Clone()
	m.saves++
	return nil
}

// Saves returns how many successful saves have happened.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith makes subsequent saves return err. Pass nil to recover.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *Memory) Close() error { return nil }
