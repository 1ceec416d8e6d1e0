package storage

import (
	"context"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

// Storage persists full snapshots of the accounting state.
type Storage interface {
	// Load returns the last saved snapshot, or empty defaults if nothing was saved.
	// A document that fails validation yields an error wrapping model.ErrMalformedSnapshot.
	Load(ctx context.Context) (*model.Snapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap *model.Snapshot) error

	// Close releases resources.
	Close() error
}
