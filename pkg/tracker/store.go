package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/alerts"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/storage"
)

// DefaultWindow is the number of dated entries averaged by Stats.
const DefaultWindow = 14

// DefaultAlertThresholdPct is the usage percentage that raises a warning alert.
const DefaultAlertThresholdPct = 80.0

// ErrReadOnly is returned by mutating operations on a store opened WithReadOnly.
var ErrReadOnly = errors.New("store is read-only")

// Store owns the tracked services, the usage history and the daily totals.
// Every mutation is applied in memory first and then written through to the backend.
type Store struct {
	mu sync.Mutex

	backend   storage.Storage
	notifiers []alerts.Notifier
	logger    *slog.Logger

	now                func() time.Time
	loc                *time.Location
	requireDescription bool
	alertThresholdPct  float64
	readOnly           bool

	services []model.Service
	history  []model.UsageEvent
	daily    model.DailyStats
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used for timestamps and rollovers.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the calendar used for midnights and date keys.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRequireDescription controls whether LogUsage rejects empty descriptions.
func WithRequireDescription(required bool) Option {
	return func(s *Store) { s.requireDescription = required }
}

// WithNotifiers sets the alert destinations for quota threshold crossings.
func WithNotifiers(notifiers ...alerts.Notifier) Option {
	return func(s *Store) { s.notifiers = notifiers }
}

// WithAlertThreshold sets the warning threshold in percent of a service limit.
func WithAlertThreshold(pct float64) Option {
	return func(s *Store) { s.alertThresholdPct = pct }
}

// WithReadOnly opens the store for reading only. Rollovers due at read time are
// applied in memory and never saved; the next writer persists them. Mutations
// fail with ErrReadOnly.
func WithReadOnly() Option {
	return func(s *Store) { s.readOnly = true }
}

// NewStore creates a store and loads the last snapshot from backend.
// An unreadable snapshot is logged and replaced by empty defaults.
// A nil backend keeps state in memory only.
func NewStore(ctx context.Context, backend storage.Storage, logger *slog.Logger, opts ...Option) *Store {
	if backend == nil {
		backend = storage.NewMemory()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		backend:            backend,
		logger:             logger,
		now:                time.Now,
		loc:                time.Local,
		requireDescription: true,
		alertThresholdPct:  DefaultAlertThresholdPct,
	}
	for _, opt := range opts {
		opt(s)
	}

	snap, err := backend.Load(ctx)
	if err != nil {
		s.logger.Warn("load snapshot failed, starting empty",
			"error", &model.PersistenceError{Op: "load", Err: err},
		)
		snap = model.NewSnapshot()
	}
	s.apply(snap)

	return s
}

// Reload replaces in-memory state with the backend's snapshot.
// On failure the current state is kept.
func (s *Store) Reload(ctx context.Context) error {
	snap, err := s.backend.Load(ctx)
	if err != nil {
		return &model.PersistenceError{Op: "load", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply(snap)
	return nil
}

// Location returns the calendar location used by the store.
func (s *Store) Location() *time.Location { return s.loc }

// Now returns the store clock's current time in the store location.
func (s *Store) Now() time.Time { return s.clock() }

func (s *Store) apply(snap *model.Snapshot) {
	s.services = append([]model.Service(nil), snap.Services...)
	s.history = append([]model.UsageEvent(nil), snap.History...)
	s.daily = make(model.DailyStats, len(snap.DailyStats))
	for k, v := range snap.DailyStats {
		s.daily[k] = v
	}
}

func (s *Store) clock() time.Time {
	return s.now().In(s.loc)
}

// snapshotLocked copies the state. Callers hold s.mu.
func (s *Store) snapshotLocked() *model.Snapshot {
	snap := model.NewSnapshot()
	snap.Services = append(snap.Services, s.services...)
	snap.History = append(snap.History, s.history...)
	for k, v := range s.daily {
		snap.DailyStats[k] = v
	}
	return snap
}

// persistLocked writes the snapshot through. Failures are logged and do not
// roll back the in-memory change. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	if s.readOnly {
		return
	}
	if err := s.backend.Save(ctx, s.snapshotLocked()); err != nil {
		s.logger.Warn("persist snapshot failed",
			"error", &model.PersistenceError{Op: "save", Err: err},
		)
	}
}

func (s *Store) checkWritable() error {
	if s.readOnly {
		return ErrReadOnly
	}
	return nil
}

// checkIndexLocked validates a service position. Callers hold s.mu.
func (s *Store) checkIndexLocked(index int) error {
	if index < 0 || index >= len(s.services) {
		return &model.ValidationError{
			Field:  "service",
			Reason: fmt.Sprintf("no service at index %d", index),
		}
	}
	return nil
}

// ExportSnapshot applies pending rollovers and returns a deep copy of the state.
func (s *Store) ExportSnapshot(ctx context.Context) *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rolloverAllLocked(s.clock()) {
		s.persistLocked(ctx)
	}
	return s.snapshotLocked()
}
