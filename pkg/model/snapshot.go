package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SnapshotVersion is the schema version written by this build.
const SnapshotVersion = 1

// ErrMalformedSnapshot marks a persisted document that cannot be trusted.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// Snapshot is the full persisted state of the accounting store.
type Snapshot struct {
	Version    int          `json:"version" yaml:"version"`
	Services   []Service    `json:"services" yaml:"services"`
	History    []UsageEvent `json:"history" yaml:"history"`
	DailyStats DailyStats   `json:"dailyStats" yaml:"dailyStats"`
}

// NewSnapshot returns empty defaults at the current schema version.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version:    SnapshotVersion,
		Services:   []Service{},
		History:    []UsageEvent{},
		DailyStats: DailyStats{},
	}
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Version:    s.Version,
		Services:   append([]Service(nil), s.Services...),
		History:    append([]UsageEvent(nil), s.History...),
		DailyStats: make(DailyStats, len(s.DailyStats)),
	}
	if out.Services == nil {
		out.Services = []Service{}
	}
	if out.History == nil {
		out.History = []UsageEvent{}
	}
	for k, v := range s.DailyStats {
		out.DailyStats[k] = v
	}
	return out
}

// Validate checks every entity against the schema rules.
func (s *Snapshot) Validate() error {
	if s.Version < 0 || s.Version > SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedSnapshot, s.Version)
	}
	for i, svc := range s.Services {
		switch {
		case svc.Name == "":
			return fmt.Errorf("%w: service %d has no name", ErrMalformedSnapshot, i)
		case svc.Limit <= 0:
			return fmt.Errorf("%w: service %q has non-positive limit", ErrMalformedSnapshot, svc.Name)
		case !svc.RefreshPeriod.Valid():
			return fmt.Errorf("%w: service %q has unknown period %q", ErrMalformedSnapshot, svc.Name, svc.RefreshPeriod)
		case svc.CurrentUsage < 0:
			return fmt.Errorf("%w: service %q has negative usage", ErrMalformedSnapshot, svc.Name)
		}
	}
	for i, e := range s.History {
		if e.Amount <= 0 {
			return fmt.Errorf("%w: history entry %d has non-positive amount", ErrMalformedSnapshot, i)
		}
	}
	return nil
}

// DecodeSnapshot parses and validates a persisted document.
// Unversioned documents are upgraded to the current version.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	snap.Version = SnapshotVersion
	if snap.Services == nil {
		snap.Services = []Service{}
	}
	if snap.History == nil {
		snap.History = []UsageEvent{}
	}
	if snap.DailyStats == nil {
		snap.DailyStats = DailyStats{}
	}
	return &snap, nil
}

// EncodeSnapshot serializes a snapshot at the current schema version.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	out := *s
	out.Version = SnapshotVersion
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}
