package tracker

import (
	"context"
	"strings"
	"time"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

// DefaultServices are added by SeedDefaults on first use.
var DefaultServices = []struct {
	Name  string
	Limit int64
}{
	{"Grok", 20},
	{"Claude", 30},
	{"Gemini", 50},
	{"Perplexity", 50},
}

func validateService(name string, limit int64, period RefreshPeriod) error {
	if name == "" {
		return &model.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if limit <= 0 {
		return &model.ValidationError{Field: "limit", Reason: "must be a positive integer"}
	}
	if !period.Valid() {
		return &model.ValidationError{Field: "refreshPeriod", Reason: "must be daily, weekly or monthly"}
	}
	return nil
}

// AddService appends a new service whose first period ends per ComputeRefreshTime.
func (s *Store) AddService(ctx context.Context, name string, limit int64, period RefreshPeriod) (*Service, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateService(name, limit, period); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	svc := s.addLocked(name, limit, period, s.clock())
	s.persistLocked(ctx)

	s.logger.Info("service added",
		"service", svc.Name,
		"limit", svc.Limit,
		"period", svc.RefreshPeriod,
		"refresh_time", svc.RefreshTime,
	)
	return &svc, nil
}

func (s *Store) addLocked(name string, limit int64, period RefreshPeriod, now time.Time) Service {
	svc := Service{
		Name:          name,
		Limit:         limit,
		RefreshPeriod: period,
		RefreshTime:   model.ComputeRefreshTime(period, now),
	}
	s.services = append(s.services, svc)
	return svc
}

// UpdateService edits a service in place. Usage in the current period is kept;
// a changed period starts a new refresh window from now.
func (s *Store) UpdateService(ctx context.Context, index int, name string, limit int64, period RefreshPeriod) (*Service, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validateService(name, limit, period); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndexLocked(index); err != nil {
		return nil, err
	}

	svc := &s.services[index]
	if svc.RefreshPeriod != period {
		svc.RefreshTime = model.ComputeRefreshTime(period, s.clock())
	}
	svc.Name = name
	svc.Limit = limit
	svc.RefreshPeriod = period
	s.persistLocked(ctx)

	out := *svc
	s.logger.Info("service updated", "index", index, "service", out.Name)
	return &out, nil
}

// RemoveService deletes the service at index. History entries are kept.
func (s *Store) RemoveService(ctx context.Context, index int) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndexLocked(index); err != nil {
		return err
	}

	name := s.services[index].Name
	s.services = append(s.services[:index], s.services[index+1:]...)
	s.persistLocked(ctx)

	s.logger.Info("service removed", "index", index, "service", name)
	return nil
}

// SeedDefaults adds the sample services when none exist and reports how many
// were added. A read-only store adds nothing.
func (s *Store) SeedDefaults(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly || len(s.services) > 0 {
		return 0
	}

	now := s.clock()
	for _, d := range DefaultServices {
		s.addLocked(d.Name, d.Limit, PeriodDaily, now)
	}
	s.persistLocked(ctx)

	s.logger.Info("sample services added", "count", len(DefaultServices))
	return len(DefaultServices)
}

// ListServices returns the services in insertion order. Rollovers are not applied.
func (s *Store) ListServices() []Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Service{}, s.services...)
}

// CurrentUsage returns the usage of the service at index in its active period.
// When the period has ended at now the counter is reset and the new state is
// persisted, so a read can mutate the store. Calls with the same now after
// that are idempotent.
func (s *Store) CurrentUsage(ctx context.Context, index int, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndexLocked(index); err != nil {
		return 0, err
	}

	used, rolled := s.currentUsageLocked(index, now)
	if rolled {
		s.persistLocked(ctx)
	}
	return used, nil
}

// currentUsageLocked applies a pending rollover. Callers hold s.mu.
func (s *Store) currentUsageLocked(index int, now time.Time) (used int64, rolled bool) {
	svc := &s.services[index]
	if model.DueForRollover(*svc, now) {
		svc.Rollover(now.In(s.loc))
		s.logger.Debug("service rolled over",
			"service", svc.Name,
			"next_refresh", svc.RefreshTime,
		)
		return 0, true
	}
	return max(svc.CurrentUsage, 0), false
}

func (s *Store) rolloverAllLocked(now time.Time) bool {
	rolled := false
	for i := range s.services {
		if _, r := s.currentUsageLocked(i, now); r {
			rolled = true
		}
	}
	return rolled
}

// ServiceStatuses returns one status line per service after applying rollovers at now.
func (s *Store) ServiceStatuses(ctx context.Context, now time.Time) []ServiceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]ServiceStatus, 0, len(s.services))
	rolled := false
	for i := range s.services {
		used, r := s.currentUsageLocked(i, now)
		rolled = rolled || r

		svc := s.services[i]
		pct := 0.0
		if svc.Limit > 0 {
			pct = float64(used) / float64(svc.Limit) * 100
		}
		statuses = append(statuses, ServiceStatus{
			Index:       i,
			Name:        svc.Name,
			Used:        used,
			Limit:       svc.Limit,
			Remaining:   max(svc.Limit-used, 0),
			Percent:     pct,
			Level:       model.Level(used, svc.Limit, s.alertThresholdPct).String(),
			Period:      svc.RefreshPeriod,
			RefreshTime: svc.RefreshTime,
		})
	}
	if rolled {
		s.persistLocked(ctx)
	}
	return statuses
}
