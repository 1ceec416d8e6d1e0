package tracker

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/alerts"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

// LogUsage records amount against the service at index. A pending rollover is
// applied first, then the usage counter, the history log and today's daily
// total are updated together. Invalid input returns a ValidationError and
// changes nothing.
func (s *Store) LogUsage(ctx context.Context, index int, amount int64, description, category string) (*UsageEvent, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	category = strings.TrimSpace(category)

	if amount <= 0 {
		return nil, &model.ValidationError{Field: "amount", Reason: "must be a positive integer"}
	}
	if s.requireDescription && description == "" {
		return nil, &model.ValidationError{Field: "description", Reason: "must not be empty"}
	}

	event, alert, err := s.logUsage(ctx, index, amount, description, category)
	if err != nil {
		return nil, err
	}

	s.logger.Info("usage recorded",
		"service", event.Service,
		"amount", event.Amount,
		"category", event.Category,
	)

	if alert != nil {
		s.dispatch(ctx, *alert)
	}
	return event, nil
}

func (s *Store) logUsage(ctx context.Context, index int, amount int64, description, category string) (*UsageEvent, *alerts.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkIndexLocked(index); err != nil {
		return nil, nil, err
	}

	now := s.clock()
	before, _ := s.currentUsageLocked(index, now)

	svc := &s.services[index]
	svc.CurrentUsage = before + amount

	event := UsageEvent{
		ID:          uuid.New().String(),
		Service:     svc.Name,
		Amount:      amount,
		Description: description,
		Category:    category,
		Timestamp:   now,
	}
	s.history = append(s.history, event)
	s.daily[model.DateKey(now)] += amount

	s.persistLocked(ctx)

	return &event, s.crossedLocked(*svc, before), nil
}

// ListHistory returns matching events oldest first. A positive filter.Limit
// keeps only the most recent matches.
func (s *Store) ListHistory(filter HistoryFilter) []UsageEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]UsageEvent, 0, len(s.history))
	for _, e := range s.history {
		if filter.Match(e) {
			out = append(out, e)
		}
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[len(out)-filter.Limit:]
	}
	return out
}

// DailyStats returns a copy of the per-day totals.
func (s *Store) DailyStats() DailyStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(DailyStats, len(s.daily))
	for k, v := range s.daily {
		out[k] = v
	}
	return out
}
