package tracker

import (
	"context"
	"fmt"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/alerts"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

var alertLevels = map[model.QuotaLevel]alerts.AlertLevel{
	model.LevelWarning:  alerts.AlertWarning,
	model.LevelCritical: alerts.AlertCritical,
	model.LevelExceeded: alerts.AlertExceeded,
}

// crossedLocked builds an alert when svc moved into a higher quota level
// than it had at usage before. Callers hold s.mu.
func (s *Store) crossedLocked(svc Service, before int64) *alerts.Alert {
	if len(s.notifiers) == 0 {
		return nil
	}

	prev := model.Level(before, svc.Limit, s.alertThresholdPct)
	next := model.Level(svc.CurrentUsage, svc.Limit, s.alertThresholdPct)
	if next <= prev {
		return nil
	}

	pct := float64(svc.CurrentUsage) / float64(svc.Limit) * 100
	return &alerts.Alert{
		Level:        alertLevels[next],
		Service:      svc.Name,
		Limit:        svc.Limit,
		Used:         svc.CurrentUsage,
		ThresholdPct: s.alertThresholdPct,
		Period:       string(svc.RefreshPeriod),
		Message: fmt.Sprintf("%s quota at %.1f%% (%d / %d)",
			svc.Name, pct, svc.CurrentUsage, svc.Limit),
	}
}

// dispatch sends an alert to every notifier. Failures are logged only.
func (s *Store) dispatch(ctx context.Context, alert alerts.Alert) {
	s.logger.Warn("quota threshold crossed",
		"service", alert.Service,
		"level", alert.Level,
		"used", alert.Used,
		"limit", alert.Limit,
	)

	for _, notifier := range s.notifiers {
		if err := notifier.Send(ctx, alert); err != nil {
			s.logger.Error("send alert failed",
				"notifier", notifier.Name(),
				"service", alert.Service,
				"error", err,
			)
		}
	}
}
