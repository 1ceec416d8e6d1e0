package alerts

import "context"

// AlertLevel indicates how much of a quota has been consumed.
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"  // Usage passed the configured threshold
	AlertCritical AlertLevel = "critical" // 95% of the quota or more
	AlertExceeded AlertLevel = "exceeded" // Quota used up
)

// Alert represents a quota threshold notification.
type Alert struct {
	Level        AlertLevel `json:"level"`
	Service      string     `json:"service"`
	Limit        int64      `json:"limit"`
	Used         int64      `json:"used"`
	ThresholdPct float64    `json:"threshold_pct"`
	Period       string     `json:"period"`
	Message      string     `json:"message"`
}

// UsagePct returns used as a percentage of the limit.
func (a Alert) UsagePct() float64 {
	if a.Limit <= 0 {
		return 0
	}
	return float64(a.Used) / float64(a.Limit) * 100
}

// Notifier sends alerts to external systems.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers an alert. Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert Alert) error
}
