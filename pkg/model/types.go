package model

import "time"

// RefreshPeriod defines how often a service's usage counter resets.
type RefreshPeriod string

const (
	PeriodDaily   RefreshPeriod = "daily"
	PeriodWeekly  RefreshPeriod = "weekly"
	PeriodMonthly RefreshPeriod = "monthly"
)

// Valid reports whether p is one of the known refresh periods.
func (p RefreshPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// Service is a tracked subject with a usage quota.
type Service struct {
	Name          string        `json:"name" yaml:"name"`
	Limit         int64         `json:"limit" yaml:"limit"`
	RefreshPeriod RefreshPeriod `json:"refreshPeriod" yaml:"refreshPeriod"`
	RefreshTime   time.Time     `json:"refreshTime" yaml:"refreshTime"`
	CurrentUsage  int64         `json:"currentUsage" yaml:"currentUsage"`
}

// UsageEvent is one immutable logging action against a service.
// Service holds the name at logging time, not a live reference.
type UsageEvent struct {
	ID          string    `json:"id,omitempty" yaml:"id,omitempty"`
	Service     string    `json:"service" yaml:"service"`
	Amount      int64     `json:"amount" yaml:"amount"`
	Description string    `json:"description" yaml:"description"`
	Category    string    `json:"category,omitempty" yaml:"category,omitempty"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// DailyStats maps a calendar date (YYYY-MM-DD) to the total amount logged that day.
type DailyStats map[string]int64

// MostUsed names the service with the highest current-period usage.
type MostUsed struct {
	Name string `json:"name" yaml:"name"`
	Used int64  `json:"used" yaml:"used"`
}

// NoService is the MostUsed sentinel when no service has been added.
const NoService = "—"

// AggregateStats holds the dashboard summary figures.
type AggregateStats struct {
	TotalUsed    int64    `json:"totalUsed" yaml:"totalUsed"`
	MostUsed     MostUsed `json:"mostUsed" yaml:"mostUsed"`
	AverageDaily float64  `json:"averageDaily" yaml:"averageDaily"`
	Window       int      `json:"window" yaml:"window"`
	Streak       int      `json:"streak" yaml:"streak"`
}

// DailyTotal is one point of a trend series.
type DailyTotal struct {
	Date  string `json:"date" yaml:"date"`
	Total int64  `json:"total" yaml:"total"`
}

// Forecast is a naive projection from the recent daily average.
type Forecast struct {
	AverageDaily float64 `json:"averageDaily" yaml:"averageDaily"`
	Projected    int64   `json:"projected" yaml:"projected"`
	Days         int     `json:"days" yaml:"days"`
	Spike        bool    `json:"spike" yaml:"spike"`
}

// Insights groups the lifetime breakdowns shown on the insights page.
type Insights struct {
	ByCategory     map[string]int64 `json:"byCategory" yaml:"byCategory"`
	ByWeekday      [7]int64         `json:"byWeekday" yaml:"byWeekday"` // Sunday first
	Forecast       Forecast         `json:"forecast" yaml:"forecast"`
	Recommendation string           `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	Streak         int              `json:"streak" yaml:"streak"`
}

// QuotaLevel classifies how much of a quota has been consumed.
type QuotaLevel int

const (
	LevelOK QuotaLevel = iota
	LevelWarning
	LevelCritical
	LevelExceeded
)

func (l QuotaLevel) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	case LevelExceeded:
		return "exceeded"
	default:
		return "ok"
	}
}

// ServiceStatus is the per-card view of a service.
type ServiceStatus struct {
	Index       int           `json:"index" yaml:"index"`
	Name        string        `json:"name" yaml:"name"`
	Used        int64         `json:"used" yaml:"used"`
	Limit       int64         `json:"limit" yaml:"limit"`
	Remaining   int64         `json:"remaining" yaml:"remaining"`
	Percent     float64       `json:"percent" yaml:"percent"`
	Level       string        `json:"level" yaml:"level"`
	Period      RefreshPeriod `json:"refreshPeriod" yaml:"refreshPeriod"`
	RefreshTime time.Time     `json:"refreshTime" yaml:"refreshTime"`
}

// HistoryFilter controls which usage events are returned from the history log.
type HistoryFilter struct {
	Service   string
	Category  string
	StartTime time.Time
	EndTime   time.Time
	Limit     int // most recent N after filtering; 0 = all
}

// Match reports whether e passes the filter's field and time conditions.
func (f HistoryFilter) Match(e UsageEvent) bool {
	if f.Service != "" && e.Service != f.Service {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if !f.StartTime.IsZero() && e.Timestamp.Before(f.StartTime) {
		return false
	}
	if !f.EndTime.IsZero() && !e.Timestamp.Before(f.EndTime) {
		return false
	}
	return true
}
