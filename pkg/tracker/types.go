package tracker

import "github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"

// Re-export types from model package for convenience.
type (
	Service        = model.Service
	UsageEvent     = model.UsageEvent
	RefreshPeriod  = model.RefreshPeriod
	DailyStats     = model.DailyStats
	AggregateStats = model.AggregateStats
	MostUsed       = model.MostUsed
	Insights       = model.Insights
	Forecast       = model.Forecast
	DailyTotal     = model.DailyTotal
	ServiceStatus  = model.ServiceStatus
	HistoryFilter  = model.HistoryFilter
)

// Re-export constants.
const (
	PeriodDaily   = model.PeriodDaily
	PeriodWeekly  = model.PeriodWeekly
	PeriodMonthly = model.PeriodMonthly
)

// ComputeRefreshTime wraps model.ComputeRefreshTime.
var ComputeRefreshTime = model.ComputeRefreshTime
