package model

import "time"

// DateLayout is the calendar-date key format used by DailyStats.
const DateLayout = "2006-01-02"

// DateKey returns the calendar date of t in t's own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates t to the start of its calendar day in t's location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ComputeRefreshTime returns the end of the period that contains reference.
// Monthly periods always end on day 1 of the following month. Unknown
// periods are treated as daily.
func ComputeRefreshTime(period RefreshPeriod, reference time.Time) time.Time {
	start := Midnight(reference)
	switch period {
	case PeriodWeekly:
		return start.AddDate(0, 0, 7)
	case PeriodMonthly:
		return time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, start.Location())
	default:
		return start.AddDate(0, 0, 1)
	}
}

// DueForRollover reports whether the service's period has ended at now.
func DueForRollover(s Service, now time.Time) bool {
	return !now.Before(s.RefreshTime)
}

// Rollover resets the usage counter and starts a new period from now.
// The new refresh time is derived from now, so missed periods never compound.
func (s *Service) Rollover(now time.Time) {
	s.CurrentUsage = 0
	s.RefreshTime = ComputeRefreshTime(s.RefreshPeriod, now)
}

// Level classifies used against limit with the given warning threshold in percent.
func Level(used, limit int64, warnPct float64) QuotaLevel {
	if limit <= 0 {
		return LevelOK
	}
	pct := float64(used) / float64(limit) * 100
	switch {
	case pct >= 100:
		return LevelExceeded
	case pct >= 95:
		return LevelCritical
	case warnPct > 0 && pct >= warnPct:
		return LevelWarning
	default:
		return LevelOK
	}
}
