package tracker

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

const (
	forecastDays    = 7
	spikeFactor     = 2.5
	codingShare     = 0.4
	codingCategory  = "coding"
	defaultCategory = "other"
)

// Recommendation is shown when coding makes up a large share of all usage.
const Recommendation = "You use a lot of coding queries; consider a code-focused assistant such as Grok or GitHub Copilot."

// Stats computes the dashboard summary. TotalUsed sums current-period usage
// across services, not lifetime usage. Rollovers due at the store clock are applied.
func (s *Store) Stats(ctx context.Context, window int) AggregateStats {
	if window <= 0 {
		window = DefaultWindow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	stats := AggregateStats{
		MostUsed: MostUsed{Name: model.NoService},
		Window:   window,
	}

	rolled := false
	for i := range s.services {
		used, r := s.currentUsageLocked(i, now)
		rolled = rolled || r

		stats.TotalUsed += used
		if used > stats.MostUsed.Used {
			stats.MostUsed = MostUsed{Name: s.services[i].Name, Used: used}
		}
	}
	if rolled {
		s.persistLocked(ctx)
	}

	stats.AverageDaily = AverageDaily(s.daily, window)
	stats.Streak = LoggingStreak(s.daily, now)
	return stats
}

// Trend returns the most recent window daily totals, oldest first.
func (s *Store) Trend(window int) []DailyTotal {
	if window <= 0 {
		window = DefaultWindow
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dates := recentDates(s.daily, window)
	out := make([]DailyTotal, 0, len(dates))
	for _, d := range dates {
		out = append(out, DailyTotal{Date: d, Total: s.daily[d]})
	}
	return out
}

// Insights computes the lifetime breakdowns and the 7-day projection.
func (s *Store) Insights(_ context.Context) Insights {
	s.mu.Lock()
	defer s.mu.Unlock()

	ins := Insights{ByCategory: make(map[string]int64)}

	var total, coding int64
	for _, e := range s.history {
		cat := e.Category
		if cat == "" {
			cat = defaultCategory
		}
		ins.ByCategory[cat] += e.Amount
		ins.ByWeekday[e.Timestamp.In(s.loc).Weekday()] += e.Amount

		total += e.Amount
		if e.Category == codingCategory {
			coding += e.Amount
		}
	}

	ins.Forecast = ForecastFrom(s.daily, forecastDays)
	if float64(coding) > float64(total)*codingShare {
		ins.Recommendation = Recommendation
	}
	ins.Streak = LoggingStreak(s.daily, s.clock())
	return ins
}

// AverageDaily is the mean of the most recent window dated entries. Days
// without an entry are not counted, so this is not a zero-filled calendar average.
func AverageDaily(daily DailyStats, window int) float64 {
	dates := recentDates(daily, window)
	if len(dates) == 0 {
		return 0
	}

	var sum int64
	for _, d := range dates {
		sum += daily[d]
	}
	return float64(sum) / float64(len(dates))
}

// LoggingStreak counts consecutive calendar days with an entry, walking back
// from today. It is 0 when today has no entry.
func LoggingStreak(daily DailyStats, today time.Time) int {
	streak := 0
	day := model.Midnight(today)
	for {
		if _, ok := daily[model.DateKey(day)]; !ok {
			return streak
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
}

// ForecastFrom projects the next days from the mean of the last days entries.
// A spike is any of those entries above spikeFactor times the mean.
func ForecastFrom(daily DailyStats, days int) Forecast {
	avg := AverageDaily(daily, days)
	f := Forecast{
		AverageDaily: avg,
		Projected:    int64(math.Round(avg * float64(days))),
		Days:         days,
	}
	if avg > 0 {
		for _, d := range recentDates(daily, days) {
			if float64(daily[d]) > avg*spikeFactor {
				f.Spike = true
				break
			}
		}
	}
	return f
}

// recentDates returns the last n date keys in chronological order.
func recentDates(daily DailyStats, n int) []string {
	dates := make([]string, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	if n > 0 && len(dates) > n {
		dates = dates[len(dates)-n:]
	}
	return dates
}
