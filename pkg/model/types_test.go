package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

func TestComputeRefreshTime_Daily(t *testing.T) {
	ref := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	got := model.ComputeRefreshTime(model.PeriodDaily, ref)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), got)
}

func TestComputeRefreshTime_Weekly(t *testing.T) {
	ref := time.Date(2024, 2, 27, 23, 59, 0, 0, time.UTC)
	got := model.ComputeRefreshTime(model.PeriodWeekly, ref)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got)
}

func TestComputeRefreshTime_Monthly(t *testing.T) {
	tests := []struct {
		name string
		ref  time.Time
		want time.Time
	}{
		{"mid month", time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"end of january", time.Date(2024, 1, 31, 8, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"december", time.Date(2024, 12, 20, 8, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"first of month", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.ComputeRefreshTime(model.PeriodMonthly, tt.ref)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, got.Day())
		})
	}
}

func TestComputeRefreshTime_Properties(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	periods := []model.RefreshPeriod{model.PeriodDaily, model.PeriodWeekly, model.PeriodMonthly}
	start := time.Date(2023, 12, 25, 0, 0, 0, 0, loc)

	for h := 0; h < 24*70; h += 7 {
		ref := start.Add(time.Duration(h) * time.Hour)
		for _, p := range periods {
			got := model.ComputeRefreshTime(p, ref)
			assert.True(t, got.After(ref), "period %s ref %s", p, ref)
			assert.Equal(t, model.Midnight(got), got)
			if p == model.PeriodMonthly {
				assert.Equal(t, 1, got.Day())
			}
		}
	}
}

func TestComputeRefreshTime_UnknownPeriod(t *testing.T) {
	ref := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	got := model.ComputeRefreshTime("hourly", ref)
	assert.Equal(t, 24*time.Hour, got.Sub(model.Midnight(ref)))
}

func TestRollover(t *testing.T) {
	s := model.Service{
		Name:          "Claude",
		Limit:         30,
		RefreshPeriod: model.PeriodDaily,
		RefreshTime:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		CurrentUsage:  12,
	}

	// Several periods missed: the new period starts from now, not the old refresh time.
	now := time.Date(2024, 1, 9, 13, 0, 0, 0, time.UTC)
	require.True(t, model.DueForRollover(s, now))
	s.Rollover(now)

	assert.Equal(t, int64(0), s.CurrentUsage)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), s.RefreshTime)
	assert.False(t, model.DueForRollover(s, now))
}

func TestDueForRollover_Boundary(t *testing.T) {
	rt := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := model.Service{RefreshTime: rt}
	assert.False(t, model.DueForRollover(s, rt.Add(-time.Nanosecond)))
	assert.True(t, model.DueForRollover(s, rt))
}

func TestRefreshPeriod_Valid(t *testing.T) {
	assert.True(t, model.PeriodDaily.Valid())
	assert.True(t, model.PeriodWeekly.Valid())
	assert.True(t, model.PeriodMonthly.Valid())
	assert.False(t, model.RefreshPeriod("yearly").Valid())
	assert.False(t, model.RefreshPeriod("").Valid())
}

func TestLevel(t *testing.T) {
	assert.Equal(t, model.LevelOK, model.Level(10, 100, 80))
	assert.Equal(t, model.LevelWarning, model.Level(80, 100, 80))
	assert.Equal(t, model.LevelCritical, model.Level(95, 100, 80))
	assert.Equal(t, model.LevelExceeded, model.Level(100, 100, 80))
	assert.Equal(t, model.LevelExceeded, model.Level(130, 100, 80))
	assert.Equal(t, model.LevelOK, model.Level(5, 0, 80))
	assert.Equal(t, "critical", model.LevelCritical.String())
}

func TestHistoryFilter_Match(t *testing.T) {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	e := model.UsageEvent{Service: "Grok", Amount: 2, Category: "coding", Timestamp: ts}

	assert.True(t, model.HistoryFilter{}.Match(e))
	assert.True(t, model.HistoryFilter{Service: "Grok", Category: "coding"}.Match(e))
	assert.False(t, model.HistoryFilter{Service: "Claude"}.Match(e))
	assert.False(t, model.HistoryFilter{Category: "writing"}.Match(e))
	assert.True(t, model.HistoryFilter{StartTime: ts, EndTime: ts.Add(time.Hour)}.Match(e))
	assert.False(t, model.HistoryFilter{EndTime: ts}.Match(e))
}
