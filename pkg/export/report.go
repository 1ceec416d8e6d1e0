package export

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
)

// RecentEntries is how many history entries the printable report lists.
const RecentEntries = 10

// ReportData is everything the printable report shows.
type ReportData struct {
	GeneratedAt time.Time
	Snapshot    *model.Snapshot
	Stats       model.AggregateStats
	Trend       []model.DailyTotal
}

// Report writes a printable plain-text report.
func Report(w io.Writer, data ReportData) error {
	if data.Snapshot == nil {
		data.Snapshot = model.NewSnapshot()
	}
	ew := &errWriter{w: w}

	ew.printf("AI Usage Tracker Report\n")
	ew.printf("Generated: %s\n\n", data.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	ew.printf("Services:\n")
	if len(data.Snapshot.Services) == 0 {
		ew.printf("  (none)\n")
	}
	for _, s := range data.Snapshot.Services {
		ew.printf("  %s: %d / %d (%s, resets %s)\n",
			s.Name, s.CurrentUsage, s.Limit, s.RefreshPeriod,
			s.RefreshTime.Format("2006-01-02 15:04"))
	}

	ew.printf("\nSummary:\n")
	ew.printf("  Total used:  %d\n", data.Stats.TotalUsed)
	ew.printf("  Most used:   %s (%d)\n", data.Stats.MostUsed.Name, data.Stats.MostUsed.Used)
	ew.printf("  Avg / day:   %.1f\n", data.Stats.AverageDaily)
	ew.printf("  Streak:      %d day(s)\n", data.Stats.Streak)

	if ew.err != nil {
		return ew.err
	}

	ew.printf("\nRecent History:\n")
	history := data.Snapshot.History
	if len(history) == 0 {
		ew.printf("  (empty)\n")
	} else {
		start := max(len(history)-RecentEntries, 0)
		tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  TIME\tSERVICE\tAMOUNT\tCATEGORY\tDESCRIPTION\n")
		for i := len(history) - 1; i >= start; i-- {
			h := history[i]
			category := h.Category
			if category == "" {
				category = "?"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\t%s\n",
				h.Timestamp.Format("2006-01-02 15:04"),
				h.Service, h.Amount, category, h.Description)
		}
		tw.Flush()
	}

	if chart := TrendChart(data.Trend, 60, 8); chart != "" {
		ew.printf("\nDaily Usage (last %d days with activity):\n%s\n", len(data.Trend), chart)
	}

	return ew.err
}

// TrendChart draws daily totals as an ASCII line chart. It returns "" when
// there are fewer than two points to plot.
func TrendChart(trend []model.DailyTotal, width, height int) string {
	if len(trend) < 2 {
		return ""
	}
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	data := make([]float64, len(trend))
	for i, p := range trend {
		data[i] = float64(p.Total)
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s to %s", trend[0].Date, trend[len(trend)-1].Date)),
	)
}

// errWriter remembers the first write error so the report can be built without
// checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = fmt.Errorf("write report: %w", err)
	}
	return n, e.err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
