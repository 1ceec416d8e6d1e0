package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/export"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show total usage, the most used service, daily average and streak",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().IntP("window", "w", 0, "Days with activity to average over (default from config)")
	statsCmd.Flags().Bool("chart", false, "Draw the daily totals as a chart")
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	window, _ := cmd.Flags().GetInt("window")
	if window <= 0 {
		window = cfg.Tracker.AverageWindow
	}
	chart, _ := cmd.Flags().GetBool("chart")

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	stats := store.Stats(cmd.Context(), window)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== AI Usage Stats ===\n")
	fmt.Fprintf(out, "Total used:       %d\n", stats.TotalUsed)
	fmt.Fprintf(out, "Most used:        %s (%d)\n", stats.MostUsed.Name, stats.MostUsed.Used)
	days := min(stats.Window, len(store.DailyStats()))
	fmt.Fprintf(out, "Daily average:    %.1f (over %d active day(s))\n", stats.AverageDaily, days)
	fmt.Fprintf(out, "Logging streak:   %d day(s)\n", stats.Streak)

	if chart {
		trend := store.Trend(window)
		if c := export.TrendChart(trend, 60, 10); c != "" {
			fmt.Fprintf(out, "\n%s\n", c)
		} else {
			fmt.Fprintf(out, "\nNot enough days logged for a chart.\n")
		}
	}

	return nil
}
