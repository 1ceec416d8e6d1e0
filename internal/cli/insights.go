package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show usage by category and weekday with a 7-day forecast",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	ins := store.Insights(cmd.Context())
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "=== AI Usage Insights ===\n")

	if len(ins.ByCategory) > 0 {
		categories := make([]string, 0, len(ins.ByCategory))
		for c := range ins.ByCategory {
			categories = append(categories, c)
		}
		sort.Slice(categories, func(i, j int) bool {
			if ins.ByCategory[categories[i]] != ins.ByCategory[categories[j]] {
				return ins.ByCategory[categories[i]] > ins.ByCategory[categories[j]]
			}
			return categories[i] < categories[j]
		})

		fmt.Fprintf(out, "\nBy Category:\n")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  CATEGORY\tAMOUNT\n")
		for _, c := range categories {
			fmt.Fprintf(w, "  %s\t%d\n", c, ins.ByCategory[c])
		}
		w.Flush()
	}

	fmt.Fprintf(out, "\nBy Weekday:\n")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for d := time.Sunday; d <= time.Saturday; d++ {
		fmt.Fprintf(w, "  %s\t%d\n", d.String()[:3], ins.ByWeekday[d])
	}
	w.Flush()

	fmt.Fprintf(out, "\nForecast (%d days): %d requests at %.1f/day\n",
		ins.Forecast.Days, ins.Forecast.Projected, ins.Forecast.AverageDaily)
	if ins.Forecast.Spike {
		fmt.Fprintf(out, "Spike detected in recent usage.\n")
	}
	fmt.Fprintf(out, "Logging streak: %d day(s)\n", ins.Streak)
	if ins.Recommendation != "" {
		fmt.Fprintf(out, "\nTip: %s\n", ins.Recommendation)
	}

	return nil
}
