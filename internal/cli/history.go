package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/tracker"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the usage history, newest first",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringP("service", "s", "", "Filter by service name")
	historyCmd.Flags().StringP("category", "c", "", "Filter by category")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum entries to show (0 for all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	service, _ := cmd.Flags().GetString("service")
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	events := store.ListHistory(tracker.HistoryFilter{
		Service:  service,
		Category: category,
		Limit:    limit,
	})

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "No usage recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIMESTAMP\tSERVICE\tAMOUNT\tCATEGORY\tDESCRIPTION\n")
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		category := e.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			e.Timestamp.In(store.Location()).Format("2006-01-02 15:04"),
			e.Service, e.Amount, category, e.Description,
		)
	}
	return w.Flush()
}
