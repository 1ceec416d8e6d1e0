package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log SERVICE AMOUNT",
	Short: "Record usage against a service",
	Long: `Record a number of requests against a service, given by name or by the
index shown in 'aut service list'. A quota whose refresh time has passed is
reset before the amount is added.`,
	Args: cobra.ExactArgs(2),
	RunE: runLog,
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.Flags().StringP("description", "d", "", "What the requests were for")
	logCmd.Flags().StringP("category", "c", "", "Category (e.g. coding, writing, research)")
}

func runLog(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", args[1], err)
	}
	description, _ := cmd.Flags().GetString("description")
	category, _ := cmd.Flags().GetString("category")

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	index, err := resolveService(store, args[0])
	if err != nil {
		return err
	}

	event, err := store.LogUsage(cmd.Context(), index, amount, description, category)
	if err != nil {
		return fmt.Errorf("log usage: %w", err)
	}

	svc := store.ListServices()[index]
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recorded usage:\n")
	fmt.Fprintf(out, "  ID:          %s\n", event.ID)
	fmt.Fprintf(out, "  Service:     %s\n", event.Service)
	fmt.Fprintf(out, "  Amount:      %d\n", event.Amount)
	if event.Category != "" {
		fmt.Fprintf(out, "  Category:    %s\n", event.Category)
	}
	fmt.Fprintf(out, "  Used:        %d / %d\n", svc.CurrentUsage, svc.Limit)

	return nil
}
