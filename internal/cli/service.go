package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/tracker"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage tracked AI services",
}

var serviceAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Start tracking a service",
	Args:  cobra.ExactArgs(1),
	RunE:  runServiceAdd,
}

var serviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show services with their current-period usage",
	RunE:  runServiceList,
}

var serviceEditCmd = &cobra.Command{
	Use:   "edit SERVICE",
	Short: "Change a service's name, limit or refresh period",
	Args:  cobra.ExactArgs(1),
	RunE:  runServiceEdit,
}

var serviceRemoveCmd = &cobra.Command{
	Use:   "remove SERVICE",
	Short: "Stop tracking a service (history is kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runServiceRemove,
}

func init() {
	rootCmd.AddCommand(serviceCmd)
	serviceCmd.AddCommand(serviceAddCmd, serviceListCmd, serviceEditCmd, serviceRemoveCmd)

	serviceAddCmd.Flags().Int64P("limit", "l", 0, "Requests allowed per refresh period")
	serviceAddCmd.Flags().StringP("period", "P", "daily", "Refresh period (daily, weekly, monthly)")
	_ = serviceAddCmd.MarkFlagRequired("limit")

	serviceEditCmd.Flags().StringP("name", "n", "", "New display name")
	serviceEditCmd.Flags().Int64P("limit", "l", 0, "New limit")
	serviceEditCmd.Flags().StringP("period", "P", "", "New refresh period")
}

func runServiceAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt64("limit")
	period, _ := cmd.Flags().GetString("period")

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	svc, err := store.AddService(cmd.Context(), args[0], limit, tracker.RefreshPeriod(period))
	if err != nil {
		return fmt.Errorf("add service: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Service added:\n")
	fmt.Fprintf(out, "  Name:     %s\n", svc.Name)
	fmt.Fprintf(out, "  Limit:    %d per %s\n", svc.Limit, periodUnit(svc.RefreshPeriod))
	fmt.Fprintf(out, "  Resets:   %s\n", svc.RefreshTime.Format("2006-01-02 15:04 MST"))

	return nil
}

func runServiceList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	statuses := store.ServiceStatuses(cmd.Context(), store.Now())
	out := cmd.OutOrStdout()
	if len(statuses) == 0 {
		fmt.Fprintln(out, "No services tracked. Add one with 'aut service add' or run 'aut init'.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "#\tSERVICE\tUSED\tLIMIT\tLEFT\tUSAGE\tSTATUS\tPERIOD\tRESETS\n")
	for _, st := range statuses {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%.0f%%\t%s\t%s\t%s\n",
			st.Index, st.Name, st.Used, st.Limit, st.Remaining, st.Percent,
			st.Level, st.Period, st.RefreshTime.Format("2006-01-02 15:04"),
		)
	}
	return w.Flush()
}

func runServiceEdit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	index, err := resolveService(store, args[0])
	if err != nil {
		return err
	}

	current := store.ListServices()[index]
	name, limit, period := current.Name, current.Limit, current.RefreshPeriod
	if cmd.Flags().Changed("name") {
		name, _ = cmd.Flags().GetString("name")
	}
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt64("limit")
	}
	if cmd.Flags().Changed("period") {
		p, _ := cmd.Flags().GetString("period")
		period = tracker.RefreshPeriod(p)
	}

	svc, err := store.UpdateService(cmd.Context(), index, name, limit, period)
	if err != nil {
		return fmt.Errorf("edit service: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Service %d updated: %s, %d per %s, resets %s\n",
		index, svc.Name, svc.Limit, periodUnit(svc.RefreshPeriod),
		svc.RefreshTime.Format("2006-01-02 15:04"))
	return nil
}

func runServiceRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	index, err := resolveService(store, args[0])
	if err != nil {
		return err
	}
	name := store.ListServices()[index].Name

	if err := store.RemoveService(cmd.Context(), index); err != nil {
		return fmt.Errorf("remove service: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Service %q removed.\n", name)
	return nil
}

func periodUnit(p tracker.RefreshPeriod) string {
	switch p {
	case tracker.PeriodWeekly:
		return "week"
	case tracker.PeriodMonthly:
		return "month"
	default:
		return "day"
	}
}
