package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed the sample services when none are tracked yet",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	out := cmd.OutOrStdout()
	n := store.SeedDefaults(cmd.Context())
	if n == 0 {
		fmt.Fprintf(out, "Services already configured; nothing seeded.\n")
		return nil
	}

	fmt.Fprintf(out, "Seeded %d services:\n", n)
	for _, s := range store.ListServices() {
		fmt.Fprintf(out, "  %s: %d per %s\n", s.Name, s.Limit, periodUnit(s.RefreshPeriod))
	}
	return nil
}
