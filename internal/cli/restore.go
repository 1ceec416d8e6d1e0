package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/storage"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the current state with the snapshot saved before the last change",
	Long: `Every save keeps the previous snapshot as a backup. restore swaps the two,
so running it twice returns to where you started. Requires the sqlite driver.`,
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
}

type restorer interface {
	Restore(ctx context.Context) (*model.Snapshot, error)
}

func runRestore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend, err := initStorage(cfg)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	defer backend.Close()

	r, ok := backend.(restorer)
	if !ok {
		return fmt.Errorf("restore needs the sqlite storage driver, got %q", cfg.Storage.Driver)
	}

	snap, err := r.Restore(cmd.Context())
	if errors.Is(err, storage.ErrNoBackup) {
		return fmt.Errorf("nothing to restore: %w", err)
	}
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Restored %d service(s) and %d history entries.\n",
		len(snap.Services), len(snap.History))
	return nil
}
