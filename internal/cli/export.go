package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export services, history and daily totals",
	Long: `Export the full tracker state as JSON or YAML, or write a printable text
report. Use --output - to write to stdout.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "json", "Export format (json, yaml, report)")
	exportCmd.Flags().StringP("output", "o", "", "Output file (default depends on format)")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = format.FileName()
	}

	store, backend, err := initStore(cmd, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	data := export.ReportData{
		GeneratedAt: store.Now(),
		Snapshot:    store.ExportSnapshot(cmd.Context()),
		Stats:       store.Stats(cmd.Context(), cfg.Tracker.AverageWindow),
		Trend:       store.Trend(cfg.Tracker.AverageWindow),
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := export.Write(w, format, data); err != nil {
		return err
	}

	if output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", format, output)
	}
	return nil
}
