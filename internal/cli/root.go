package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/internal/config"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/alerts"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/storage"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/tracker"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "aut",
	Short: "AI Usage Tracker - per-service quota accounting for AI assistants",
	Long: `AI Usage Tracker keeps count of how many requests you spend on each AI
service against its daily, weekly or monthly quota. Quotas reset lazily at the
next midnight boundary, every entry is kept in a usage history, and stats,
insights and exports are computed from the recorded totals.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.aut/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemory(), nil
	case "file":
		return storage.NewJSONFile(cfg.Storage.Path)
	default:
		return storage.NewSQLite(cfg.Storage.Path)
	}
}

// initNotifiers creates alert notifiers from config.
func initNotifiers(cfg *config.Config) []alerts.Notifier {
	var notifiers []alerts.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alerts.NewSlackNotifier(
			cfg.Alerts.Slack.WebhookURL,
			cfg.Alerts.Slack.Channel,
		))
	}

	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alerts.NewWebhookNotifier(
			cfg.Alerts.Webhook.URL,
			cfg.Alerts.Webhook.Secret,
		))
	}

	if cfg.Alerts.Desktop.Enabled {
		notifiers = append(notifiers, alerts.NewDesktopNotifier())
	}

	return notifiers
}

// initStore creates a fully wired usage store. The caller closes the backend.
func initStore(cmd *cobra.Command, cfg *config.Config, extra ...tracker.Option) (*tracker.Store, storage.Storage, error) {
	logger := newLogger(cfg)

	loc, err := cfg.Tracker.Location()
	if err != nil {
		return nil, nil, err
	}

	backend, err := initStorage(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	opts := append([]tracker.Option{
		tracker.WithLocation(loc),
		tracker.WithRequireDescription(cfg.Tracker.RequireDescription),
		tracker.WithAlertThreshold(cfg.Tracker.AlertThresholdPct),
		tracker.WithNotifiers(initNotifiers(cfg)...),
	}, extra...)
	store := tracker.NewStore(cmd.Context(), backend, logger, opts...)
	return store, backend, nil
}

// resolveService maps a service name or a numeric index to its position.
func resolveService(store *tracker.Store, ref string) (int, error) {
	services := store.ListServices()
	if i, err := strconv.Atoi(ref); err == nil {
		if i < 0 || i >= len(services) {
			return 0, &model.ValidationError{Field: "service", Reason: fmt.Sprintf("no service at index %d", i)}
		}
		return i, nil
	}
	for i, s := range services {
		if strings.EqualFold(s.Name, strings.TrimSpace(ref)) {
			return i, nil
		}
	}
	return 0, &model.ValidationError{Field: "service", Reason: fmt.Sprintf("no service named %q", ref)}
}
