package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/internal/server"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local read-only dashboard API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Listen address (default from config)")
	serveCmd.Flags().Bool("watch", true, "Reload when the storage file changes instead of on every request")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	listen, _ := cmd.Flags().GetString("listen")
	if listen != "" {
		cfg.Server.Listen = listen
	}
	if cmd.Flags().Changed("watch") {
		cfg.Server.Watch, _ = cmd.Flags().GetBool("watch")
	}
	watch := cfg.Server.Watch && cfg.Storage.Driver != "memory"

	logger := newLogger(cfg)

	// The API only reads; rollovers stay in memory so a stale view never
	// overwrites what `aut log` saved.
	store, backend, err := initStore(cmd, cfg, tracker.WithReadOnly())
	if err != nil {
		return err
	}
	defer backend.Close()

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	if watch {
		go func() {
			if err := server.Watch(ctx, cfg.Storage.Path, store, logger); err != nil {
				logger.Error("storage watcher stopped", "error", err)
			}
		}()
	}

	apiServer := server.NewServer(store, cfg.Tracker.AverageWindow, logger,
		server.WithRequestReload(!watch),
	)

	readTimeout, _ := time.ParseDuration(cfg.Server.ReadTimeout)
	if readTimeout == 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout, _ := time.ParseDuration(cfg.Server.WriteTimeout)
	if writeTimeout == 0 {
		writeTimeout = 30 * time.Second
	}

	srv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      apiServer.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "listen", cfg.Server.Listen, "storage", cfg.Storage.Driver)
		fmt.Fprintf(os.Stderr, "AI Usage Tracker listening on http://%s\n", cfg.Server.Listen)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}
