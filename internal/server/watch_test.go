package server_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/internal/server"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/storage"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/tracker"
)

func TestWatch_ReloadsOnFileChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.json")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	readerBackend, err := storage.NewJSONFile(path)
	require.NoError(t, err)
	reader := tracker.NewStore(t.Context(), readerBackend, logger)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- server.Watch(ctx, path, reader, logger) }()

	// Let the watcher register before writing.
	time.Sleep(50 * time.Millisecond)

	writerBackend, err := storage.NewJSONFile(path)
	require.NoError(t, err)
	writer := tracker.NewStore(t.Context(), writerBackend, logger)
	_, err = writer.AddService(t.Context(), "Perplexity", 50, tracker.PeriodDaily)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return len(reader.ListServices()) == 1
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := tracker.NewStore(t.Context(), nil, logger)

	err := server.Watch(t.Context(), filepath.Join(t.TempDir(), "nope", "usage.json"), store, logger)
	assert.Error(t, err)
}

func TestServer_WithoutRequestReload(t *testing.T) {
	backend := storage.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	reader := tracker.NewStore(t.Context(), backend, logger)
	srv := server.NewServer(reader, 0, logger, server.WithRequestReload(false))

	writer := tracker.NewStore(t.Context(), backend, logger)
	_, err := writer.AddService(t.Context(), "Grok", 20, tracker.PeriodDaily)
	require.NoError(t, err)

	w := get(t, srv, "/api/v1/services")
	assert.JSONEq(t, "[]", w.Body.String())
}
