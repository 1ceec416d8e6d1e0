package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"
	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/storage"
)

func newTestDB(t *testing.T) *storage.SQLite {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSnapshot() *model.Snapshot {
	snap := model.NewSnapshot()
	snap.Services = append(snap.Services, model.Service{
		Name:          "Claude",
		Limit:         30,
		RefreshPeriod: model.PeriodDaily,
		RefreshTime:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		CurrentUsage:  5,
	})
	snap.History = append(snap.History, model.UsageEvent{
		ID:          "evt-1",
		Service:     "Claude",
		Amount:      5,
		Description: "test",
		Timestamp:   time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	})
	snap.DailyStats["2024-01-01"] = 5
	return snap
}

func TestSQLite_LoadEmpty(t *testing.T) {
	db := newTestDB(t)

	snap, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Services)
	assert.Empty(t, snap.History)
	assert.Empty(t, snap.DailyStats)
	assert.Equal(t, model.SnapshotVersion, snap.Version)
}

func TestSQLite_SaveLoad(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Save(ctx, sampleSnapshot()))

	got, err := db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Services, 1)
	assert.Equal(t, "Claude", got.Services[0].Name)
	assert.Equal(t, int64(5), got.Services[0].CurrentUsage)
	assert.True(t, got.Services[0].RefreshTime.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.Len(t, got.History, 1)
	assert.Equal(t, "evt-1", got.History[0].ID)
	assert.Equal(t, int64(5), got.DailyStats["2024-01-01"])
}

func TestSQLite_SaveOverwritesAndKeepsBackup(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := sampleSnapshot()
	require.NoError(t, db.Save(ctx, first))

	_, err := db.Backup(ctx)
	assert.Error(t, err)

	second := sampleSnapshot()
	second.Services[0].CurrentUsage = 9
	require.NoError(t, db.Save(ctx, second))

	got, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Services[0].CurrentUsage)

	backup, err := db.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), backup.Services[0].CurrentUsage)
}

func TestSQLite_MalformedDocument(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Put(ctx, "snapshot", `{"services":[{"name":""}]}`))

	_, err := db.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedSnapshot))
}

func TestSQLite_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	ctx := context.Background()

	db, err := storage.NewSQLite(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Save(ctx, sampleSnapshot()))
	require.NoError(t, db.Close())

	db, err = storage.NewSQLite(dbPath)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Services, 1)
}

func TestJSONFile_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "tracker.json")
	f, err := storage.NewJSONFile(path)
	require.NoError(t, err)
	ctx := context.Background()

	empty, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Services)

	require.NoError(t, f.Save(ctx, sampleSnapshot()))
	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Services, 1)
	assert.Equal(t, path, f.Path())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestJSONFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	f, err := storage.NewJSONFile(path)
	require.NoError(t, err)

	_, err = f.Load(context.Background())
	assert.True(t, errors.Is(err, model.ErrMalformedSnapshot))
}

func TestMemory(t *testing.T) {
	m := storage.NewMemory()
	ctx := context.Background()

	snap := sampleSnapshot()
	require.NoError(t, m.Save(ctx, snap))
	assert.Equal(t, 1, m.Saves())

	snap.Services[0].CurrentUsage = 99
	got, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Services[0].CurrentUsage)

	m.FailWith(errors.New("disk full"))
	assert.Error(t, m.Save(ctx, snap))
	assert.Equal(t, 1, m.Saves())
}

func TestSQLite_Restore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Restore(ctx)
	assert.ErrorIs(t, err, storage.ErrNoBackup)

	require.NoError(t, db.Save(ctx, sampleSnapshot()))
	second := sampleSnapshot()
	second.Services[0].CurrentUsage = 12
	require.NoError(t, db.Save(ctx, second))

	restored, err := db.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), restored.Services[0].CurrentUsage)

	current, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), current.Services[0].CurrentUsage)

	// The replaced snapshot is kept, so restoring again undoes the restore.
	undone, err := db.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), undone.Services[0].CurrentUsage)
}
