package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ogulcanaydogan/AI-Usage-Tracker/pkg/model"

	_ "modernc.org/sqlite"
)

const snapshotKey = "snapshot"

// ErrNoBackup is returned when no earlier snapshot has been kept.
var ErrNoBackup = errors.New("no backup snapshot")

// SQLite implements Storage as a key/value document table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates an SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Load(ctx context.Context) (*model.Snapshot, error) {
	value, err := s.Get(ctx, snapshotKey)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewSnapshot(), nil
	}
	if err != nil {
		return nil, err
	}
	return model.DecodeSnapshot([]byte(value))
}

func (s *SQLite) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := model.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}

	if err := backupTx(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := putTx(ctx, tx, snapshotKey, string(data)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Get returns the raw value stored under key, or sql.ErrNoRows.
func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

// Put stores a raw value under key.
func (s *SQLite) Put(ctx context.Context, key, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	if err := putTx(ctx, tx, key, value); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// backupTx copies the current snapshot into kv_backup.
func backupTx(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO kv_backup (key, value, saved_at)
		 SELECT key, value, ? FROM kv_store WHERE key = ?
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, saved_at = excluded.saved_at`,
		time.Now().UTC(), snapshotKey,
	)
	if err != nil {
		return fmt.Errorf("backup snapshot: %w", err)
	}
	return nil
}

func putTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Backup returns the snapshot that preceded the last save, if any.
func (s *SQLite) Backup(ctx context.Context) (*model.Snapshot, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_backup WHERE key = ?`, snapshotKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	return model.DecodeSnapshot([]byte(value))
}

// Restore makes the backup the current snapshot. The replaced snapshot becomes
// the new backup, so a second Restore undoes the first.
func (s *SQLite) Restore(ctx context.Context) (*model.Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin restore: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var value string
	err = tx.QueryRowContext(ctx, `SELECT value FROM kv_backup WHERE key = ?`, snapshotKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNoBackup
	}
	if err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}

	snap, err := model.DecodeSnapshot([]byte(value))
	if err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}

	if err := backupTx(ctx, tx); err != nil {
		return nil, err
	}
	if err := putTx(ctx, tx, snapshotKey, value); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit restore: %w", err)
	}
	return snap, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
