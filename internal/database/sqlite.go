package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "error creating directory for sqlite file: %s", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening sqlite file: %s", path)
	}
	// One connection serializes writers, which keeps Update atomic and lets
	// an in-memory database live as long as the pool.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err = s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`)
	return errors.Wrap(err, "error migrating sqlite schema")
}

func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, errors.Wrapf(err, "error getting key: %s", key)
}

func (s *SQLite) Set(ctx context.Context, key string, value string) error {
	return errors.Wrapf(upsert(ctx, s.db, key, value), "error setting key: %s", key)
}

func (s *SQLite) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, k); err != nil {
			return errors.Wrapf(err, "error deleting key: %s", k)
		}
	}
	return nil
}

func (s *SQLite) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrapf(err, "error starting transaction for key: %s", key)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var cur string
	exists := true
	err = tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&cur)
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return errors.Wrapf(err, "error reading key for update: %s", key)
	}

	next, err := fn(cur, exists)
	if err != nil {
		return finishUpdate(err)
	}
	if err = upsert(ctx, tx, key, next); err != nil {
		return errors.Wrapf(err, "error writing key for update: %s", key)
	}
	return errors.Wrapf(tx.Commit(), "error committing update for key: %s", key)
}

func (s *SQLite) Close(context.Context) error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsert(ctx context.Context, e execer, key string, value string) error {
	_, err := e.ExecContext(ctx, `
INSERT INTO kv(key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}
