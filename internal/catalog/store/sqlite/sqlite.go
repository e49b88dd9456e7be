// Package sqlite stores the catalog document in a SQLite database. Every save
// appends a row to the producao table and the newest row is the current
// document, which keeps a cheap history of past saves.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"baias/internal/catalog/store/core"
	"baias/pkg/platform/sentinel"
)

const schema = `CREATE TABLE IF NOT EXISTS producao (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	data_json TEXT NOT NULL
)`

// Backend is a SQLite document store.
type Backend struct {
	db    *sql.DB
	clock func() time.Time
	keep  int
}

// Option configures a Backend.
type Option func(*Backend)

// WithClock overrides the timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(b *Backend) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// WithHistory bounds the number of rows kept. Zero keeps every save.
func WithHistory(n int) Option {
	return func(b *Backend) {
		if n >= 0 {
			b.keep = n
		}
	}
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Backend, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create producao table: %w", err)
	}
	b := &Backend{db: db, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

func (b *Backend) Driver() core.Driver { return core.DriverSQLite }

func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	var payload string
	err := b.db.QueryRowContext(ctx, `SELECT data_json FROM producao ORDER BY id DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select latest document: %w", err)
	}
	return []byte(payload), nil
}

func (b *Backend) Write(ctx context.Context, doc []byte) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ts := b.clock().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `INSERT INTO producao (timestamp, data_json) VALUES (?, ?)`, ts, string(doc)); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	if b.keep > 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM producao WHERE id NOT IN (SELECT id FROM producao ORDER BY id DESC LIMIT ?)`, b.keep); err != nil {
			return fmt.Errorf("prune history: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Revisions returns how many saves are retained.
func (b *Backend) Revisions(ctx context.Context) (int, error) {
	var n int
	if err := b.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM producao`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count revisions: %w", err)
	}
	return n, nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}
