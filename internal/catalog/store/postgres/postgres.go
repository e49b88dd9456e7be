// Package postgres stores the catalog document in Postgres. Each save inserts
// a row into the producao table; the newest row is the current document.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	"github.com/lib/pq"

	"baias/internal/catalog/store/core"
	"baias/pkg/platform/sentinel"
)

const (
	defaultDriver = "pgx"
	defaultTable  = "producao"

	codeUndefinedTable = "42P01"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Backend is a Postgres document store.
type Backend struct {
	db    *sql.DB
	table string
	clock func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithTable overrides the table name (tests use one table per case).
func WithTable(name string) Option {
	return func(b *Backend) {
		if name != "" {
			b.table = name
		}
	}
}

// WithClock overrides the created_at source.
func WithClock(clock func() time.Time) Option {
	return func(b *Backend) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// Open connects to dsn and ensures the document table exists.
func Open(ctx context.Context, dsn string, opts ...Option) (*Backend, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn required")
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	b := NewWithDB(db, opts...)
	if err := b.ensureTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

// NewWithDB wraps an existing connection pool without touching the schema.
func NewWithDB(db *sql.DB, opts ...Option) *Backend {
	b := &Backend{db: db, table: defaultTable, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// The document column is json rather than jsonb: jsonb normalizes key order
// and whitespace, and the catalog's member order is significant.
func (b *Backend) ensureTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id BIGSERIAL PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL,
		data_json JSON NOT NULL
	)`, pq.QuoteIdentifier(b.table))
	if _, err := b.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure %s table: %w", b.table, err)
	}
	return nil
}

func (b *Backend) Driver() core.Driver { return core.DriverPostgres }

func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	query := fmt.Sprintf(`SELECT data_json::text FROM %s ORDER BY id DESC LIMIT 1`, pq.QuoteIdentifier(b.table))
	var payload string
	err := b.db.QueryRowContext(ctx, query).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows), isUndefinedTable(err):
		return nil, sentinel.ErrNotFound
	case err != nil:
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

	query := fmt.Sprintf(`INSERT INTO %s (created_at, data_json) VALUES ($1, $2)`, pq.QuoteIdentifier(b.table))
	if _, err := tx.ExecContext(ctx, query, b.clock().UTC(), string(doc)); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (b *Backend) Close() error {
	return b.db.Close()
}

// DB exposes the pool for integration tests.
func (b *Backend) DB() *sql.DB { return b.db }

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUndefinedTable
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == codeUndefinedTable
	}
	return false
}
