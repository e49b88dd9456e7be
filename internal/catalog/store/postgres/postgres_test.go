package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUndefinedTable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"pgx undefined table", &pgconn.PgError{Code: "42P01"}, true},
		{"wrapped pgx error", fmt.Errorf("select: %w", &pgconn.PgError{Code: "42P01"}), true},
		{"lib/pq undefined table", &pq.Error{Code: "42P01"}, true},
		{"other pg error", &pgconn.PgError{Code: "23505"}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUndefinedTable(tt.err))
		})
	}
}

func TestOpen(t *testing.T) {
	t.Run("empty dsn is rejected", func(t *testing.T) {
		_, err := Open(t.Context(), "")
		assert.Error(t, err)
	})

	t.Run("open failure is wrapped", func(t *testing.T) {
		orig := sqlOpen
		t.Cleanup(func() { sqlOpen = orig })
		sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("driver missing") }

		_, err := Open(t.Context(), "postgres://localhost/baias")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open postgres")
	})
}

func TestNewWithDBDefaults(t *testing.T) {
	b := NewWithDB(nil, WithTable(""), WithClock(nil))
	assert.Equal(t, defaultTable, b.table)
	assert.NotNil(t, b.clock)
}
