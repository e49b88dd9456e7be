// Package core defines the contract between the persistence gateway and the
// concrete document backends.
package core

//go:generate mockgen -source=types.go -destination=mocks/backend_mock.go -package=mocks Backend

import "context"

// Driver identifies a concrete document backend.
type Driver string

const (
	DriverFile     Driver = "file"     // local JSON file (default, dev)
	DriverSQLite   Driver = "sqlite"   // producao table in a SQLite file
	DriverPostgres Driver = "postgres" // producao table in Postgres
	DriverS3       Driver = "s3"       // single object in S3 / MinIO
	DriverRedis    Driver = "redis"    // single string key
	DriverMemory   Driver = "memory"   // in-process (tests)
)

// Backend stores exactly one opaque document. Write replaces the whole
// document; a concurrent Read sees either the previous or the new bytes,
// never a mix. Read returns sentinel.ErrNotFound while nothing was written.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, doc []byte) error
	Driver() Driver
}

// Closer is implemented by backends holding connections.
type Closer interface {
	Close() error
}
