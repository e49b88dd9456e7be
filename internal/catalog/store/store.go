// Package store selects the catalog document backend from configuration.
package store

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"baias/internal/catalog/store/core"
	"baias/internal/catalog/store/file"
	"baias/internal/catalog/store/memory"
	"baias/internal/catalog/store/postgres"
	"baias/internal/catalog/store/redis"
	"baias/internal/catalog/store/s3"
	"baias/internal/catalog/store/sqlite"
	"baias/internal/platform/config"
)

// ErrRedisRequired is returned when driver=redis but no client was configured.
var ErrRedisRequired = errors.New("redis driver requires BAIAS_REDIS_URL")

// Open returns the backend named by cfg.Driver (default file). rdb may be
// nil unless the redis driver is selected.
func Open(ctx context.Context, cfg config.StoreConfig, rdb goredis.UniversalClient) (core.Backend, error) {
	driver := core.Driver(cfg.Driver)
	if driver == "" {
		driver = core.DriverFile
	}
	switch driver {
	case core.DriverFile:
		return file.New(cfg.DataFile)
	case core.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath)
	case core.DriverPostgres:
		return postgres.Open(ctx, cfg.PostgresDSN)
	case core.DriverS3:
		return s3.New(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Key:             cfg.S3.Key,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
		})
	case core.DriverRedis:
		if rdb == nil {
			return nil, ErrRedisRequired
		}
		return redis.New(rdb, cfg.RedisKey), nil
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Close releases backend connections, if any.
func Close(b core.Backend) error {
	if c, ok := b.(core.Closer); ok {
		return c.Close()
	}
	return nil
}
