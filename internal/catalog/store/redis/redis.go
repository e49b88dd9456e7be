// Package redis stores the catalog document under a single Redis key.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"baias/internal/catalog/store/core"
	"baias/pkg/platform/sentinel"
)

const defaultKey = "baias:catalog"

// Backend is a Redis document store. SET replaces the value atomically.
type Backend struct {
	client redis.UniversalClient
	key    string
}

// New wraps client; key defaults to "baias:catalog".
func New(client redis.UniversalClient, key string) *Backend {
	if key == "" {
		key = defaultKey
	}
	return &Backend{client: client, key: key}
}

func (b *Backend) Driver() core.Driver { return core.DriverRedis }

func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", b.key, err)
	}
	return data, nil
}

func (b *Backend) Write(ctx context.Context, doc []byte) error {
	if err := b.client.Set(ctx, b.key, doc, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", b.key, err)
	}
	return nil
}
