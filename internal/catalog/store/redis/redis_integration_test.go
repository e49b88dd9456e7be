//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"baias/internal/catalog/store/core"
	"baias/pkg/platform/sentinel"
	"baias/pkg/testutil/containers"
)

// RedisBackendSuite runs the document backend against a real Redis.
type RedisBackendSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	b     *Backend
}

func TestRedisBackendSuite(t *testing.T) {
	suite.Run(t, new(RedisBackendSuite))
}

func (s *RedisBackendSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.b = New(s.redis.Client, "")
}

func (s *RedisBackendSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBackendSuite) TestMissingKey() {
	_, err := s.b.Read(context.Background())
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Equal(core.DriverRedis, s.b.Driver())
}

func (s *RedisBackendSuite) TestWriteReplaces() {
	ctx := context.Background()
	s.Require().NoError(s.b.Write(ctx, []byte(`{"v":1}`)))
	s.Require().NoError(s.b.Write(ctx, []byte(`{"v":2}`)))

	got, err := s.b.Read(ctx)
	s.Require().NoError(err)
	s.Equal(`{"v":2}`, string(got))
}

func (s *RedisBackendSuite) TestKeyHasNoExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.b.Write(ctx, []byte(`{}`)))
	ttl, err := s.redis.Client.TTL(ctx, defaultKey).Result()
	s.Require().NoError(err)
	// -1 means the key exists without an expiry.
	s.Equal(time.Duration(-1), ttl)
}
