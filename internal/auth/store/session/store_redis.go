package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"baias/internal/auth/models"
	"baias/pkg/platform/sentinel"
)

const keyPrefix = "baias:session:"

// RedisStore keeps sessions in Redis so they survive restarts and are shared
// between server replicas. Redis expires keys at the session's ExpiresAt.
type RedisStore struct {
	client redis.UniversalClient
	clock  func() time.Time
}

// NewRedis wraps client.
func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, clock: time.Now}
}

func sessionKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// Save writes the session with a TTL matching its remaining lifetime.
func (s *RedisStore) Save(ctx context.Context, session *models.Session) error {
	ttl := session.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		return s.Delete(ctx, session.ID)
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// FindByID returns the session or sentinel.ErrNotFound.
func (s *RedisStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.Expired(s.clock()) {
		return nil, sentinel.ErrNotFound
	}
	return &session, nil
}

// Delete removes the session key.
func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
