package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vxgo/approuter/pkg/errors"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// RedisStore implements the Store interface on a Redis hash per user.
// Keys are namespaced by a fixed worker prefix so several routers can
// share one Redis without stepping on each other's dialogs.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store on a pre-configured client. The worker
// shares one client between the session store and the correlation
// cache; tests pass a client backed by miniredis.
func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Close closes the Redis client connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks Redis connectivity (health check).
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) key(userID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, userID)
}

// Load retrieves the session hash for a user. An empty hash (the key
// does not exist, or holds nothing) is reported as no session.
func (s *RedisStore) Load(ctx context.Context, userID string) (*Session, error) {
	fields, err := s.client.HGetAll(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, errors.NewSessionStoreError("failed to load session", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	sess, err := FromFields(fields)
	if err != nil {
		return nil, errors.NewSessionStoreError(fmt.Sprintf("corrupt session for %s", userID), err)
	}
	return sess, nil
}

// Create stamps CreatedAt and writes the session with a fresh TTL.
func (s *RedisStore) Create(ctx context.Context, userID string, sess *Session) error {
	sess.CreatedAt = time.Now().UTC()
	return s.write(ctx, userID, sess)
}

// Save overwrites the session and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, userID string, sess *Session) error {
	return s.write(ctx, userID, sess)
}

func (s *RedisStore) write(ctx context.Context, userID string, sess *Session) error {
	fields, err := sess.Fields()
	if err != nil {
		return err
	}

	key := s.key(userID)
	// Delete-then-set inside a pipeline so fields removed from the
	// session (active_endpoint after a restart) don't survive in the hash.
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewSessionStoreError("failed to save session", err)
	}
	return nil
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return errors.NewSessionStoreError("failed to clear session", err)
	}
	return nil
}

// Compile-time interface compliance check
var _ Store = (*RedisStore)(nil)
