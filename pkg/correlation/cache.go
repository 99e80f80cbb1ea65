// Package correlation maps outbound message ids back to the user they
// were sent to. Delivery events (acks, nacks) arrive after the outbound
// has already left the router, sometimes much later; the cache is the
// only way to recover the user, and with it the session and active
// endpoint, for such a late event.
package correlation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/vxgo/approuter/pkg/errors"
)

// ErrNotFound is returned by Get when no entry exists for a message id,
// either because it was never cached or because its TTL lapsed. An event
// that can no longer be correlated is dropped by the caller.
var ErrNotFound = errors.New("correlation entry not found")

// Cache is the message-id to user-id lookup used by the event path.
type Cache interface {
	// Put records that messageID was sent to userID.
	Put(ctx context.Context, messageID, userID string) error

	// Get returns the user a message was sent to, or ErrNotFound.
	Get(ctx context.Context, messageID string) (string, error)
}

// keyPrefix matches the wire contract shared with the original store.
const keyPrefix = "cache"

// RedisCache implements Cache on plain Redis strings with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache creates a cache with the given entry TTL (the
// message_expiry, two days by default).
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(messageID string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, messageID)
}

// Put records the outbound message's user with a fresh TTL.
func (c *RedisCache) Put(ctx context.Context, messageID, userID string) error {
	if err := c.client.Set(ctx, key(messageID), userID, c.ttl).Err(); err != nil {
		return apperrors.NewCorrelationError("failed to cache message user", err)
	}
	return nil
}

// Get returns the user id for a message, or ErrNotFound when the entry
// is absent or expired.
func (c *RedisCache) Get(ctx context.Context, messageID string) (string, error) {
	userID, err := c.client.Get(ctx, key(messageID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", apperrors.NewCorrelationError("failed to look up message user", err)
	}
	return userID, nil
}

// Compile-time interface compliance check
var _ Cache = (*RedisCache)(nil)
