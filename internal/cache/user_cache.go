// Package cache holds read-through caches in front of the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"governance/internal/notification"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const userKeyPrefix = "governance:user:"

// UserCache keeps resolved recipients in redis for a bounded time.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{client: client, ttl: ttl}
}

// NewRedisClient connects and pings.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Get returns the cached recipient; ok is false on a miss.
func (c *UserCache) Get(ctx context.Context, userID uuid.UUID) (notification.Recipient, bool, error) {
	raw, err := c.client.Get(ctx, userKeyPrefix+userID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return notification.Recipient{}, false, nil
	}
	if err != nil {
		return notification.Recipient{}, false, err
	}

	var r notification.Recipient
	if err := json.Unmarshal(raw, &r); err != nil {
		return notification.Recipient{}, false, fmt.Errorf("decode cached user %s: %w", userID, err)
	}
	return r, true, nil
}

func (c *UserCache) Set(ctx context.Context, r notification.Recipient) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userKeyPrefix+r.UserID.String(), data, c.ttl).Err()
}

func (c *UserCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, userKeyPrefix+userID.String()).Err()
}
