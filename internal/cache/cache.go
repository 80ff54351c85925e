// Package cache keeps the most recently assembled snapshot in Redis so
// repeated requests inside the TTL skip the provider queries.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/claude/vitalsnap/internal/models"
)

const snapshotKey = "vitalsnap:snapshot:latest"

// Cache is a TTL cache over a Redis client. A nil *Cache is valid and
// behaves as a cache that never hits, so callers need no config check.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *slog.Logger
}

// New connects to Redis at addr. Returns an error if the server does not
// answer a ping.
func New(ctx context.Context, addr, password string, db int, ttl time.Duration, log *slog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Cache{client: client, ttl: ttl, log: log}, nil
}

// GetSnapshot returns the cached snapshot, or nil on miss. Redis errors are
// logged and treated as misses.
func (c *Cache) GetSnapshot(ctx context.Context) *models.Snapshot {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, snapshotKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("snapshot cache read failed", "error", err)
		}
		return nil
	}
	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		c.log.Warn("snapshot cache entry corrupt, dropping", "error", err)
		c.client.Del(ctx, snapshotKey)
		return nil
	}
	return &snap
}

// PutSnapshot stores the snapshot under the cache TTL. Failures are logged,
// never returned; the snapshot was already assembled.
func (c *Cache) PutSnapshot(ctx context.Context, snap *models.Snapshot) {
	if c == nil || snap == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		c.log.Warn("snapshot cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, snapshotKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("snapshot cache write failed", "error", err)
	}
}

// Invalidate drops the cached snapshot. Called after ingest so fresh data
// shows up on the next request.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, snapshotKey).Err(); err != nil {
		c.log.Warn("snapshot cache invalidate failed", "error", err)
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
