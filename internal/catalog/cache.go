package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	snapshotKeyPrefix = "catalog:"
	defaultCacheTTL   = 5 * time.Minute
)

// Cache stores catalog snapshots. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, outletID uuid.UUID) (*Snapshot, error)
	Set(ctx context.Context, snap *Snapshot) error
	Delete(ctx context.Context, outletID uuid.UUID) error
}

// RedisCache keeps snapshots as JSON under catalog:<outlet id>.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache wraps a redis client. A zero ttl uses the default.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func snapshotKey(outletID uuid.UUID) string {
	return snapshotKeyPrefix + outletID.String()
}

func (c *RedisCache) Get(ctx context.Context, outletID uuid.UUID) (*Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey(outletID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *RedisCache) Set(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKey(snap.OutletID), data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, outletID uuid.UUID) error {
	return c.client.Del(ctx, snapshotKey(outletID)).Err()
}
