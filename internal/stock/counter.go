// Package stock provides the fast stock counter: a single shared integer
// approximating the number of unsold tickets.  The counter is an admission
// gate in front of the database, not the source of truth; the durable
// unsold count is authoritative and the counter is reconciled against it
// by the inventory initializer.  All incremental mutation goes through
// Add so that a decrement and its undo use the same atomic primitive.
package stock

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Counter is the shared atomic integer consumed by the purchase
// orchestrator.  Implementations must make Add a single atomic
// read-modify-write; callers never read-then-write.
type Counter interface {
	// Get returns the current counter value.  A missing counter reads as
	// zero so that a cold store rejects purchases instead of overselling.
	Get(ctx context.Context) (int64, error)
	// Add atomically applies delta and returns the post-delta value.
	Add(ctx context.Context, delta int64) (int64, error)
	// Set overwrites the counter.  Only the inventory initializer calls
	// Set; everything else adjusts incrementally via Add.
	Set(ctx context.Context, value int64) error
}

// RedisCounter stores the counter under a single Redis key shared by all
// service instances, so multiple processes enforce one global inventory.
type RedisCounter struct {
	rdb *redis.Client
	key string
}

// NewRedisCounter returns a RedisCounter bound to the given client and key.
func NewRedisCounter(rdb *redis.Client, key string) *RedisCounter {
	return &RedisCounter{rdb: rdb, key: key}
}

// Get reads the counter.  An absent key is reported as zero.
func (c *RedisCounter) Get(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, c.key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

// Add applies delta with INCRBY and returns the resulting value.  INCRBY
// is atomic server-side, which makes the decrement-then-undo admission
// pattern safe under concurrent callers.
func (c *RedisCounter) Add(ctx context.Context, delta int64) (int64, error) {
	return c.rdb.IncrBy(ctx, c.key, delta).Result()
}

// Set overwrites the counter value.
func (c *RedisCounter) Set(ctx context.Context, value int64) error {
	return c.rdb.Set(ctx, c.key, value, 0).Err()
}
