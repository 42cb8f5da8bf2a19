package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// retryInterval is how often Acquire re-attempts SET NX while waiting for
// a contended lock.  Coarse on purpose: the per-buyer locks see contention
// only when one buyer double-submits.
const retryInterval = 50 * time.Millisecond

// releaseScript deletes the lock key only when it still stores the
// caller's token.  Running the compare and the delete in one Lua script
// keeps the pair atomic, so a holder whose lease expired cannot delete a
// lock that Redis has since granted to another caller.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisLocker implements Locker on a shared Redis instance.  A lock is a
// key holding a random token with a PX expiry equal to the lease; the
// token identifies the holder across release and held checks.
type RedisLocker struct {
	rdb *redis.Client
}

// NewRedisLocker returns a RedisLocker bound to the given client.
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb}
}

// Acquire polls SET NX PX until the lock is granted or the wait window
// elapses.  The first attempt happens immediately so an uncontended lock
// costs one round trip.
func (l *RedisLocker) Acquire(ctx context.Context, key string, wait, lease time.Duration) (Lock, error) {
	token := uuid.NewString()
	deadline := time.Now().Add(wait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, lease).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return &redisLock{rdb: l.rdb, key: key, token: token}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// redisLock is a granted lock; the token proves ownership.
type redisLock struct {
	rdb   *redis.Client
	key   string
	token string
}

// Release removes the lock via the compare-and-delete script.  Releasing
// an expired or already-released lock is a no-op, never an error.
func (l *redisLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
}

// Held reports whether the key still stores this holder's token.
func (l *redisLock) Held(ctx context.Context) (bool, error) {
	v, err := l.rdb.Get(ctx, l.key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == l.token, nil
}
