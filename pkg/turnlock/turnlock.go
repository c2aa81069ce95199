package turnlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTurnInFlight means another turn for the same chat is still running.
var ErrTurnInFlight = errors.New("a turn for this chat is already in flight")

// Locker serializes turns per chat session. Acquire returns a release
// function; when the same key is acquired twice before release it fails with
// ErrTurnInFlight.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// RedisLocker implements Locker with SETNX and a TTL so a crashed worker
// cannot wedge a chat forever.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &RedisLocker{
		rdb: rdb,
		ttl: ttl,
	}
}

var _ Locker = &RedisLocker{}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "turnlock:" + key
	ok, err := l.rdb.SetNX(ctx, lockKey, "1", l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire turn lock: %w", err)
	}
	if !ok {
		return nil, ErrTurnInFlight
	}
	release := func() {
		// Best effort; the TTL covers a failed delete.
		l.rdb.Del(context.Background(), lockKey)
	}
	return release, nil
}
