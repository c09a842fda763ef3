package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DayLock guarantees a job runs once per key across instances.
type DayLock interface {
	// Acquire reports true when the caller now owns key for ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release drops key so another run can claim it.
	Release(ctx context.Context, key string) error
}

// LockClient is the narrow slice of the go-redis client RedisLock needs.
type LockClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisLock implements DayLock with SET NX. Successful runs keep their key
// until ttl expires so the day is not reconciled twice.
type RedisLock struct {
	client LockClient
	prefix string
	owner  string
}

// DefaultLockPrefix namespaces lock keys.
const DefaultLockPrefix = "go-attendance:lock:"

// NewRedisLock wraps client. owner is stored as the key value to make it
// obvious which instance ran a job.
func NewRedisLock(client LockClient, prefix, owner string) *RedisLock {
	if prefix == "" {
		prefix = DefaultLockPrefix
	}
	if strings.TrimSpace(owner) == "" {
		owner = "go-attendance"
	}
	return &RedisLock{client: client, prefix: prefix, owner: owner}
}

var _ DayLock = (*RedisLock)(nil)

// Acquire implements DayLock.
func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if l == nil || l.client == nil {
		return false, errors.New("go-attendance: redis lock not configured")
	}
	return l.client.SetNX(ctx, l.prefix+key, l.owner, ttl).Result()
}

// Release implements DayLock.
func (l *RedisLock) Release(ctx context.Context, key string) error {
	if l == nil || l.client == nil {
		return errors.New("go-attendance: redis lock not configured")
	}
	return l.client.Del(ctx, l.prefix+key).Err()
}

// NewRedisClient builds a go-redis client from a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}
