package lock

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrLockFailed = errors.New("failed to acquire distributed lock")

// DistributedLock is a Redis SET NX EX lock. The value identifies the
// holder; release verifies it via a Lua script so an expired holder cannot
// delete a lock someone else has since acquired.
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock attempts to take the lock without blocking. SetNX succeeds only
// when the key does not exist; the expiration bounds how long a crashed
// holder can block others.
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock blocks with retries until the lock is acquired, the retry budget is
// spent, or the context is cancelled.
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock releases the lock. The check-and-delete runs as one Lua script;
// the key is deleted only if the value still identifies this holder.
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// RedisLocker serializes webhook operations per gateway transaction id.
// The lock token is a fresh UUID per acquisition, so concurrent deliveries
// of the same transaction id queue up behind each other while different
// transaction ids proceed independently.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) WithLock(ctx context.Context, key string, fn func() error) error {
	dl := NewDistributedLock(l.client, key, uuid.NewString(), 30*time.Second)
	if err := dl.Lock(ctx, 100*time.Millisecond, 30); err != nil {
		return err
	}
	defer dl.Unlock(ctx)

	return fn()
}
