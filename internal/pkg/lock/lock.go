// Package lock serialises writes that touch the same booking across API
// instances. It narrows the race window in front of the database
// transaction; the transaction stays the authority.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"rentaldesk/internal/domain"
)

type Locker interface {
	// Obtain takes the named lock or fails with domain.ErrLockNotObtained.
	// The returned func releases it.
	Obtain(ctx context.Context, key string) (func(), error)
}

// Nop grants every lock immediately. Used when no redis is configured.
type Nop struct{}

func (Nop) Obtain(context.Context, string) (func(), error) {
	return func() {}, nil
}

type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewRedis(rdb *redis.Client, ttl, wait time.Duration) *Redis {
	return &Redis{client: redislock.New(rdb), ttl: ttl, wait: wait}
}

func (r *Redis) Obtain(ctx context.Context, key string) (func(), error) {
	retries := int(r.wait / (50 * time.Millisecond))
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), retries),
	}
	l, err := r.client.Obtain(ctx, key, r.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func() {
		// The lock may already have expired; releasing is best effort.
		_ = l.Release(context.Background())
	}, nil
}

// Connect pings redis at addr and returns a Redis locker on success.
func Connect(ctx context.Context, addr string) (*Redis, *redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return NewRedis(rdb, 10*time.Second, 2*time.Second), rdb, nil
}

func BookingKey(bookingID int64) string {
	return fmt.Sprintf("rentaldesk:booking:%d:payments", bookingID)
}
