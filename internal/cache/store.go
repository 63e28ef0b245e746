// Package cache provides small TTL key/value stores shared by the rate
// limiter and other short-lived state.
package cache

import (
	"context"
	"time"
)

type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Incr adds one to the counter at key and returns the new value. The ttl
	// is applied only when the counter is created.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	// TTL reports the remaining lifetime of key, or zero when it has none.
	TTL(ctx context.Context, key string) (time.Duration, error)
}
