package otp

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each record in a hash that expires natively some time
// after the code itself.
type RedisStore struct {
	Client redis.UniversalClient
	Prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{Client: client, Prefix: prefix}
}

const (
	fieldCode      = "code"
	fieldExpiresAt = "expires_at"
	fieldAttempts  = "attempts"
)

var incrAttemptsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

var compareAndDeleteScript = redis.NewScript(`
if redis.call("HGET", KEYS[1], "code") == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *RedisStore) key(identity string) string {
	return s.Prefix + "otp:" + identity
}

func (s *RedisStore) Get(ctx context.Context, identity string) (Record, bool, error) {
	m, err := s.Client.HGetAll(ctx, s.key(identity)).Result()
	if err != nil {
		return Record{}, false, err
	}
	if len(m) == 0 {
		return Record{}, false, nil
	}
	ms, err := strconv.ParseInt(m[fieldExpiresAt], 10, 64)
	if err != nil {
		return Record{}, false, errors.New("redis otp record: bad expires_at")
	}
	attempts, _ := strconv.Atoi(m[fieldAttempts])
	return Record{
		Identity:  identity,
		Code:      m[fieldCode],
		ExpiresAt: time.UnixMilli(ms).UTC(),
		Attempts:  attempts,
	}, true, nil
}

func (s *RedisStore) Put(ctx context.Context, rec Record) error {
	k := s.key(rec.Identity)
	_, err := s.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, k)
		p.HSet(ctx, k,
			fieldCode, rec.Code,
			fieldExpiresAt, rec.ExpiresAt.UnixMilli(),
			fieldAttempts, rec.Attempts,
		)
		p.PExpireAt(ctx, k, rec.ExpiresAt.Add(retention))
		return nil
	})
	return err
}

func (s *RedisStore) Delete(ctx context.Context, identity string) error {
	return s.Client.Del(ctx, s.key(identity)).Err()
}

func (s *RedisStore) IncrAttempts(ctx context.Context, identity string) (int, bool, error) {
	n, err := incrAttemptsScript.Run(ctx, s.Client, []string{s.key(identity)}).Int()
	if err != nil {
		return 0, false, err
	}
	if n < 0 {
		return 0, false, nil
	}
	return n, true, nil
}

func (s *RedisStore) CompareAndDelete(ctx context.Context, identity, code string) (bool, error) {
	n, err := compareAndDeleteScript.Run(ctx, s.Client, []string{s.key(identity)}, code).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
