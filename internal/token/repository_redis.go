package token

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "storefront:session:"

// RedisRepository implements SessionRepository with one string key per session.
type RedisRepository struct {
	rdb redis.Cmdable
}

func NewRedisRepository(rdb redis.Cmdable) *RedisRepository {
	return &RedisRepository{rdb: rdb}
}

func (r *RedisRepository) Get(ctx context.Context, sid string) (string, error) {
	v, err := r.rdb.Get(ctx, redisKeyPrefix+sid).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (r *RedisRepository) Put(ctx context.Context, sid, token string, ttl time.Duration) error {
	return r.rdb.Set(ctx, redisKeyPrefix+sid, token, ttl).Err()
}

func (r *RedisRepository) Delete(ctx context.Context, sid string) error {
	n, err := r.rdb.Del(ctx, redisKeyPrefix+sid).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
