package keystore

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

// RedisStore shares denylist and counters between instances.
type RedisStore struct {
	client rueidis.Client
}

func NewRedisStore(client rueidis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	cmd := r.client.B().Set().Key(revokedPrefix + tokenID).Value("1").ExSeconds(seconds(ttl)).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	cmd := r.client.B().Exists().Key(revokedPrefix + tokenID).Build()
	n, err := r.client.Do(ctx, cmd).AsInt64()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	key = counterPrefix + key

	n, err := r.client.Do(ctx, r.client.B().Incr().Key(key).Build()).AsInt64()
	if err != nil {
		return 0, err
	}

	if n == 1 {
		cmd := r.client.B().Expire().Key(key).Seconds(seconds(window)).Build()
		if err := r.client.Do(ctx, cmd).Error(); err != nil {
			return 0, err
		}
	}

	return n, nil
}

func seconds(d time.Duration) int64 {
	s := int64(d / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
