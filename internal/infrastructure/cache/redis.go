package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tryon-bot/internal/domain/port"
)

// RedisStore кэш в redis с TTL. Ошибки redis не пробрасываются: промах или пропуск записи.
type RedisStore[V any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	codec  Codec[V]
	log    *zap.Logger
}

func NewRedisStore[V any](client *redis.Client, prefix string, ttl time.Duration, codec Codec[V], log *zap.Logger) *RedisStore[V] {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore[V]{client: client, prefix: prefix, ttl: ttl, codec: codec, log: log}
}

func (s *RedisStore[V]) Get(ctx context.Context, key string) (V, bool) {
	v, _, ok := s.GetWithTTL(ctx, key)
	return v, ok
}

// GetWithTTL значение и оставшееся время жизни ключа. ttl <= 0, если redis его не сообщил.
func (s *RedisStore[V]) GetWithTTL(ctx context.Context, key string) (V, time.Duration, bool) {
	var zero V
	pipe := s.client.Pipeline()
	get := pipe.Get(ctx, s.prefix+key)
	pttl := pipe.PTTL(ctx, s.prefix+key)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		s.log.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		return zero, 0, false
	}

	data, err := get.Bytes()
	if err != nil {
		return zero, 0, false
	}
	v, err := s.codec.Unmarshal(data)
	if err != nil {
		s.log.Error("failed to decode cached value", zap.String("key", key), zap.Error(err))
		return zero, 0, false
	}
	return v, pttl.Val(), true
}

func (s *RedisStore[V]) Set(ctx context.Context, key string, value V) {
	data, err := s.codec.Marshal(value)
	if err != nil {
		s.log.Error("failed to encode value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.client.Set(ctx, s.prefix+key, data, s.ttl).Err(); err != nil {
		s.log.Warn("redis set failed", zap.String("key", key), zap.Error(err))
	}
}

var _ port.Cache[int] = (*RedisStore[int])(nil)
