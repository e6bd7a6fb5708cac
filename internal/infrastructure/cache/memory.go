package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"tryon-bot/internal/domain/port"
)

// MemoryStore локальный кэш процесса с TTL. Просроченные записи удаляет janitor go-cache.
type MemoryStore[V any] struct {
	c *gocache.Cache
}

func NewMemoryStore[V any](ttl, cleanup time.Duration) *MemoryStore[V] {
	return &MemoryStore[V]{c: gocache.New(ttl, cleanup)}
}

func (s *MemoryStore[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V
	v, ok := s.c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}

func (s *MemoryStore[V]) Set(_ context.Context, key string, value V) {
	s.c.Set(key, value, gocache.DefaultExpiration)
}

// SetWithTTL сохраняет значение со своим сроком жизни
func (s *MemoryStore[V]) SetWithTTL(_ context.Context, key string, value V, ttl time.Duration) {
	s.c.Set(key, value, ttl)
}

// Len количество записей, включая ещё не вычищенные просроченные
func (s *MemoryStore[V]) Len() int {
	return s.c.ItemCount()
}

var _ port.Cache[int] = (*MemoryStore[int])(nil)
