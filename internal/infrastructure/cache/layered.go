package cache

import (
	"context"
	"time"

	"tryon-bot/internal/domain/port"
)

// Layered локальный кэш перед общим: промах в L1 читает L2 и заполняет L1.
// Запись в L1 живёт не дольше, чем осталось жить ключу в L2.
type Layered[V any] struct {
	l1 port.Cache[V]
	l2 port.Cache[V]
}

type ttlGetter[V any] interface {
	GetWithTTL(ctx context.Context, key string) (V, time.Duration, bool)
}

type ttlSetter[V any] interface {
	SetWithTTL(ctx context.Context, key string, value V, ttl time.Duration)
}

func NewLayered[V any](l1, l2 port.Cache[V]) *Layered[V] {
	return &Layered[V]{l1: l1, l2: l2}
}

func (c *Layered[V]) Get(ctx context.Context, key string) (V, bool) {
	if v, ok := c.l1.Get(ctx, key); ok {
		return v, true
	}

	var (
		v   V
		ttl time.Duration
		ok  bool
	)
	if g, withTTL := c.l2.(ttlGetter[V]); withTTL {
		v, ttl, ok = g.GetWithTTL(ctx, key)
	} else {
		v, ok = c.l2.Get(ctx, key)
	}
	if !ok {
		return v, false
	}

	if s, withTTL := c.l1.(ttlSetter[V]); withTTL && ttl > 0 {
		s.SetWithTTL(ctx, key, v, ttl)
	} else {
		c.l1.Set(ctx, key, v)
	}
	return v, true
}

func (c *Layered[V]) Set(ctx context.Context, key string, value V) {
	c.l1.Set(ctx, key, value)
	c.l2.Set(ctx, key, value)
}

var _ port.Cache[int] = (*Layered[int])(nil)
