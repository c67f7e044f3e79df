// Package cache implementa la caché de lectura con TTL: en proceso (LRU acotado) o Redis.
// No hay invalidación explícita; las entradas solo expiran.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type memoryEntry[V any] struct {
	value     V
	expiresAt time.Time // cero = sin expiración
}

// MemoryCache caché en proceso con capacidad máxima (LRU) y TTL por entrada.
type MemoryCache[V any] struct {
	mu    sync.Mutex
	items *lru.Cache[string, memoryEntry[V]]
	now   func() time.Time
}

// MemoryOption configura MemoryCache.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	now func() time.Time
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) MemoryOption {
	return func(o *memoryOptions) { o.now = now }
}

// NewMemoryCache construye una caché de hasta maxEntries claves.
func NewMemoryCache[V any](maxEntries int, opts ...MemoryOption) (*MemoryCache[V], error) {
	o := memoryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	items, err := lru.New[string, memoryEntry[V]](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("memory cache: %w", err)
	}
	return &MemoryCache[V]{items: items, now: o.now}, nil
}

// Get devuelve el valor si existe y no expiró. No se copia: para tipos con referencias
// (slices, punteros) el valor es compartido y debe tratarse como solo lectura.
func (c *MemoryCache[V]) Get(_ context.Context, key string) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	e, ok := c.items.Get(key)
	if !ok {
		return zero, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.items.Remove(key)
		return zero, false, nil
	}
	return e.value, true, nil
}

// Put guarda el valor; ttl <= 0 significa sin expiración.
func (c *MemoryCache[V]) Put(_ context.Context, key string, value V, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.items.Add(key, e)
	return nil
}

// Len cantidad de entradas (incluye expiradas aún no consultadas).
func (c *MemoryCache[V]) Len() int {
	return c.items.Len()
}
