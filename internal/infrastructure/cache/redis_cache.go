package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache caché compartida en Redis; los valores se guardan como JSON con SET ... EX.
type RedisCache[V any] struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCache construye la caché. prefix se antepone a todas las claves.
func NewRedisCache[V any](client redis.Cmdable, prefix string) *RedisCache[V] {
	return &RedisCache[V]{client: client, prefix: prefix}
}

// Get devuelve (valor, true) en hit, (cero, false) en miss y error si Redis falla.
func (c *RedisCache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var v V
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("redis decode %s: %w", key, err)
	}
	return v, true, nil
}

// Put guarda el valor; ttl <= 0 significa sin expiración.
func (c *RedisCache[V]) Put(ctx context.Context, key string, value V, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
