// Package memcache is an in-process domain.Cache backed by go-cache.
package memcache

import (
	"context"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"travel_planner/internal/adapters/observability"
)

type Cache struct{ c *gocache.Cache }

// New returns a cache whose entries default to ttl and are swept every cleanup.
func New(ttl, cleanup time.Duration) *Cache {
	return &Cache{c: gocache.New(ttl, cleanup)}
}

// Values are stored JSON-encoded so Get behaves like the redis adapter and
// callers never share a mutable value.
func (m *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(v.([]byte), dst)
}

func (m *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ttl := gocache.DefaultExpiration
	if ttlSec > 0 {
		ttl = time.Duration(ttlSec) * time.Second
	}
	observability.ObserveCache("memory", "set")
	m.c.Set(key, b, ttl)
	return nil
}

func (m *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("memory", "del")
	m.c.Delete(key)
	return nil
}

// Len reports the number of stored items, expired ones included until swept.
func (m *Cache) Len() int { return m.c.ItemCount() }
