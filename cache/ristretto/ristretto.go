package ristretto

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/quillhq/quill/cache"
)

// Cache adapts a ristretto cache to the cache.Cache interface. Keys are
// strings; the application caches records by their database id.
type Cache[V any] struct {
	cache *ristretto.Cache[string, V]
}

func (rc *Cache[V]) Get(key string) (V, bool) {
	return rc.cache.Get(key)
}

func (rc *Cache[V]) Set(key string, value V, cost int64) bool {
	return rc.cache.Set(key, value, cost)
}

func (rc *Cache[V]) SetWithTTL(key string, value V, cost int64, ttl time.Duration) bool {
	return rc.cache.SetWithTTL(key, value, cost, ttl)
}

func (rc *Cache[V]) Delete(key string) {
	rc.cache.Del(key)
}

func New[V any]() (cache.Cache[string, V], error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, V]{
		NumCounters: 1e7,     // number of keys to track frequency of (10M)
		MaxCost:     1 << 30, // maximum cost of cache (1GB)
		BufferItems: 64,      // number of keys per Get buffer
	})
	if err != nil {
		return nil, err
	}

	return &Cache[V]{cache: c}, nil
}
