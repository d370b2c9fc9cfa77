package cache

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	once     sync.Once
	memCache Cache
)

// Cache is the process-wide store for short-lived market data, quotes
// most of all. It keeps repeat lookups within a run off the provider
// rate limits.
type Cache interface {
	Set(key string, value interface{}, duration time.Duration)
	Get(key string) (interface{}, bool)
	Delete(key string)
	Flush()
}

type memoryCache struct {
	store *cache.Cache
}

// NewCache initializes the singleton with the default expiration and
// cleanup interval. Later calls return the existing instance unchanged.
func NewCache(defaultExpiration, cleanupInterval time.Duration) Cache {
	once.Do(func() {
		memCache = &memoryCache{
			store: cache.New(defaultExpiration, cleanupInterval),
		}
	})
	return memCache
}

func GetInMemoryCache() Cache {
	return memCache
}

// QuoteKey is the cache key for a symbol's latest quote.
func QuoteKey(symbol string) string {
	return "quote:" + symbol
}

func (c *memoryCache) Set(key string, value interface{}, duration time.Duration) {
	c.store.Set(key, value, duration)
}

func (c *memoryCache) Get(key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *memoryCache) Delete(key string) {
	c.store.Delete(key)
}

func (c *memoryCache) Flush() {
	c.store.Flush()
}

// GetFromCache reads a key and asserts it to T. A type mismatch counts
// as a miss, so a caller never sees another caller's entry shape.
func GetFromCache[T any](key string) (T, bool) {
	val, found := memCache.Get(key)
	if !found {
		var zero T
		return zero, false
	}
	typed, ok := val.(T)
	if !ok {
		var zero T
		return zero, false
	}
	return typed, true
}
