// Package caching holds process-local counters that do not need to survive a
// restart, such as login attempts per client.
package caching

import (
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	memoryCache *cache.Cache
}

// NewCache returns a cache whose entries expire after ttl unless set with an
// explicit expiration.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{memoryCache: cache.New(ttl, 2*ttl)}
}

// Hit increments the counter under key and returns its new value. The first
// hit starts a window of length window; later hits do not extend it.
func (s *Cache) Hit(key string, window time.Duration) int {
	if err := s.memoryCache.Add(key, 1, window); err == nil {
		return 1
	}
	n, err := s.memoryCache.IncrementInt(key, 1)
	if err != nil {
		// expired between Add and IncrementInt
		s.memoryCache.Set(key, 1, window)
		return 1
	}
	return n
}

// Count returns the current value of key, zero when absent or expired.
func (s *Cache) Count(key string) int {
	if v, ok := s.memoryCache.Get(key); ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}

// Expiry returns when key's window closes.
func (s *Cache) Expiry(key string) (time.Time, bool) {
	_, exp, ok := s.memoryCache.GetWithExpiration(key)
	return exp, ok
}

func (s *Cache) Reset(key string) {
	s.memoryCache.Delete(key)
}

func (s *Cache) Flush() {
	s.memoryCache.Flush()
}

func (s *Cache) Memory() *cache.Cache {
	return s.memoryCache
}
