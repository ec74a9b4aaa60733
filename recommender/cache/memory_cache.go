package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"movierec.app/models"
)

// Clock abstracts time lookups so TTL expiry is testable without real delays
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock { return systemClock{} }

// GenericCacheInterface defines generic cache operations
type GenericCacheInterface interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, fragment string)
	Clear(ctx context.Context)
}

// ScoringCacheInterface defines the interface for scoring result caching
type ScoringCacheInterface interface {
	Get(key string) (*models.ScoringResult, bool)
	Set(key string, value *models.ScoringResult, ttl time.Duration)
	Delete(key string)
	DeleteByPrefix(fragment string)
	Clear()
}

type cacheEntry struct {
	Data      []byte
	ExpiresAt time.Time
}

// MemoryCache is an unbounded in-process cache with per-entry TTL.
// Expired entries are removed lazily on read; SweepExpired removes them in bulk.
type MemoryCache struct {
	data  map[string]cacheEntry
	mutex sync.RWMutex
	clock Clock
}

func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithClock(SystemClock())
}

func NewMemoryCacheWithClock(clock Clock) *MemoryCache {
	return &MemoryCache{
		data:  make(map[string]cacheEntry),
		clock: clock,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mutex.RLock()
	entry, exists := c.data[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	if c.clock.Now().After(entry.ExpiresAt) {
		c.mutex.Lock()
		// re-check under the write lock; another reader may have removed it
		if current, ok := c.data[key]; ok && c.clock.Now().After(current.ExpiresAt) {
			delete(c.data, key)
		}
		c.mutex.Unlock()
		return nil, false
	}

	return entry.Data, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if value == nil {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = cacheEntry{
		Data:      value,
		ExpiresAt: c.clock.Now().Add(ttl),
	}
}

func (c *MemoryCache) Delete(ctx context.Context, key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
}

// DeleteByPrefix removes every entry whose key contains the given fragment
func (c *MemoryCache) DeleteByPrefix(ctx context.Context, fragment string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key := range c.data {
		if strings.Contains(key, fragment) {
			delete(c.data, key)
		}
	}
}

func (c *MemoryCache) Clear(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data = make(map[string]cacheEntry)
}

// SweepExpired removes all expired entries and reports how many were dropped
func (c *MemoryCache) SweepExpired(ctx context.Context) int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.clock.Now()
	removed := 0
	for key, entry := range c.data {
		if now.After(entry.ExpiresAt) {
			delete(c.data, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired or not
func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.data)
}

// ScoringCache wraps a generic cache with scoring-result operations.
// Values cross the boundary as JSON copies, never as live references.
type ScoringCache struct {
	cache GenericCacheInterface
}

func NewScoringCache(cache GenericCacheInterface) ScoringCacheInterface {
	return &ScoringCache{
		cache: cache,
	}
}

func (s *ScoringCache) Get(key string) (*models.ScoringResult, bool) {
	data, found := s.cache.Get(context.Background(), key)
	if !found {
		return nil, false
	}

	var result models.ScoringResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false
	}

	return &result, true
}

func (s *ScoringCache) Set(key string, value *models.ScoringResult, ttl time.Duration) {
	if value == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}

	s.cache.Set(context.Background(), key, data, ttl)
}

func (s *ScoringCache) Delete(key string) {
	s.cache.Delete(context.Background(), key)
}

func (s *ScoringCache) DeleteByPrefix(fragment string) {
	s.cache.DeleteByPrefix(context.Background(), fragment)
}

func (s *ScoringCache) Clear() {
	s.cache.Clear(context.Background())
}
