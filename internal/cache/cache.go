package cache

import (
	"container/list"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/flipintegrity/flipscan/pkg/models"
)

// Cache stores recent scan results so repeated requests for the same
// product page within the TTL skip the browser entirely.
type Cache interface {
	// Get retrieves a cached product by key.
	Get(key string) (*models.Product, bool)

	// Set stores a product with the specified TTL, updating any
	// existing entry for the key.
	Set(key string, product *models.Product, ttl time.Duration) error

	// Delete removes a cached product. No error if the key is absent.
	Delete(key string) error

	// Clear removes all cached products.
	Clear() error

	// Close stops background maintenance.
	Close()
}

type cacheEntry struct {
	Product   *models.Product
	ExpiresAt time.Time
	Key       string
}

// MemoryCache is an in-memory product cache with LRU eviction, bounded
// by entry count. Product records are small and uniform, so counting
// entries is a good enough size model.
type MemoryCache struct {
	store      map[string]*list.Element
	lruList    *list.List
	mu         sync.RWMutex
	maxEntries int
	ctx        context.Context
	cancel     context.CancelFunc
	hits       uint64
	misses     uint64
}

// NewMemoryCache creates a cache holding at most maxEntries products.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := &MemoryCache{
		store:      make(map[string]*list.Element),
		lruList:    list.New(),
		maxEntries: maxEntries,
		ctx:        ctx,
		cancel:     cancel,
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached product, refreshing its LRU position.
func (mc *MemoryCache) Get(key string) (*models.Product, bool) {
	mc.mu.Lock()
	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)

	if time.Now().After(entry.ExpiresAt) {
		mc.misses++
		mc.mu.Unlock()
		go mc.Delete(key)
		return nil, false
	}

	mc.lruList.MoveToFront(element)
	mc.hits++
	mc.mu.Unlock()

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Product, true
}

// Set stores a product with TTL, evicting the least recently used
// entries when full.
func (mc *MemoryCache) Set(key string, product *models.Product, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		element.Value = &cacheEntry{
			Product:   product,
			ExpiresAt: time.Now().Add(ttl),
			Key:       key,
		}
		mc.lruList.MoveToFront(element)
		return nil
	}

	for mc.lruList.Len() >= mc.maxEntries && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	entry := &cacheEntry{
		Product:   product,
		ExpiresAt: time.Now().Add(ttl),
		Key:       key,
	}
	mc.store[key] = mc.lruList.PushFront(entry)

	log.Debug().
		Str("key", key).
		Dur("ttl", ttl).
		Msg("Cached scan result")

	return nil
}

// Delete removes a cached product.
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		mc.lruList.Remove(element)
		delete(mc.store, key)
		log.Debug().Str("key", key).Msg("Deleted from cache")
	}

	return nil
}

// Clear removes all cached products and resets counters.
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.hits = 0
	mc.misses = 0

	log.Debug().Msg("Cache cleared")
	return nil
}

// Close stops the background cleanup goroutine.
func (mc *MemoryCache) Close() {
	mc.cancel()
	log.Debug().Msg("Cache closed")
}

// evictLRU removes the least recently used entry. Caller holds the lock.
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}

	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)

	log.Debug().Str("key", entry.Key).Msg("Evicted from cache (LRU)")
}

func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := time.Now()

			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				entry := element.Value.(*cacheEntry)

				if now.After(entry.ExpiresAt) {
					mc.lruList.Remove(element)
					delete(mc.store, entry.Key)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			log.Debug().Msg("Cache cleanup routine stopped")
			return
		}
	}
}

// Stats returns cache statistics including hit rate, surfaced by the
// health endpoint.
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	hitRate := 0.0
	total := mc.hits + mc.misses
	if total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":     mc.lruList.Len(),
		"max_entries": mc.maxEntries,
		"hits":        mc.hits,
		"misses":      mc.misses,
		"hit_rate":    hitRate,
	}
}

// Key builds the cache key for a scan. Scans under different auth
// sessions can see different prices, so the session name is part of
// the key.
func Key(url, sessionName string) string {
	if sessionName != "" {
		return fmt.Sprintf("%s::%s", url, sessionName)
	}
	return url
}
