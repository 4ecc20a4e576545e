package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores vectors by key. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]float64, bool, error)
	Set(ctx context.Context, key string, vector []float64) error
	Clear(ctx context.Context) error
}

// CacheKey namespaces a text by model so vectors from different spaces never mix.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return model + ":" + hex.EncodeToString(sum[:])
}

// MemoryCache is an in-process cache with a size cap and TTL.
type MemoryCache struct {
	cache   map[string]*cacheEntry
	mu      sync.RWMutex
	maxSize int
	ttl     time.Duration
	hits    atomic.Int64
	misses  atomic.Int64
}

type cacheEntry struct {
	vector    []float64
	expiresAt time.Time
}

// MemoryCacheConfig configures the in-process cache. A zero TTL never expires.
type MemoryCacheConfig struct {
	MaxSize int
	TTL     time.Duration
}

func DefaultMemoryCacheConfig() MemoryCacheConfig {
	return MemoryCacheConfig{
		MaxSize: 10000,
	}
}

func NewMemoryCache(config MemoryCacheConfig) *MemoryCache {
	if config.MaxSize <= 0 {
		config.MaxSize = DefaultMemoryCacheConfig().MaxSize
	}
	return &MemoryCache{
		cache:   make(map[string]*cacheEntry),
		maxSize: config.MaxSize,
		ttl:     config.TTL,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]float64, bool, error) {
	c.mu.RLock()
	entry, exists := c.cache[key]
	c.mu.RUnlock()

	if !exists || (!entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt)) {
		c.misses.Add(1)
		return nil, false, nil
	}

	c.hits.Add(1)
	return entry.vector, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, vector []float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict if at capacity (simple LRU - just clear half)
	if _, exists := c.cache[key]; !exists && len(c.cache) >= c.maxSize {
		c.evictHalf()
	}

	entry := &cacheEntry{vector: vector}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.cache[key] = entry

	return nil
}

// evictHalf removes half the cache entries (must be called with lock held)
func (c *MemoryCache) evictHalf() {
	count := 0
	target := max(len(c.cache)/2, 1)
	for key := range c.cache {
		delete(c.cache, key)
		count++
		if count >= target {
			break
		}
	}
}

func (c *MemoryCache) Clear(context.Context) error {
	c.mu.Lock()
	c.cache = make(map[string]*cacheEntry)
	c.mu.Unlock()
	return nil
}

// CacheStats returns cache statistics
type CacheStats struct {
	Size   int
	Hits   int64
	Misses int64
}

func (c *MemoryCache) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.cache)
	c.mu.RUnlock()
	return CacheStats{
		Size:   size,
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// RedisCache shares vectors between replicas. Vectors are stored as JSON arrays.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "fern:embedding:"
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]float64, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read embedding from redis: %w", err)
	}

	var vector []float64
	if err := json.Unmarshal(raw, &vector); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached embedding: %w", err)
	}

	return vector, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, vector []float64) error {
	raw, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	if err := c.rdb.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write embedding to redis: %w", err)
	}

	return nil
}

// Clear removes every key under the cache prefix.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
		}
	}
	return iter.Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
