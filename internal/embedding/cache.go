package embedding

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheEntry holds a cached vector plus its expiry bookkeeping. An entry is
// evicted when EITHER the absolute TTL or the sliding TTL has elapsed
// (spec.md §5: "absolute 2h TTL and sliding 30 min TTL").
type cacheEntry struct {
	vector       []float32
	createdAt    time.Time
	lastAccessed time.Time
}

// Cache is the process-wide embedding cache: an in-process L1 map, with an
// optional Redis L2 for cross-process sharing, grounded on the teacher's
// go-redis JSON-blob-under-a-namespaced-key pattern (web_search_state.go).
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*cacheEntry
	maxSize     int
	absoluteTTL time.Duration
	slidingTTL  time.Duration

	redisClient *redis.Client
	redisPrefix string
}

// NewCache builds a size-bounded, dual-TTL embedding cache.
func NewCache(maxSize int, absoluteTTL, slidingTTL time.Duration, redisClient *redis.Client) *Cache {
	if maxSize <= 0 {
		maxSize = 50000
	}
	return &Cache{
		entries:     make(map[string]*cacheEntry),
		maxSize:     maxSize,
		absoluteTTL: absoluteTTL,
		slidingTTL:  slidingTTL,
		redisClient: redisClient,
		redisPrefix: "driftmind:embed:",
	}
}

// normalizeKey implements spec.md §5's cache key: "trim, lowercase, collapse
// whitespace, drop CR/tab".
func normalizeKey(text string) string {
	text = strings.Map(func(r rune) rune {
		if r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, text)
	text = strings.ToLower(strings.TrimSpace(text))
	return strings.Join(strings.Fields(text), " ")
}

// Get returns the cached vector for text, if present and unexpired.
func (c *Cache) Get(text string) ([]float32, bool) {
	key := normalizeKey(text)

	c.mu.Lock()
	entry, ok := c.entries[key]
	now := time.Now()
	if ok {
		if c.expired(entry, now) {
			delete(c.entries, key)
			ok = false
		} else {
			entry.lastAccessed = now
		}
	}
	c.mu.Unlock()

	if ok {
		return entry.vector, true
	}

	if c.redisClient == nil {
		return nil, false
	}
	vec, found := c.getFromRedis(key)
	if found {
		c.mu.Lock()
		c.entries[key] = &cacheEntry{vector: vec, createdAt: now, lastAccessed: now}
		c.evictIfFullLocked()
		c.mu.Unlock()
	}
	return vec, found
}

// Set stores text's embedding, evicting the least-recently-accessed entry if
// the cache is full (simple size bound; spec.md §5 says only "size-bounded eviction",
// leaving the policy unspecified).
func (c *Cache) Set(text string, vector []float32) {
	key := normalizeKey(text)
	now := time.Now()

	c.mu.Lock()
	c.entries[key] = &cacheEntry{vector: vector, createdAt: now, lastAccessed: now}
	c.evictIfFullLocked()
	c.mu.Unlock()

	if c.redisClient != nil {
		c.setInRedis(key, vector)
	}
}

func (c *Cache) expired(entry *cacheEntry, now time.Time) bool {
	if c.absoluteTTL > 0 && now.Sub(entry.createdAt) > c.absoluteTTL {
		return true
	}
	if c.slidingTTL > 0 && now.Sub(entry.lastAccessed) > c.slidingTTL {
		return true
	}
	return false
}

// evictIfFullLocked drops the least-recently-accessed entry once over
// capacity. Caller must hold c.mu.
func (c *Cache) evictIfFullLocked() {
	if len(c.entries) <= c.maxSize {
		return
	}
	var oldestKey string
	var oldestAccess time.Time
	for k, v := range c.entries {
		if oldestKey == "" || v.lastAccessed.Before(oldestAccess) {
			oldestKey = k
			oldestAccess = v.lastAccessed
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *Cache) getFromRedis(key string) ([]float32, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := c.redisClient.Get(ctx, c.redisPrefix+key).Bytes()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

func (c *Cache) setInRedis(key string, vector []float32) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, err := json.Marshal(vector)
	if err != nil {
		return
	}
	_ = c.redisClient.Set(ctx, c.redisPrefix+key, b, c.absoluteTTL).Err()
}
