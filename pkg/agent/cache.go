package agent

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// EngineCache hands out one wired engine per user id, built lazily on first
// access. Engines hold no per-turn state, so sharing one across a user's
// turns is safe. Entries expire after an hour of inactivity so the cache
// does not grow without bound.
type EngineCache struct {
	cache *cache.Cache
	build func() *Engine
	mu    sync.Mutex
}

func NewEngineCache(build func() *Engine) *EngineCache {
	return &EngineCache{
		cache: cache.New(1*time.Hour, 10*time.Minute),
		build: build,
	}
}

// GetOrCreate returns the cached engine for the user, constructing and
// caching one when none exists. Each access refreshes the entry's TTL.
func (c *EngineCache) GetOrCreate(userID string) *Engine {
	c.mu.Lock()
	defer c.mu.Unlock()

	if x, found := c.cache.Get(userID); found {
		engine := x.(*Engine)
		c.cache.Set(userID, engine, cache.DefaultExpiration)
		return engine
	}

	engine := c.build()
	c.cache.Set(userID, engine, cache.DefaultExpiration)
	return engine
}

// Len reports how many engines are currently cached.
func (c *EngineCache) Len() int {
	return c.cache.ItemCount()
}
