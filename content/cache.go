package content

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// IndexCache keeps the last successfully fetched post index for a TTL.
// A zero TTL disables caching and every call goes to the backend.
// Failed fetches are never cached.
type IndexCache struct {
	mu      sync.RWMutex
	posts   []Post
	fetched time.Time
	ttl     time.Duration
	client  *Client
	logger  *slog.Logger
}

// NewIndexCache creates an IndexCache backed by the given Client.
func NewIndexCache(c *Client, ttl time.Duration) *IndexCache {
	return &IndexCache{client: c, ttl: ttl, logger: c.logger}
}

func (c *IndexCache) valid() bool {
	return c.ttl > 0 && c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *IndexCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

// Index returns the cached index, refreshing it when stale. On a failed
// refresh it returns an empty index and ok false.
func (c *IndexCache) Index(ctx context.Context) ([]Post, bool) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, true
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid() {
		return c.posts, true
	}
	posts, err := c.client.FetchIndex(ctx)
	if err != nil {
		c.logger.Warn("fetch post index", "err", err)
		return []Post{}, false
	}
	if c.ttl > 0 {
		c.posts = posts
		c.fetched = time.Now()
	}
	return posts, true
}

// Markdown fetches a post body; bodies are not cached.
func (c *IndexCache) Markdown(ctx context.Context, file string) (string, bool) {
	return c.client.Markdown(ctx, file)
}

// Base returns the content base of the underlying client.
func (c *IndexCache) Base() string {
	return c.client.Base()
}
