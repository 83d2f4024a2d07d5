package news

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/yueh722/Web3-news-app/internal/cache"
	"github.com/yueh722/Web3-news-app/internal/metrics"
)

// CacheTTL is how long a fetched day is served without asking the webhook.
const CacheTTL = 30 * time.Minute

// Backend is the uncached webhook surface. *Client implements it.
type Backend interface {
	FetchNews(ctx context.Context, dateKey string) FetchResult
	PostComment(ctx context.Context, dateKey, rowID, text string) CommentResult
}

// CachedClient memoizes FetchNews per date key for CacheTTL. One instance
// is shared by everything in the process.
type CachedClient struct {
	backend Backend
	store   cache.Store
	ttl     time.Duration
	now     func() time.Time
	log     *slog.Logger
	metrics metrics.Recorder

	// mu makes check-then-populate atomic, so concurrent misses for the
	// same day produce one remote call.
	mu sync.Mutex
}

type CacheOption func(*CachedClient)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *CachedClient) { c.now = now }
}

func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(c *CachedClient) { c.log = l }
}

func WithCacheMetrics(m metrics.Recorder) CacheOption {
	return func(c *CachedClient) { c.metrics = m }
}

func NewCachedClient(backend Backend, store cache.Store, opts ...CacheOption) *CachedClient {
	c := &CachedClient{
		backend: backend,
		store:   store,
		ttl:     CacheTTL,
		now:     time.Now,
		log:     slog.Default(),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = cache.NewMemoryStore()
	}
	return c
}

func cacheKey(dateKey string) string {
	return "news:" + dateKey
}

// FetchNews always goes to the webhook.
func (c *CachedClient) FetchNews(ctx context.Context, dateKey string) FetchResult {
	return c.backend.FetchNews(ctx, dateKey)
}

func (c *CachedClient) PostComment(ctx context.Context, dateKey, rowID, text string) CommentResult {
	return c.backend.PostComment(ctx, dateKey, rowID, text)
}

// FetchNewsCached returns the stored result for dateKey while it is younger
// than the TTL, otherwise fetches and stores a new one. Store failures are
// logged and fall through to a live fetch.
func (c *CachedClient) FetchNewsCached(ctx context.Context, dateKey string) FetchResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(dateKey)
	if res, ok := c.lookup(ctx, key); ok {
		c.metrics.CacheLookup(true)
		return res
	}
	c.metrics.CacheLookup(false)

	res := c.backend.FetchNews(ctx, dateKey)
	if ctx.Err() != nil {
		// A cancelled call says nothing about the backend.
		return res
	}

	b, err := json.Marshal(res)
	if err != nil {
		c.log.Warn("encoding cache entry", slog.String("key", key), slog.Any("error", err))
		return res
	}
	if err := c.store.Put(ctx, key, cache.Entry{Value: b, StoredAt: c.now()}); err != nil {
		c.log.Warn("writing cache entry", slog.String("key", key), slog.Any("error", err))
	}
	return res
}

func (c *CachedClient) lookup(ctx context.Context, key string) (FetchResult, bool) {
	e, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warn("reading cache entry", slog.String("key", key), slog.Any("error", err))
		return FetchResult{}, false
	}
	if !ok || c.now().Sub(e.StoredAt) >= c.ttl {
		return FetchResult{}, false
	}
	var res FetchResult
	if err := json.Unmarshal(e.Value, &res); err != nil {
		c.log.Warn("decoding cache entry", slog.String("key", key), slog.Any("error", err))
		return FetchResult{}, false
	}
	return res, true
}

// Invalidate drops the entry for dateKey so the next FetchNewsCached goes
// to the webhook.
func (c *CachedClient) Invalidate(ctx context.Context, dateKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.Delete(ctx, cacheKey(dateKey)); err != nil {
		c.log.Warn("invalidating cache entry", slog.String("date", dateKey), slog.Any("error", err))
	}
}
