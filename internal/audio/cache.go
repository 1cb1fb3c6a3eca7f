package audio

import (
	"context"
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/vytor/hanziflash/internal/logger"
	"golang.org/x/sync/singleflight"
)

// CacheStats counts cache activity since creation.
type CacheStats struct {
	Entries int   `json:"entries"`
	Loads   int64 `json:"loads"`
	Hits    int64 `json:"hits"`
	Missing int   `json:"missing"`
}

type cacheEntry struct {
	clip *Clip
	err  error
}

// ClipCache memoizes resolved clips by key. Entries are never replaced or
// evicted; a key that does not exist is remembered as missing.
type ClipCache struct {
	resolver Resolver
	log      *logger.Logger

	mu      sync.RWMutex
	entries map[ClipKey]cacheEntry
	group   singleflight.Group

	loads atomic.Int64
	hits  atomic.Int64
}

func NewClipCache(resolver Resolver) *ClipCache {
	return &ClipCache{
		resolver: resolver,
		log:      logger.Default().WithPrefix("clipcache"),
		entries:  make(map[ClipKey]cacheEntry),
	}
}

// Resolve returns the clip for key, loading it on first use. Concurrent first
// calls share one load. The load itself is not bound to ctx; a caller whose
// ctx ends stops waiting while the load completes for the others.
func (c *ClipCache) Resolve(ctx context.Context, key ClipKey) (*Clip, error) {
	return c.resolve(ctx, key, true)
}

// Fetch is Resolve for untrusted keys: a found clip is cached, but a missing
// key is not remembered unless a Resolve already recorded it.
func (c *ClipCache) Fetch(ctx context.Context, key ClipKey) (*Clip, error) {
	return c.resolve(ctx, key, false)
}

func (c *ClipCache) resolve(ctx context.Context, key ClipKey, remember bool) (*Clip, error) {
	if e, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return e.clip, e.err
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(string(key), func() (any, error) {
		if e, ok := c.lookup(key); ok {
			return e, nil
		}
		return c.load(loadCtx, key, remember), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		e := res.Val.(cacheEntry)
		return e.clip, e.err
	}
}

func (c *ClipCache) load(ctx context.Context, key ClipKey, remember bool) cacheEntry {
	c.loads.Add(1)
	clip, err := c.resolver.Resolve(ctx, key)
	switch {
	case err == nil:
		e := cacheEntry{clip: clip}
		c.store(key, e)
		c.log.Debug("loaded %s (%d bytes)", key, clip.Size())
		return e
	case errors.Is(err, fs.ErrNotExist):
		e := cacheEntry{err: missing(key, err)}
		if !remember {
			c.log.Debug("clip %s is missing", key)
			return e
		}
		c.store(key, e)
		c.log.Warn("clip %s is missing, remembering for this session", key)
		return e
	default:
		c.log.Warn("transient failure resolving %s: %v", key, err)
		return cacheEntry{err: &ClipResolutionError{Key: key, Err: err}}
	}
}

func (c *ClipCache) lookup(key ClipKey) (cacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *ClipCache) store(key ClipKey, e cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = e
	}
}

// Contains reports whether key has a cached result, found or missing.
func (c *ClipCache) Contains(key ClipKey) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c *ClipCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := CacheStats{Entries: len(c.entries), Loads: c.loads.Load(), Hits: c.hits.Load()}
	for _, e := range c.entries {
		if e.err != nil {
			s.Missing++
		}
	}
	return s
}
