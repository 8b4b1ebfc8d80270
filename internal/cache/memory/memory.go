// Package memory is the in-process implementation of the domain.Cache
// port: a mutex-guarded map with per-entry TTL, lazy eviction on read and
// an optional periodic sweep. Best-effort only: callers always fall
// through to the repo on a miss, so none of the operations can fail.
package memory

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/pb0420/trademonke/internal/domain"
)

const (
	DefaultTTL             = 5 * time.Minute
	DefaultCleanupInterval = 10 * time.Minute
)

type entry struct {
	val      []byte
	storedAt time.Time
	ttl      time.Duration
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	logger  *log.Logger

	// now is swappable so tests control expiry without sleeping.
	now func() time.Time

	stopJanitor chan struct{}
	janitorWG   sync.WaitGroup
}

var _ domain.Cache = (*Cache)(nil)

// New returns an isolated instance. Nothing is shared between instances
// and no background work starts until StartJanitor is called explicitly.
func New(logger *log.Logger) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Cache) expired(e entry, now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

// Set stores val under key, overwriting unconditionally. ttl <= 0 means
// DefaultTTL.
func (c *Cache) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	c.entries[key] = entry{val: val, storedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
	return nil
}

// Get returns nil for absent or expired keys. An expired entry is deleted
// on the way out so repeated reads stay absent.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	if c.expired(e, c.now()) {
		delete(c.entries, key)
		return nil, nil
	}
	return e.val, nil
}

// Del removes entries; absent keys are a no-op.
func (c *Cache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
	return nil
}

// Clear drops every entry. Write-path handlers call this after mutations.
func (c *Cache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

// SetNX stores only when the key is absent (or expired). Backs the token
// blacklist when Redis is not configured.
func (c *Cache) SetNX(_ context.Context, key string, val []byte, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && !c.expired(e, c.now()) {
		return false, nil
	}
	c.entries[key] = entry{val: val, storedAt: c.now(), ttl: ttl}
	return true, nil
}

func (c *Cache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	if c.expired(e, c.now()) {
		delete(c.entries, key)
		return false, nil
	}
	return true, nil
}

func (c *Cache) Ping(context.Context) error { return nil }

func (c *Cache) Close() {
	c.StopJanitor()
}

// Cleanup removes every expired entry in one sweep. Shares the expiry
// predicate with the lazy path so the two mechanisms cannot diverge.
// Returns the number of entries removed.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	removed := 0
	for k, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports live (non-expired) entries. Diagnostics only.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for _, e := range c.entries {
		if !c.expired(e, now) {
			n++
		}
	}
	return n
}

// StartJanitor launches the periodic sweep so memory does not grow
// unbounded from entries that are never re-read. interval <= 0 means
// DefaultCleanupInterval. Starting twice is a no-op.
func (c *Cache) StartJanitor(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	c.mu.Lock()
	if c.stopJanitor != nil {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.stopJanitor = stop
	c.mu.Unlock()

	c.janitorWG.Add(1)
	go func() {
		defer c.janitorWG.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				c.sweep()
			case <-stop:
				return
			}
		}
	}()
}

func (c *Cache) StopJanitor() {
	c.mu.Lock()
	stop := c.stopJanitor
	c.stopJanitor = nil
	c.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	c.janitorWG.Wait()
}

// sweep wraps Cleanup so an unexpected panic is logged without killing
// the janitor loop.
func (c *Cache) sweep() {
	defer func() {
		if r := recover(); r != nil && c.logger != nil {
			c.logger.Printf("cleanup panic recovered: %v", r)
		}
	}()
	if n := c.Cleanup(); n > 0 && c.logger != nil {
		c.logger.Printf("cleanup: removed %d expired entries", n)
	}
}
