// File: httpx/cache.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Response cache (spec.md §3, §4.6): map{URL -> prebuilt response bytes}
// with optional TTL, plus a reverse index from content fingerprint to the
// first URL stored with those bytes; entries are not deduplicated, each
// keeps its own bytes. Read-mostly, copy-on-write
// on update (spec.md §5 "HTTP response cache uses a read-write lock with
// copy-on-write for updates"). Grounded on the teacher's control.ConfigStore
// hot-reload pattern, adapted from named-config entries to URL-keyed
// response entries and driven by fsnotify instead of a config file watch.

package httpx

import (
	"crypto/sha256"
	"encoding/hex"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/momentics/netcore/control"
	"github.com/momentics/netcore/logging"
	"go.uber.org/zap"
)

type cacheEntry struct {
	wire       []byte
	fingerprint string
	expiresAt   time.Time // zero means no TTL
}

// Cache is a process-lifetime URL -> response-bytes cache (spec.md §3).
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	byFp    map[string]string // fingerprint -> canonical URL

	watcher     *fsnotify.Watcher
	roots       map[string]string        // watched directory -> URL prefix
	rootTimeout map[string]time.Duration // watched directory -> last-applied TTL

	log  logging.Logger
	hits atomic.Int64
	miss atomic.Int64
}

// NewCache creates an empty response cache.
func NewCache() *Cache {
	return &Cache{
		entries:     make(map[string]cacheEntry),
		byFp:        make(map[string]string),
		roots:       make(map[string]string),
		rootTimeout: make(map[string]time.Duration),
		log:         logging.Nop(),
	}
}

// SetLogger injects a structured logger for reload/watch events.
func (c *Cache) SetLogger(l logging.Logger) {
	if l != nil {
		c.log = l
	}
}

// Put stores wire bytes for url, evicting after timeout (zero = no TTL).
func (c *Cache) Put(url string, wire []byte, timeout time.Duration) {
	fp := fingerprint(wire)
	var expires time.Time
	if timeout > 0 {
		expires = time.Now().Add(timeout)
	}
	entry := cacheEntry{wire: wire, fingerprint: fp, expiresAt: expires}

	c.mu.Lock()
	next := make(map[string]cacheEntry, len(c.entries)+1)
	for k, v := range c.entries {
		next[k] = v
	}
	next[url] = entry
	c.entries = next

	nextFp := make(map[string]string, len(c.byFp)+1)
	for k, v := range c.byFp {
		nextFp[k] = v
	}
	if _, exists := nextFp[fp]; !exists {
		nextFp[fp] = url
	}
	c.byFp = nextFp
	c.mu.Unlock()
}

// Remove evicts url from the cache.
func (c *Cache) Remove(url string) {
	c.mu.Lock()
	next := make(map[string]cacheEntry, len(c.entries))
	for k, v := range c.entries {
		if k != url {
			next[k] = v
		}
	}
	c.entries = next
	c.mu.Unlock()
}

// Get returns the cached wire bytes for url, honoring TTL expiry.
func (c *Cache) Get(url string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[url]
	c.mu.RUnlock()
	if !ok {
		c.miss.Add(1)
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.Remove(url)
		c.miss.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return entry.wire, true
}

// RegisterMetrics exposes this cache's hit/miss counters under
// "<name>.cache_hits"/"<name>.cache_misses" in mr.
func (c *Cache) RegisterMetrics(mr *control.MetricsRegistry, name string) {
	mr.RegisterSampler(name+".cache_hits", func() any { return c.hits.Load() })
	mr.RegisterSampler(name+".cache_misses", func() any { return c.miss.Load() })
}

// RegisterDebugProbe exposes a dump of every cached URL's fingerprint and
// TTL status under name in dp, for ad hoc runtime inspection.
func (c *Cache) RegisterDebugProbe(dp *control.DebugProbes, name string) {
	dp.RegisterProbe(name, func() any {
		c.mu.RLock()
		defer c.mu.RUnlock()
		out := make(map[string]any, len(c.entries))
		for url, entry := range c.entries {
			out[url] = map[string]any{
				"fingerprint": entry.fingerprint,
				"expires_at":  entry.expiresAt,
			}
		}
		return out
	})
}

// AddStaticContent recursively loads dir, serving each file under
// prefix+relativePath with the given TTL, and arms an fsnotify watch so
// modified files are reloaded (spec.md §4.6).
func (c *Cache) AddStaticContent(dir, prefix string, timeout time.Duration) error {
	if err := c.loadDir(dir, prefix, timeout); err != nil {
		return err
	}
	return c.watchDir(dir, prefix, timeout)
}

// Bind registers this static-content root under name in store, so pushing
// {"ttl_seconds": n} via store.SetConfig reloads every file under dir with
// the new TTL without a process restart (spec.md §4.6, supplemented per
// SPEC_FULL.md's control.ConfigStore generalization).
func (c *Cache) Bind(store *control.ConfigStore, name, dir, prefix string) {
	store.OnReload(name, func(cfg map[string]any) {
		secs, ok := cfg["ttl_seconds"].(int)
		if !ok {
			return
		}
		timeout := time.Duration(secs) * time.Second
		if err := c.loadDir(dir, prefix, timeout); err != nil {
			c.log.Warn("static content ttl reconfigure failed", zap.String("name", name), zap.Error(err))
			return
		}
		c.mu.Lock()
		if _, watched := c.roots[dir]; watched {
			c.rootTimeout[dir] = timeout
		}
		c.mu.Unlock()
		c.log.Info("static content ttl reconfigured", zap.String("name", name), zap.Duration("ttl", timeout))
	})
}

// RegisterFullReload arms a control.RegisterReloadHook that re-walks every
// static-content root this cache has been given (full re-read off disk,
// as opposed to Bind's TTL-only reconfiguration), fired by
// control.TriggerHotReload — typically wired to SIGHUP via
// control.ListenSIGHUP.
func (c *Cache) RegisterFullReload() {
	control.RegisterReloadHook(func() {
		c.mu.RLock()
		roots := make(map[string]string, len(c.roots))
		for dir, prefix := range c.roots {
			roots[dir] = prefix
		}
		timeouts := make(map[string]time.Duration, len(c.rootTimeout))
		for dir, to := range c.rootTimeout {
			timeouts[dir] = to
		}
		c.mu.RUnlock()

		for dir, prefix := range roots {
			if err := c.loadDir(dir, prefix, timeouts[dir]); err != nil {
				c.log.Warn("full reload failed", zap.String("dir", dir), zap.Error(err))
				continue
			}
			c.log.Info("full reload completed", zap.String("dir", dir))
		}
	})
}

func (c *Cache) loadDir(dir, prefix string, timeout time.Duration) error {
	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		url := path.Join(prefix, filepath.ToSlash(rel))
		return c.loadFile(p, url, timeout)
	})
}

func (c *Cache) loadFile(p, url string, timeout time.Duration) error {
	body, err := os.ReadFile(p)
	if err != nil {
		return err
	}
	ct := mime.TypeByExtension(filepath.Ext(p))
	wire := MakeResponse(StatusOK, "OK", body, ct)
	c.Put(url, wire, timeout)
	return nil
}

func (c *Cache) watchDir(dir, prefix string, timeout time.Duration) error {
	c.mu.Lock()
	if c.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			c.mu.Unlock()
			return err
		}
		c.watcher = w
		go c.watchLoop()
	}
	c.roots[dir] = prefix
	c.rootTimeout[dir] = timeout
	watcher := c.watcher
	c.mu.Unlock()

	return filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(p)
		}
		return nil
	})
}

func (c *Cache) watchLoop() {
	for event := range c.watcher.Events {
		if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			continue
		}
		c.mu.RLock()
		var dir, prefix string
		var timeout time.Duration
		for root, pfx := range c.roots {
			if filepathHasPrefix(event.Name, root) {
				dir, prefix = root, pfx
				timeout = c.rootTimeout[root]
				break
			}
		}
		c.mu.RUnlock()
		if dir == "" {
			continue
		}
		rel, err := filepath.Rel(dir, event.Name)
		if err != nil {
			continue
		}
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			continue
		}
		url := path.Join(prefix, filepath.ToSlash(rel))
		if err := c.loadFile(event.Name, url, timeout); err != nil {
			c.log.Warn("static content reload failed", zap.String("path", event.Name), zap.Error(err))
			continue
		}
		c.log.Info("static content reloaded", zap.String("url", url))
	}
}

func filepathHasPrefix(name, root string) bool {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return len(rel) < 2 || rel[:2] != ".."
}

func fingerprint(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
