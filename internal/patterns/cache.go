package patterns

import (
	"path/filepath"
	"sync"

	"bill-extraction-service/pkg/logger"

	"github.com/fsnotify/fsnotify"
)

// Cache memoizes repository loads per user and invalidates on filesystem
// events in the pattern directories. Staleness is bounded by the watcher's
// delivery latency: a served result is at most one undelivered event old.
//
// The watcher on the user tier covers the tier root and every user
// subdirectory seen so far; subdirectories created after startup are picked
// up on the first cache miss for that user.
type Cache struct {
	repo    *Repository
	watcher *fsnotify.Watcher
	log     logger.Logger

	mu      sync.RWMutex
	entries map[string][]Loaded
	watched map[string]bool

	done chan struct{}
}

// NewCache wraps a repository with an invalidating cache. Close must be
// called to release the watcher.
func NewCache(repo *Repository) (*Cache, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	c := &Cache{
		repo:    repo,
		watcher: watcher,
		log:     repo.log.WithComponent("patterns.cache"),
		entries: make(map[string][]Loaded),
		watched: make(map[string]bool),
		done:    make(chan struct{}),
	}

	c.watch(repo.adminDir)
	c.watch(repo.userDir)

	go c.run()
	return c, nil
}

// LoadAll implements Loader. Hits serve the memoized slice; misses read
// through to the repository.
func (c *Cache) LoadAll(userID string) ([]Loaded, error) {
	c.mu.RLock()
	cached, ok := c.entries[userID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	loaded, err := c.repo.LoadAll(userID)
	if err != nil {
		return nil, err
	}

	if c.repo.userDir != "" && userID != "" {
		c.watch(filepath.Join(c.repo.userDir, userID))
	}

	c.mu.Lock()
	c.entries[userID] = loaded
	c.mu.Unlock()
	return loaded, nil
}

// Invalidate drops every memoized entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string][]Loaded)
	c.mu.Unlock()
}

// Close stops the watcher.
func (c *Cache) Close() error {
	close(c.done)
	return c.watcher.Close()
}

func (c *Cache) watch(dir string) {
	if dir == "" {
		return
	}
	c.mu.Lock()
	already := c.watched[dir]
	if !already {
		c.watched[dir] = true
	}
	c.mu.Unlock()
	if already {
		return
	}
	if err := c.watcher.Add(dir); err != nil {
		// The directory may not exist yet; the cache still works, it just
		// cannot invalidate on changes under this path.
		c.log.WithError(err).WithField("dir", dir).Debug("pattern directory not watchable")
	}
}

func (c *Cache) run() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.log.WithFields(logger.Fields{
				"file": event.Name,
				"op":   event.Op.String(),
			}).Debug("pattern change detected, cache invalidated")
			c.Invalidate()
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.log.WithError(err).Warn("pattern watcher error")
		}
	}
}
