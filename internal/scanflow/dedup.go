package scanflow

import (
	"sync"
	"time"
)

// DedupCache remembers recently captured tokens so repeated camera reads of
// the same credential do not re-trigger the scan call. It is a fixed-size
// ring keyed by token and capture time: when full, the oldest entry is
// overwritten, so memory stays bounded no matter how long a session runs.
type DedupCache struct {
	mu      sync.Mutex
	entries []dedupEntry
	next    int
	window  time.Duration
}

type dedupEntry struct {
	key    string
	seenAt time.Time
}

func NewDedupCache(size int, window time.Duration) *DedupCache {
	if size <= 0 {
		size = 32
	}
	if window <= 0 {
		window = 3 * time.Second
	}
	return &DedupCache{
		entries: make([]dedupEntry, size),
		window:  window,
	}
}

// Seen reports whether key was captured within the dedup window.
func (c *DedupCache) Seen(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.key == key && now.Sub(e.seenAt) <= c.window {
			return true
		}
	}
	return false
}

// Record notes a completed capture of key. Callers record only after the
// scan call returned an outcome, so a transport fault never blocks an
// immediate retry of the same token.
func (c *DedupCache) Record(key string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[c.next] = dedupEntry{key: key, seenAt: now}
	c.next = (c.next + 1) % len(c.entries)
}
