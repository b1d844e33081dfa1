package dict

import "sync"

// Failure classes recorded on an Entry. An empty Failure means the lookup
// succeeded.
const (
	FailureNotFound = "not_found"
	FailureNetwork  = "network_error"
)

// Entry is one resolved definition, keyed by its canonical word.
type Entry struct {
	Word         string
	Phonetic     string
	PartOfSpeech string
	Definition   string
	Example      string

	// Failure classifies unsuccessful lookups. Not-found entries are
	// cached; network failures are not, so they retry on the next access.
	Failure string
}

// Cacheable reports whether the entry may be memoized. Transient network
// failures must not be, or a single outage would poison the word forever.
func (e Entry) Cacheable() bool { return e.Failure != FailureNetwork }

// Cache memoizes definition entries for the lifetime of a session. It is
// unbounded: vocabulary cardinality is small relative to session length, so
// eviction buys nothing. Construct one per session and inject it wherever
// lookups happen, so tests get isolated instances.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Get returns the entry for a canonical key, if present.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Put stores an entry under a canonical key. Non-cacheable entries are
// dropped on the floor.
func (c *Cache) Put(key string, e Entry) {
	if !e.Cacheable() {
		return
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Len reports the number of memoized entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
