// Package cache holds the last known aggregation result per symbol. It
// is the only mutable shared structure in the system: the scheduler is
// the single writer, while debug endpoints and other readers may read
// concurrently without blocking each other or the writer for long.
package cache

import (
	"sync"
	"time"

	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

// Entry is one symbol's most recent aggregation outcome.
type Entry struct {
	LastConsensus    oraclecore.ConsensusPrice
	LastCanonicalSet []oraclecore.CanonicalQuote
	LastUpdatedAt    time.Time
}

// Cache is a concurrent map keyed by symbol. Writes are single-writer per
// symbol by convention (the scheduler); reads take a shared lock so
// concurrent multi-symbol reads never block each other.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// New returns an empty cache. There is no eviction and no durability:
// entries live only as long as the process.
func New() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Update replaces the entry for consensus.Symbol with a fresh snapshot.
func (c *Cache) Update(consensus oraclecore.ConsensusPrice, canonical []oraclecore.CanonicalQuote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[consensus.Symbol] = Entry{
		LastConsensus:    consensus,
		LastCanonicalSet: canonical,
		LastUpdatedAt:    time.Now(),
	}
}

// Get returns the entry for symbol and whether one exists.
func (c *Cache) Get(symbol string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[symbol]
	return e, ok
}

// Snapshot returns a shallow copy of the whole cache, safe for a debug
// endpoint to serialize without holding the cache's lock while it does.
func (c *Cache) Snapshot() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Entry, len(c.entries))
	for k, v := range c.entries {
		out[k] = v
	}
	return out
}
