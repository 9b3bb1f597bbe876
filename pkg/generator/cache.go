package generator

import (
	"crypto/sha256"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
)

// defaultCacheEntries bounds the per-batch signature cache; a project rarely
// wraps more than a handful of headers.
const defaultCacheEntries = 32

type digest = [sha256.Size]byte

// cacheEntry is a doubly-linked list node holding one header's signatures.
type cacheEntry struct {
	key   digest
	funcs []cheader.Function
	prev  *cacheEntry
	next  *cacheEntry
}

// signatureCache is a thread-safe LRU of signature collections keyed by the
// SHA-256 of the header text. Values are cloned on the way in and out so
// every render owns its collection.
type signatureCache struct {
	mu      sync.Mutex
	entries map[digest]*cacheEntry
	head    *cacheEntry // Most recently used.
	tail    *cacheEntry // Least recently used.

	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
}

// cacheStats reports signature cache effectiveness.
type cacheStats struct {
	Hits    int64
	Misses  int64
	Entries int
}

func newSignatureCache(maxEntries int) *signatureCache {
	return &signatureCache{
		entries:    make(map[digest]*cacheEntry),
		maxEntries: maxEntries,
	}
}

func headerKey(header []byte) digest {
	return sha256.Sum256(header)
}

func (c *signatureCache) get(key digest) ([]cheader.Function, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)

		return nil, false
	}

	c.hits.Add(1)
	c.moveToFront(ent)

	return cloneFuncs(ent.funcs), true
}

func (c *signatureCache) put(key digest, funcs []cheader.Function) {
	funcs = cloneFuncs(funcs)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.entries[key]; ok {
		ent.funcs = funcs
		c.moveToFront(ent)

		return
	}

	for len(c.entries) >= c.maxEntries && c.tail != nil {
		c.evictTail()
	}

	ent := &cacheEntry{key: key, funcs: funcs}
	c.entries[key] = ent
	c.addToFront(ent)
}

func (c *signatureCache) stats() cacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return cacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: len(c.entries)}
}

func (c *signatureCache) evictTail() {
	victim := c.tail
	c.removeFromList(victim)
	delete(c.entries, victim.key)
}

func (c *signatureCache) moveToFront(ent *cacheEntry) {
	if ent == c.head {
		return
	}

	c.removeFromList(ent)
	c.addToFront(ent)
}

func (c *signatureCache) addToFront(ent *cacheEntry) {
	ent.prev = nil
	ent.next = c.head

	if c.head != nil {
		c.head.prev = ent
	}

	c.head = ent

	if c.tail == nil {
		c.tail = ent
	}
}

func (c *signatureCache) removeFromList(ent *cacheEntry) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.head = ent.next
	}

	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.tail = ent.prev
	}
}

func cloneFuncs(funcs []cheader.Function) []cheader.Function {
	out := make([]cheader.Function, len(funcs))

	for idx, fn := range funcs {
		fn.Args = slices.Clone(fn.Args)
		if fn.Args == nil {
			fn.Args = []cheader.Param{}
		}

		out[idx] = fn
	}

	return out
}
