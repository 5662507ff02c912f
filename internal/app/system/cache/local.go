package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Local is an in-process LRU with per-entry TTL. It suits a single
// instance; multi-instance deployments should use Redis so invalidations
// reach every process.
type Local struct {
	lru  *expirable.LRU[string, []byte]
	mu   sync.Mutex
	gens map[string]int64
}

// NewLocal creates a Local cache holding at most size entries for ttl each.
func NewLocal(size int, ttl time.Duration) *Local {
	if size <= 0 {
		size = 256
	}
	return &Local{
		lru:  expirable.NewLRU[string, []byte](size, nil, ttl),
		gens: make(map[string]int64),
	}
}

func (c *Local) Get(_ context.Context, ns, key string) ([]byte, bool) {
	c.mu.Lock()
	gen := c.gens[ns]
	c.mu.Unlock()
	return c.lru.Get(nsKey(ns, gen, key))
}

// Generation returns the current generation of ns.
func (c *Local) Generation(_ context.Context, ns string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[ns], nil
}

// Set stores val only while ns is still at gen.
func (c *Local) Set(_ context.Context, ns, key string, gen int64, val []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[ns] != gen {
		return
	}
	c.lru.Add(nsKey(ns, gen, key), val)
}

// Invalidate moves ns to a new generation and drops its entries.
func (c *Local) Invalidate(_ context.Context, ns string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[ns]++
	prefix := ns + "|"
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
	return nil
}
