// Package cache holds the read cache for public content and the
// best-effort invalidation that follows every content mutation.
//
// Entries are grouped by namespace (for example "content:team"). A mutation
// invalidates the whole namespace; readers repopulate on the next miss.
package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by the cache_backend config key.
const (
	BackendLocal = "local"
	BackendRedis = "redis"
	BackendOff   = "off"
)

// Cache is a namespaced byte cache. Implementations are safe for
// concurrent use. Get misses on any backend error.
//
// Readers call Generation before loading from the store and pass the
// result to Set. Set drops (or strands) the value when ns was invalidated
// in between, so a slow read never re-caches data older than a mutation.
type Cache interface {
	Get(ctx context.Context, ns, key string) ([]byte, bool)
	Generation(ctx context.Context, ns string) (int64, error)
	Set(ctx context.Context, ns, key string, gen int64, val []byte)
	Invalidate(ctx context.Context, ns string) error
}

// ContentNamespace is the namespace for a reorderable collection's reads.
func ContentNamespace(collection string) string {
	return "content:" + collection
}

// ValidBackend reports whether name is a known backend.
func ValidBackend(name string) bool {
	switch name {
	case BackendLocal, BackendRedis, BackendOff:
		return true
	}
	return false
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, string) ([]byte, bool) { return nil, false }
func (Nop) Generation(context.Context, string) (int64, error)  { return 0, nil }
func (Nop) Set(context.Context, string, string, int64, []byte) {}
func (Nop) Invalidate(context.Context, string) error           { return nil }

func nsKey(ns string, gen int64, key string) string {
	return fmt.Sprintf("%s|%d|%s", ns, gen, key)
}
