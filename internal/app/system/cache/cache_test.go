package cache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/orgsite/internal/app/system/cache"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLocal_GetSetInvalidate(t *testing.T) {
	ctx := context.Background()
	c := cache.NewLocal(16, time.Minute)

	c.Set(ctx, "content:team", "list", 0, []byte("team-v1"))
	c.Set(ctx, "content:programs", "list", 0, []byte("programs-v1"))

	if got, ok := c.Get(ctx, "content:team", "list"); !ok || string(got) != "team-v1" {
		t.Fatalf("Get: got (%q, %v)", got, ok)
	}

	if err := c.Invalidate(ctx, "content:team"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := c.Get(ctx, "content:team", "list"); ok {
		t.Error("expected team namespace to be empty after invalidation")
	}
	if _, ok := c.Get(ctx, "content:programs", "list"); !ok {
		t.Error("invalidating team must not touch programs")
	}
}

func TestLocal_NamespaceIsNotAPrefixMatch(t *testing.T) {
	ctx := context.Background()
	c := cache.NewLocal(16, time.Minute)

	c.Set(ctx, "content:team", "list", 0, []byte("a"))
	c.Set(ctx, "content:teams", "list", 0, []byte("b"))

	_ = c.Invalidate(ctx, "content:team")
	if _, ok := c.Get(ctx, "content:teams", "list"); !ok {
		t.Error("content:teams should survive invalidation of content:team")
	}
}

// staleWriteAfterInvalidate captures a generation, invalidates as a
// concurrent mutation would, then writes the now-stale value.
func staleWriteAfterInvalidate(t *testing.T, c cache.Cache) {
	t.Helper()
	ctx := context.Background()

	gen, err := c.Generation(ctx, "content:team")
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	if err := c.Invalidate(ctx, "content:team"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	c.Set(ctx, "content:team", "list", gen, []byte("stale"))

	if got, ok := c.Get(ctx, "content:team", "list"); ok {
		t.Errorf("stale write survived invalidation: got %q", got)
	}

	fresh, err := c.Generation(ctx, "content:team")
	if err != nil {
		t.Fatalf("Generation: %v", err)
	}
	if fresh == gen {
		t.Fatalf("generation did not advance: %d", fresh)
	}
	c.Set(ctx, "content:team", "list", fresh, []byte("fresh"))
	if got, ok := c.Get(ctx, "content:team", "list"); !ok || string(got) != "fresh" {
		t.Errorf("Get after fresh Set: got (%q, %v)", got, ok)
	}
}

func TestLocal_InvalidateDuringReadDropsStaleWrite(t *testing.T) {
	staleWriteAfterInvalidate(t, cache.NewLocal(16, time.Minute))
}

func TestRedis_InvalidateDuringReadDropsStaleWrite(t *testing.T) {
	_, c := setupRedis(t)
	staleWriteAfterInvalidate(t, c)
}

func TestNop_Generation(t *testing.T) {
	gen, err := cache.Nop{}.Generation(context.Background(), "content:team")
	if gen != 0 || err != nil {
		t.Errorf("Generation: got (%d, %v), want (0, nil)", gen, err)
	}
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *cache.Redis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, cache.NewRedis(client, "orgsite:", time.Minute, zap.NewNop())
}

func TestRedis_GetSetInvalidate(t *testing.T) {
	ctx := context.Background()
	_, c := setupRedis(t)

	if _, ok := c.Get(ctx, "content:team", "list"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Set(ctx, "content:team", "list", 0, []byte(`[{"name":"A"}]`))
	if got, ok := c.Get(ctx, "content:team", "list"); !ok || string(got) != `[{"name":"A"}]` {
		t.Fatalf("Get: got (%q, %v)", got, ok)
	}

	if err := c.Invalidate(ctx, "content:team"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok := c.Get(ctx, "content:team", "list"); ok {
		t.Error("expected miss after invalidation")
	}

	gen, err := c.Generation(ctx, "content:team")
	if err != nil || gen != 1 {
		t.Errorf("Generation: got (%d, %v), want (1, nil)", gen, err)
	}
}

func TestRedis_TTLApplied(t *testing.T) {
	ctx := context.Background()
	mr, c := setupRedis(t)

	c.Set(ctx, "content:programs", "list", 0, []byte("x"))
	mr.FastForward(2 * time.Minute)

	if _, ok := c.Get(ctx, "content:programs", "list"); ok {
		t.Error("expected entry to expire")
	}
}

func TestRedis_ServerDownIsAMiss(t *testing.T) {
	ctx := context.Background()
	mr, c := setupRedis(t)
	mr.Close()

	if _, ok := c.Get(ctx, "content:team", "list"); ok {
		t.Error("expected miss when redis is unavailable")
	}
	if err := c.Invalidate(ctx, "content:team"); err == nil {
		t.Error("expected invalidate error when redis is unavailable")
	}
}

type failingCache struct{ cache.Nop }

func (failingCache) Invalidate(context.Context, string) error {
	return errors.New("cache offline")
}

func TestInvalidator_FailureIsLoggedOnly(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	inv := cache.NewInvalidator(failingCache{}, zap.New(core), nil)

	inv.Invalidate(context.Background(), "content:team")
	inv.Wait()

	if logs.FilterMessage("cache invalidation failed").Len() != 1 {
		t.Error("expected invalidation failure to be logged")
	}
}

func TestInvalidator_Nil(t *testing.T) {
	var inv *cache.Invalidator
	inv.Invalidate(context.Background(), "content:team")
	inv.Wait()
	inv.Close()
}

type countingCache struct {
	cache.Nop
	mu    sync.Mutex
	calls int
}

func (c *countingCache) Invalidate(context.Context, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func (c *countingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestInvalidator_ConcurrentWithWait(t *testing.T) {
	cc := &countingCache{}
	inv := cache.NewInvalidator(cc, zap.NewNop(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			inv.Invalidate(context.Background(), "content:team")
		}()
		go func() {
			defer wg.Done()
			inv.Wait()
		}()
	}
	wg.Wait()
	inv.Wait()

	if got := cc.count(); got != 20 {
		t.Errorf("invalidations: got %d, want 20", got)
	}
}

func TestInvalidator_DroppedAfterClose(t *testing.T) {
	cc := &countingCache{}
	inv := cache.NewInvalidator(cc, zap.NewNop(), nil)

	inv.Invalidate(context.Background(), "content:team")
	inv.Close()
	inv.Invalidate(context.Background(), "content:team")
	inv.Wait()

	if got := cc.count(); got != 1 {
		t.Errorf("invalidations: got %d, want 1", got)
	}
}

func TestValidBackend(t *testing.T) {
	for _, b := range []string{"local", "redis", "off"} {
		if !cache.ValidBackend(b) {
			t.Errorf("ValidBackend(%q) = false", b)
		}
	}
	if cache.ValidBackend("memcached") {
		t.Error("memcached should not be valid")
	}
}
