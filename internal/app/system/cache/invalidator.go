package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/orgsite/internal/app/system/metrics"
	"go.uber.org/zap"
)

const invalidateTimeout = 3 * time.Second

// Invalidator issues fire-and-forget namespace invalidations. Failures are
// logged and counted; they never reach the request that caused them.
type Invalidator struct {
	cache   Cache
	log     *zap.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewInvalidator wraps c. A nil c behaves like Nop.
func NewInvalidator(c Cache, logger *zap.Logger, m *metrics.Metrics) *Invalidator {
	if c == nil {
		c = Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{cache: c, log: logger, metrics: m}
}

// Invalidate schedules invalidation of ns and returns immediately.
// A nil Invalidator is a no-op.
func (v *Invalidator) Invalidate(ctx context.Context, ns string) {
	if v == nil {
		return
	}
	if !v.track() {
		v.log.Debug("cache invalidation dropped after close", zap.String("namespace", ns))
		return
	}
	go func(ctx context.Context) {
		defer v.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				v.log.Error("cache invalidation panicked", zap.String("namespace", ns), zap.Any("panic", rec))
				v.metrics.Invalidation(ns, false)
			}
		}()

		ctx, cancel := context.WithTimeout(ctx, invalidateTimeout)
		defer cancel()

		if err := v.cache.Invalidate(ctx, ns); err != nil {
			v.log.Warn("cache invalidation failed", zap.String("namespace", ns), zap.Error(err))
			v.metrics.Invalidation(ns, false)
			return
		}
		v.metrics.Invalidation(ns, true)
	}(context.WithoutCancel(ctx))
}

// track registers one pending invalidation. It reports false once Close
// has been called. Holding mu keeps Add from racing a concurrent Wait.
func (v *Invalidator) track() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	v.wg.Add(1)
	return true
}

// Wait blocks until scheduled invalidations finish. Invalidate calls made
// while Wait is draining block until it returns.
func (v *Invalidator) Wait() {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wg.Wait()
}

// Close stops accepting invalidations and waits for pending ones.
func (v *Invalidator) Close() {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.wg.Wait()
}
