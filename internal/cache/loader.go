package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc fetches the value for a key on a cache miss.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Loader puts a singleflight group in front of a cache so that concurrent
// misses for the same key trigger a single load.
type Loader[T any] struct {
	cache   Cache[T]
	group   singleflight.Group
	timeout time.Duration

	mu  sync.Mutex
	gen atomic.Uint64
}

// NewLoader wraps c. Loads are bounded by timeout when it is positive.
func NewLoader[T any](c Cache[T], timeout time.Duration) *Loader[T] {
	return &Loader[T]{cache: c, timeout: timeout}
}

// Get returns the cached value for key or loads it. Failed loads are not cached.
// Callers only share a load started in the same generation, so a Get after
// Invalidate never receives a result loaded before it. The load runs
// detached from ctx: a caller giving up does not cancel it for the others.
func (l *Loader[T]) Get(ctx context.Context, key string, load LoadFunc[T]) (T, error) {
	var zero T
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	gen := l.gen.Load()
	flight := key + "#" + strconv.FormatUint(gen, 10)
	ch := l.group.DoChan(flight, func() (any, error) {
		lctx := context.WithoutCancel(ctx)
		if l.timeout > 0 {
			var cancel context.CancelFunc
			lctx, cancel = context.WithTimeout(lctx, l.timeout)
			defer cancel()
		}
		v, err := load(lctx)
		if err != nil {
			return nil, err
		}
		l.store(gen, key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (l *Loader[T]) store(gen uint64, key string, v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.gen.Load() == gen {
		l.cache.Set(key, v)
	}
}

// Invalidate drops every cached entry and detaches in-flight loads.
func (l *Loader[T]) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen.Add(1)
	l.cache.Clear()
}
