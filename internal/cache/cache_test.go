package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUCache_GetSetDelete(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Fatalf("Get(a) = %q, %v", v, ok)
	}

	// "b" is now least recently used.
	c.Set("c", "3")
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("a should be deleted")
	}

	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() after Clear = %d", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("x", 1)
	c.Set("y", 2)
	now = now.Add(30 * time.Second)
	c.Set("y", 3)

	now = now.Add(45 * time.Second)
	if _, ok := c.Get("x"); ok {
		t.Error("x should have expired")
	}
	if v, ok := c.Get("y"); !ok || v != 3 {
		t.Errorf("Get(y) = %d, %v", v, ok)
	}

	now = now.Add(time.Hour)
	if n := NewJanitor(c).Sweep(); n != 1 {
		t.Errorf("Sweep() = %d, want 1", n)
	}
}

func TestJanitor_RunStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewJanitor().Run(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestLoader_DeduplicatesConcurrentLoads(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](4, time.Minute), 0)
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := l.Get(context.Background(), "recent:5", load)
			if err != nil {
				t.Errorf("Get: %v", err)
			}
			results[i] = v
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() < 1 || calls.Load() > int32(len(results)) {
		t.Fatalf("unexpected call count %d", calls.Load())
	}
	for _, v := range results {
		if v != 42 {
			t.Fatalf("got %d, want 42", v)
		}
	}

	// Served from cache now.
	before := calls.Load()
	if v, _ := l.Get(context.Background(), "recent:5", load); v != 42 || calls.Load() != before {
		t.Error("second Get should hit the cache")
	}
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	l := NewLoader[string](NewLRUCache[string](4, time.Minute), 0)
	boom := errors.New("backend down")

	if _, err := l.Get(context.Background(), "k", func(context.Context) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	v, err := l.Get(context.Background(), "k", func(context.Context) (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("Get = %q, %v", v, err)
	}
}

func TestLoader_Invalidate(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](4, time.Minute), 0)
	n := 0
	load := func(context.Context) (int, error) { n++; return n, nil }

	if v, _ := l.Get(context.Background(), "k", load); v != 1 {
		t.Fatalf("first load = %d", v)
	}
	l.Invalidate()
	if v, _ := l.Get(context.Background(), "k", load); v != 2 {
		t.Fatalf("load after invalidate = %d, want 2", v)
	}
}

func TestLoader_GetAfterInvalidateDoesNotJoinOlderLoad(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](4, time.Minute), 0)
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	older := make(chan int, 1)
	go func() {
		v, _ := l.Get(context.Background(), "k", func(context.Context) (int, error) {
			calls.Add(1)
			close(started)
			<-release
			return 1, nil
		})
		older <- v
	}()
	<-started

	l.Invalidate()
	v, err := l.Get(context.Background(), "k", func(context.Context) (int, error) {
		calls.Add(1)
		return 2, nil
	})
	if err != nil || v != 2 {
		t.Fatalf("Get after invalidate = %d, %v; want 2", v, err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want a second load", calls.Load())
	}

	close(release)
	if got := <-older; got != 1 {
		t.Fatalf("older caller got %d, want 1", got)
	}
	if v, _ := l.Get(context.Background(), "k", func(context.Context) (int, error) { return 3, nil }); v != 2 {
		t.Fatalf("cached value = %d, want 2 (older load must not overwrite)", v)
	}
}

func TestLoader_CallerCancelDoesNotCancelLoad(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](4, time.Minute), 0)
	started := make(chan struct{})
	release := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := l.Get(ctx, "k", func(lctx context.Context) (int, error) {
			close(started)
			<-release
			if err := lctx.Err(); err != nil {
				return 0, err
			}
			return 7, nil
		})
		first <- err
	}()
	<-started

	cancel()
	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller error = %v, want context.Canceled", err)
	}
	close(release)

	v, err := l.Get(context.Background(), "k", func(context.Context) (int, error) {
		return 0, errors.New("should have been served by the first load")
	})
	if err != nil || v != 7 {
		t.Fatalf("Get = %d, %v; want 7", v, err)
	}
}

func TestLoader_Timeout(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](4, time.Minute), 10*time.Millisecond)
	_, err := l.Get(context.Background(), "k", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}
