package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newTestClient(t *testing.T) (*Client, *StubClock) {
	t.Helper()
	clock := NewStubClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	opts := DefaultOptions()
	opts.RetryDelay = time.Millisecond
	opts.Clock = clock
	return NewClient(opts, logging.NewNopLogger()), clock
}

func counter(calls *atomic.Int32, v string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		calls.Add(1)
		return v, nil
	}
}

func TestFetch_CachesFreshEntry(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	var calls atomic.Int32

	v, err := Fetch(ctx, c, Key{"user", "u1"}, counter(&calls, "ada"))
	require.NoError(t, err)
	assert.Equal(t, "ada", v)

	v, err = Fetch(ctx, c, Key{"user", "u1"}, counter(&calls, "other"))
	require.NoError(t, err)
	assert.Equal(t, "ada", v)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_DeduplicatesConcurrentReads(t *testing.T) {
	c, _ := newTestClient(t)
	var calls atomic.Int32
	release := make(chan struct{})

	fn := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	const n = 10
	var wg sync.WaitGroup
	results := make([]int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Fetch(context.Background(), c, Key{"posts", ""}, fn)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// let every goroutine join the in-flight call before it completes
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, 42, v)
	}
}

func TestFetch_StaleServedThenRefreshed(t *testing.T) {
	c, clock := newTestClient(t)
	ctx := context.Background()
	var calls atomic.Int32
	fn := func(context.Context) (int32, error) {
		return calls.Add(1), nil
	}

	v, err := Fetch(ctx, c, Key{"notifications"}, fn)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v)

	clock.Advance(time.Minute + time.Second)

	v, err = Fetch(ctx, c, Key{"notifications"}, fn)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v, "stale value is served immediately")

	assert.Eventually(t, func() bool {
		got, ok := Peek[int32](c, Key{"notifications"})
		return ok && got == 2
	}, time.Second, 5*time.Millisecond)
}

func TestInvalidate_ByPrefix(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	var posts, comments atomic.Int32

	_, err := Fetch(ctx, c, Key{"posts", "ada"}, counter(&posts, "p"))
	require.NoError(t, err)
	_, err = Fetch(ctx, c, Key{"comments", "p1"}, counter(&comments, "c"))
	require.NoError(t, err)

	c.Invalidate(Key{"posts"})

	_, err = Fetch(ctx, c, Key{"posts", "ada"}, counter(&posts, "p"))
	require.NoError(t, err)
	_, err = Fetch(ctx, c, Key{"comments", "p1"}, counter(&comments, "c"))
	require.NoError(t, err)

	assert.Equal(t, int32(2), posts.Load())
	assert.Equal(t, int32(1), comments.Load())
}

func TestInvalidate_DiscardsLoadStartedBefore(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	key := Key{"posts", ""}

	var calls, version atomic.Int32
	version.Store(1)
	release := make(chan struct{})
	fn := func(context.Context) (int32, error) {
		n := calls.Add(1)
		v := version.Load()
		if n == 1 {
			<-release
		}
		return v, nil
	}

	first := make(chan int32, 1)
	go func() {
		v, _ := Fetch(ctx, c, key, fn)
		first <- v
	}()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	version.Store(2)
	c.Invalidate(Key{"posts"})

	_, ok := Peek[int32](c, key)
	assert.False(t, ok, "invalidated entry is not served")

	v, err := Fetch(ctx, c, key, fn)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v, "read after invalidation does not join the older load")
	assert.Equal(t, int32(2), calls.Load())

	close(release)
	assert.Equal(t, int32(1), <-first)

	v, err = Fetch(ctx, c, key, fn)
	require.NoError(t, err)
	assert.Equal(t, int32(2), v, "older load does not overwrite the newer value")
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_Retries(t *testing.T) {
	tests := []struct {
		name        string
		failures    int32
		shouldRetry func(error) bool
		wantCalls   int32
		wantErr     bool
	}{
		{name: "recovers after two failures", failures: 2, wantCalls: 3},
		{name: "gives up after two retries", failures: 10, wantCalls: 3, wantErr: true},
		{name: "permanent error", failures: 10, shouldRetry: func(error) bool { return false }, wantCalls: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t)
			c.opts.ShouldRetry = tt.shouldRetry
			var calls atomic.Int32

			_, err := Fetch(context.Background(), c, Key{"user", "u1"}, func(context.Context) (string, error) {
				if calls.Add(1) <= tt.failures {
					return "", errBoom
				}
				return "ok", nil
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, errBoom)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestFetch_CallerCancelDoesNotAbortLoad(t *testing.T) {
	c, _ := newTestClient(t)
	release := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Fetch(ctx, c, Key{"user", "u1"}, func(context.Context) (string, error) {
			<-release
			return "ada", nil
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	close(release)
	assert.Eventually(t, func() bool {
		v, ok := Peek[string](c, Key{"user", "u1"})
		return ok && v == "ada"
	}, time.Second, 5*time.Millisecond)
}

func TestClear_DropsEntriesAndInFlightResults(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	var calls atomic.Int32

	_, err := Fetch(ctx, c, Key{"user", "u1"}, counter(&calls, "ada"))
	require.NoError(t, err)

	release := make(chan struct{})
	go func() {
		_, _ = Fetch(ctx, c, Key{"posts", ""}, func(context.Context) (string, error) {
			<-release
			return "late", nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	c.Clear()
	close(release)
	time.Sleep(20 * time.Millisecond)

	_, ok := Peek[string](c, Key{"posts", ""})
	assert.False(t, ok)
	_, ok = Peek[string](c, Key{"user", "u1"})
	assert.False(t, ok)
}

func TestCollect_EvictsUnusedUnlessSubscribed(t *testing.T) {
	c, clock := newTestClient(t)
	ctx := context.Background()
	var calls atomic.Int32

	_, err := Fetch(ctx, c, Key{"user", "u1"}, counter(&calls, "a"))
	require.NoError(t, err)
	_, err = Fetch(ctx, c, Key{"comments", "p1"}, counter(&calls, "b"))
	require.NoError(t, err)

	unsubscribe := c.Subscribe(Key{"comments"}, func(Event) {})

	clock.Advance(4 * time.Minute)
	assert.Equal(t, 0, c.Collect())

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, c.Collect())
	assert.Equal(t, 1, c.Len())

	unsubscribe()
	assert.Equal(t, 1, c.Collect())
	assert.Equal(t, 0, c.Len())
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	var calls atomic.Int32

	var mu sync.Mutex
	var events []EventType
	unsubscribe := c.Subscribe(Key{"posts"}, func(ev Event) {
		mu.Lock()
		events = append(events, ev.Type)
		mu.Unlock()
	})
	defer unsubscribe()

	_, err := Fetch(ctx, c, Key{"posts", ""}, counter(&calls, "x"))
	require.NoError(t, err)
	_, err = Fetch(ctx, c, Key{"user", "u1"}, counter(&calls, "y"))
	require.NoError(t, err)
	c.Invalidate(Key{"posts"})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{EventUpdated, EventInvalidated}, events)
}

func TestStartGC_StopsWithContext(t *testing.T) {
	c, clock := newTestClient(t)
	var calls atomic.Int32
	_, err := Fetch(context.Background(), c, Key{"user", "u1"}, counter(&calls, "a"))
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.StartGC(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)
}
