package query

import (
	"context"
	"fmt"
)

type result struct {
	data any
	err  error
}

// Fetch returns the cached value for key, loading it with fn when the entry
// is missing or invalidated. A stale entry is returned immediately and
// refreshed in the background. Concurrent loads of one key share a single
// call to fn.
//
// Cancelling ctx abandons the wait only; the load itself runs to completion
// and still updates the cache.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	c.Collect()

	load := func(ctx context.Context) (any, error) {
		return fn(ctx)
	}

	now := c.opts.Clock.Now()
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if ok && e.hasData && !e.invalidated {
		e.accessedAt = now
		data := e.data
		stale := now.Sub(e.updatedAt) >= c.opts.StaleTime
		c.mu.Unlock()

		if stale {
			c.log.Debug(ctx, "serving stale entry, refreshing", "key", key.String())
			c.refresh(ctx, key, load)
		}
		v, ok := data.(T)
		if !ok {
			return zero, fmt.Errorf("cached value for %s has type %T", key, data)
		}
		return v, nil
	}
	c.mu.Unlock()

	res := c.start(ctx, key, load)
	select {
	case r := <-res:
		if r.err != nil {
			return zero, r.err
		}
		v, ok := r.data.(T)
		if !ok {
			return zero, fmt.Errorf("loaded value for %s has type %T", key, r.data)
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Peek returns the cached value for key without loading or touching it.
// Invalidated entries are reported as absent.
func Peek[T any](c *Client, key Key) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || !e.hasData || e.invalidated {
		return zero, false
	}
	v, ok := e.data.(T)
	return v, ok
}

// refresh reloads key in the background, joining an in-flight load if any.
func (c *Client) refresh(ctx context.Context, key Key, load func(context.Context) (any, error)) {
	res := c.start(ctx, key, load)
	go func() { <-res }()
}

// start begins (or joins) the load of key and delivers its outcome on the
// returned channel.
func (c *Client) start(ctx context.Context, key Key, load func(context.Context) (any, error)) <-chan result {
	ks := key.String()
	ctx = context.WithoutCancel(ctx)

	// The entry must exist before the call is registered so that Invalidate
	// can reach it.
	c.mu.Lock()
	if _, ok := c.entries[ks]; !ok {
		c.entries[ks] = &entry{key: key, accessedAt: c.opts.Clock.Now()}
	}
	c.mu.Unlock()

	ch := c.group.DoChan(ks, func() (any, error) {
		return c.load(ctx, key, load)
	})

	out := make(chan result, 1)
	go func() {
		r := <-ch
		out <- result{data: r.Val, err: r.Err}
	}()
	return out
}

func (c *Client) load(ctx context.Context, key Key, load func(context.Context) (any, error)) (any, error) {
	ks := key.String()

	c.mu.Lock()
	gen := c.generation
	e, ok := c.entries[ks]
	if !ok {
		e = &entry{key: key, accessedAt: c.opts.Clock.Now()}
		c.entries[ks] = e
	}
	stamp := e.stamp
	e.loads++
	c.mu.Unlock()

	v, err := withRetry(ctx, c, c.opts.Retry, load)

	now := c.opts.Clock.Now()
	c.mu.Lock()
	e.loads--
	if gen != c.generation {
		c.mu.Unlock()
		return v, err
	}
	if stamp != e.stamp {
		c.mu.Unlock()
		c.log.Debug(ctx, "discarding load started before invalidation", "key", ks)
		return v, err
	}
	ev := Event{Key: key, Type: EventUpdated}
	if err != nil {
		e.err = err
		ev.Type = EventFailed
	} else {
		e.data = v
		e.hasData = true
		e.err = nil
		e.updatedAt = now
		e.invalidated = false
	}
	e.accessedAt = now
	c.mu.Unlock()

	if err != nil {
		c.log.Warn(ctx, "query failed", "key", ks, "error", err)
	}
	c.notify(ev)
	return v, err
}

func (c *Client) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}
