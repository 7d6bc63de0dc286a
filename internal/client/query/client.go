// Package query is a keyed, in-memory cache of server state.
//
// Reads go through Fetch (or an Infinite query for paginated resources) and
// are de-duplicated per key. Writes go through a Mutation, which invalidates
// the key prefixes it declares once it succeeds. Entries become stale after
// StaleTime and are evicted CacheTime after their last use unless something
// is subscribed to them.
package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/logging"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"
)

const maxRetryDelay = 30 * time.Second

type Options struct {
	StaleTime     time.Duration
	CacheTime     time.Duration
	Retry         int
	MutationRetry int
	// RetryDelay is the first backoff step; it doubles per attempt up to 30s.
	RetryDelay time.Duration
	// ShouldRetry decides whether a failed call is attempted again. Nil
	// retries everything except context cancellation.
	ShouldRetry func(error) bool
	Clock       Clock
}

func DefaultOptions() Options {
	return Options{
		StaleTime:     time.Minute,
		CacheTime:     5 * time.Minute,
		Retry:         2,
		MutationRetry: 1,
		RetryDelay:    time.Second,
		Clock:         RealClock{},
	}
}

type EventType int

const (
	EventUpdated EventType = iota
	EventFailed
	EventInvalidated
	EventRemoved
)

type Event struct {
	Key  Key
	Type EventType
}

type entry struct {
	key         Key
	data        any
	hasData     bool
	err         error
	updatedAt   time.Time
	accessedAt  time.Time
	invalidated bool
	// stamp counts invalidations; a load that saw an older stamp is outdated.
	stamp uint64
	loads int
}

type subscription struct {
	prefix Key
	fn     func(Event)
}

type Client struct {
	opts Options
	log  logging.Logger

	mu         sync.Mutex
	entries    map[string]*entry
	subs       map[int]subscription
	nextSub    int
	generation uint64

	group singleflight.Group
}

func NewClient(opts Options, l logging.Logger) *Client {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &Client{
		opts:    opts,
		log:     l,
		entries: make(map[string]*entry),
		subs:    make(map[int]subscription),
	}
}

// Subscribe calls fn for every event on a key with the given prefix until the
// returned function is called. Entries with subscribers are never evicted.
func (c *Client) Subscribe(prefix Key, fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = subscription{prefix: prefix, fn: fn}
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// notify must be called without c.mu held.
func (c *Client) notify(events ...Event) {
	if len(events) == 0 {
		return
	}
	c.mu.Lock()
	var fns []func(Event)
	var evs []Event
	for _, ev := range events {
		for _, s := range c.subs {
			if ev.Key.HasPrefix(s.prefix) {
				fns = append(fns, s.fn)
				evs = append(evs, ev)
			}
		}
	}
	c.mu.Unlock()

	for i, fn := range fns {
		fn(evs[i])
	}
}

func (c *Client) subscribedLocked(k Key) bool {
	for _, s := range c.subs {
		if k.HasPrefix(s.prefix) {
			return true
		}
	}
	return false
}

// Invalidate marks every entry whose key starts with prefix as invalid. The
// next read of such an entry goes to the network, even when a load started
// before the invalidation is still running; that load's result is discarded.
func (c *Client) Invalidate(prefix Key) {
	c.mu.Lock()
	var events []Event
	for ks, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.invalidated = true
			e.stamp++
			c.group.Forget(ks)
			events = append(events, Event{Key: e.key, Type: EventInvalidated})
		}
	}
	c.mu.Unlock()

	c.log.Debug(context.Background(), "cache invalidated", "prefix", prefix.String(), "entries", len(events))
	c.notify(events...)
}

func (c *Client) InvalidateAll() {
	c.Invalidate(nil)
}

// Clear drops every entry. Calls still in flight do not repopulate the cache.
func (c *Client) Clear() {
	c.mu.Lock()
	var events []Event
	for _, e := range c.entries {
		events = append(events, Event{Key: e.key, Type: EventRemoved})
	}
	c.entries = make(map[string]*entry)
	c.generation++
	c.mu.Unlock()

	c.notify(events...)
}

// Collect evicts entries unused for CacheTime that have no subscribers and
// no call in flight. It returns the number of evicted entries.
func (c *Client) Collect() int {
	now := c.opts.Clock.Now()

	c.mu.Lock()
	var events []Event
	for ks, e := range c.entries {
		if e.loads > 0 || now.Sub(e.accessedAt) < c.opts.CacheTime || c.subscribedLocked(e.key) {
			continue
		}
		delete(c.entries, ks)
		events = append(events, Event{Key: e.key, Type: EventRemoved})
	}
	c.mu.Unlock()

	c.notify(events...)
	return len(events)
}

// StartGC runs Collect every interval until ctx is done.
func (c *Client) StartGC(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := c.Collect(); n > 0 {
					c.log.Debug(ctx, "cache entries evicted", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Len returns the number of cached entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Client) shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	if c.opts.ShouldRetry != nil {
		return c.opts.ShouldRetry(err)
	}
	return true
}

func (c *Client) backoff(retries int) retry.Backoff {
	b := retry.NewExponential(c.opts.RetryDelay)
	b = retry.WithCappedDuration(maxRetryDelay, b)
	return retry.WithMaxRetries(uint64(max(retries, 0)), b)
}

// withRetry runs fn, repeating failures that shouldRetry accepts at most
// retries more times.
func withRetry[T any](ctx context.Context, c *Client, retries int, fn func(context.Context) (T, error)) (T, error) {
	var out T
	attempt := 0
	err := retry.Do(ctx, c.backoff(retries), func(ctx context.Context) error {
		attempt++
		v, err := fn(ctx)
		if err != nil {
			if c.shouldRetry(err) {
				if attempt <= retries {
					c.log.Debug(ctx, "call failed, retrying", "attempt", attempt, "error", err)
				}
				return retry.RetryableError(err)
			}
			return err
		}
		out = v
		return nil
	})
	return out, err
}
