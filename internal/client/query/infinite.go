package query

import (
	"context"
	"fmt"
	"slices"
)

// Pages is the accumulated state of an infinite query: pages in arrival
// order and the cursor each was fetched with.
type Pages[P any] struct {
	Pages  []P
	Params []int
}

// Infinite is a paginated query stored under a single key.
type Infinite[P any] struct {
	c     *Client
	key   Key
	first int
	fetch func(ctx context.Context, cursor int) (P, error)
	next  func(last P) (int, bool)
}

// NewInfinite builds an infinite query. next derives the cursor of the page
// after last and reports false when there is none.
func NewInfinite[P any](c *Client, key Key, first int,
	fetch func(ctx context.Context, cursor int) (P, error),
	next func(last P) (int, bool),
) *Infinite[P] {
	return &Infinite[P]{c: c, key: key, first: first, fetch: fetch, next: next}
}

func (q *Infinite[P]) Key() Key {
	return q.key
}

// Fetch returns the accumulated pages, loading the first page when the
// entry is missing or invalidated. A reload always restarts at the first
// page.
func (q *Infinite[P]) Fetch(ctx context.Context) (Pages[P], error) {
	return Fetch(ctx, q.c, q.key, func(ctx context.Context) (Pages[P], error) {
		p, err := q.fetch(ctx, q.first)
		if err != nil {
			return Pages[P]{}, err
		}
		return Pages[P]{Pages: []P{p}, Params: []int{q.first}}, nil
	})
}

// HasNextPage reports whether the last loaded page points at another one.
// It is false while the query is invalidated, since the next read reloads
// from the first page.
func (q *Infinite[P]) HasNextPage() bool {
	cur, _, ok := q.current()
	if !ok {
		return false
	}
	_, ok = q.next(cur.Pages[len(cur.Pages)-1])
	return ok
}

// FetchNextPage loads the page after the last one and appends it. Without a
// next cursor it returns the current pages and makes no request. A missing
// or invalidated query is loaded from the first page instead. Concurrent
// calls share one request.
func (q *Infinite[P]) FetchNextPage(ctx context.Context) (Pages[P], error) {
	cur, stamp, ok := q.current()
	if !ok {
		return q.Fetch(ctx)
	}
	cursor, ok := q.next(cur.Pages[len(cur.Pages)-1])
	if !ok {
		return cur, nil
	}

	gen := q.c.currentGeneration()
	bg := context.WithoutCancel(ctx)
	ch := q.c.group.DoChan(fmt.Sprintf("%s#%d", q.key, cursor), func() (any, error) {
		p, err := withRetry(bg, q.c, q.c.opts.Retry, func(ctx context.Context) (P, error) {
			return q.fetch(ctx, cursor)
		})
		if err != nil {
			q.c.log.Warn(bg, "next page failed", "key", q.key.String(), "cursor", cursor, "error", err)
			return nil, err
		}
		return p, nil
	})

	var p P
	select {
	case r := <-ch:
		if r.Err != nil {
			return Pages[P]{}, r.Err
		}
		p = r.Val.(P)
	case <-ctx.Done():
		return Pages[P]{}, ctx.Err()
	}

	updated, ok := q.appendPage(gen, stamp, cursor, p)
	if !ok {
		return q.Fetch(ctx)
	}
	return updated, nil
}

// current returns the cached pages and the invalidation stamp they belong
// to. ok is false when there is nothing valid to continue from.
func (q *Infinite[P]) current() (Pages[P], uint64, bool) {
	c := q.c
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[q.key.String()]
	if !ok || !e.hasData || e.invalidated {
		return Pages[P]{}, 0, false
	}
	cur, ok := e.data.(Pages[P])
	if !ok || len(cur.Pages) == 0 {
		return Pages[P]{}, 0, false
	}
	return cur, e.stamp, true
}

// appendPage adds p to the entry if the entry still ends right before cursor.
// It reports false when the query was invalidated, reloaded or cleared since
// the request started; the page is dropped then. When another caller already
// appended the same page the current state is returned.
func (q *Infinite[P]) appendPage(gen, stamp uint64, cursor int, p P) (Pages[P], bool) {
	c := q.c
	c.mu.Lock()
	e, ok := c.entries[q.key.String()]
	if !ok || !e.hasData || e.invalidated || e.stamp != stamp || gen != c.generation {
		c.mu.Unlock()
		return Pages[P]{}, false
	}
	cur, _ := e.data.(Pages[P])
	if len(cur.Pages) == 0 {
		c.mu.Unlock()
		return Pages[P]{}, false
	}
	if next, ok := q.next(cur.Pages[len(cur.Pages)-1]); !ok || next != cursor {
		c.mu.Unlock()
		return cur, true
	}
	updated := Pages[P]{
		Pages:  append(slices.Clone(cur.Pages), p),
		Params: append(slices.Clone(cur.Params), cursor),
	}
	e.data = updated
	e.accessedAt = c.opts.Clock.Now()
	c.mu.Unlock()

	c.notify(Event{Key: q.key, Type: EventUpdated})
	return updated, true
}
