package query

import "context"

type MutationConfig[V, R any] struct {
	Fn func(ctx context.Context, vars V) (R, error)
	// OnSuccess runs after Fn succeeds and before invalidation. An error
	// fails the mutation.
	OnSuccess func(ctx context.Context, vars V, res R) error
	// Invalidates lists the key prefixes to invalidate on success.
	Invalidates func(vars V, res R) []Key
	// InvalidateAll invalidates every entry on success.
	InvalidateAll bool
	// ClearCache drops every entry on success.
	ClearCache bool
}

// Mutation is a server write that invalidates cached reads when it succeeds.
// Cached data is never patched locally.
type Mutation[V, R any] struct {
	c   *Client
	cfg MutationConfig[V, R]
}

func NewMutation[V, R any](c *Client, cfg MutationConfig[V, R]) *Mutation[V, R] {
	return &Mutation[V, R]{c: c, cfg: cfg}
}

// Run executes the mutation, retrying it up to MutationRetry times.
func (m *Mutation[V, R]) Run(ctx context.Context, vars V) (R, error) {
	res, err := withRetry(ctx, m.c, m.c.opts.MutationRetry, func(ctx context.Context) (R, error) {
		return m.cfg.Fn(ctx, vars)
	})
	if err != nil {
		var zero R
		return zero, err
	}

	if m.cfg.OnSuccess != nil {
		if err := m.cfg.OnSuccess(ctx, vars, res); err != nil {
			var zero R
			return zero, err
		}
	}

	switch {
	case m.cfg.ClearCache:
		m.c.Clear()
	case m.cfg.InvalidateAll:
		m.c.InvalidateAll()
	case m.cfg.Invalidates != nil:
		for _, k := range m.cfg.Invalidates(vars, res) {
			m.c.Invalidate(k)
		}
	}
	return res, nil
}
