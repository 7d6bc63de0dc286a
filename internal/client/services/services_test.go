package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/client/api"
	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/query"
	"github.com/dmitrijs2005/socialfeed/internal/logging"
)

func newCache(t *testing.T) *query.Client {
	t.Helper()
	opts := query.DefaultOptions()
	opts.RetryDelay = time.Millisecond
	opts.ShouldRetry = api.Retryable
	return query.NewClient(opts, logging.NewNopLogger())
}

type fakeSession struct {
	mu      sync.Mutex
	user    *models.User
	loginFn func(p *models.AuthPayload) error
	updated []models.User
	logouts int
}

func (f *fakeSession) Login(_ context.Context, p *models.AuthPayload) error {
	if f.loginFn != nil {
		if err := f.loginFn(p); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := p.User
	f.user = &u
	return nil
}

func (f *fakeSession) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = nil
	f.logouts++
	return nil
}

func (f *fakeSession) User() *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user
}

func (f *fakeSession) UpdateUser(_ context.Context, u models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, u)
	f.user = &u
	return nil
}

func titles(r *notice.Recorder) []string {
	var out []string
	for _, n := range r.Notices() {
		out = append(out, n.Title)
	}
	return out
}
