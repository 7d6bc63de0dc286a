package push

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/logging"
	"github.com/stretchr/testify/assert"
)

type fakeRegistry struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (f *fakeRegistry) RegisterDevice(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.err
}

func wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("registration did not finish")
	}
}

func TestRegistrar_RegistersStaticToken(t *testing.T) {
	reg := &fakeRegistry{}
	r := NewRegistrar(Static{Value: "device-1"}, reg, logging.NewNopLogger())

	wait(t, r.Start(context.Background()))
	assert.Equal(t, []string{"device-1"}, reg.tokens)
}

func TestRegistrar_SkipsWhenUnavailable(t *testing.T) {
	for name, p := range map[string]Provider{
		"unavailable":  Unavailable{Reason: "no device"},
		"empty static": Static{},
	} {
		t.Run(name, func(t *testing.T) {
			reg := &fakeRegistry{}
			wait(t, NewRegistrar(p, reg, logging.NewNopLogger()).Start(context.Background()))
			assert.Empty(t, reg.tokens)
		})
	}
}

func TestRegistrar_FailureIsSwallowed(t *testing.T) {
	reg := &fakeRegistry{err: errors.New("500")}
	r := NewRegistrar(Static{Value: "device-1"}, reg, logging.NewNopLogger())

	wait(t, r.Start(context.Background()))
	assert.Len(t, reg.tokens, 1)
}

func TestUnavailable_TokenError(t *testing.T) {
	_, err := Unavailable{Reason: "simulator"}.Token(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "simulator")
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want string
	}{
		{"comment with post", map[string]any{"type": "comment", "postId": "p1"}, "/comments/p1"},
		{"like with numeric post", map[string]any{"type": "like", "postId": 42}, "/comments/42"},
		{"like without post falls to screen", map[string]any{"type": "like", "screen": "/profile"}, "/profile"},
		{"explicit screen", map[string]any{"type": "follow", "screen": "/profile/u1"}, "/profile/u1"},
		{"unknown", map[string]any{"type": "follow"}, "/notifications"},
		{"nil data", nil, "/notifications"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.data))
		})
	}
}

func TestHandler(t *testing.T) {
	rec := &notice.Recorder{}
	h := NewHandler(rec, logging.NewNopLogger())
	ctx := context.Background()

	h.Received(ctx, Message{Body: "Ada liked your post"})
	h.Received(ctx, Message{Title: "New comment", Body: "nice"})
	assert.Equal(t, []notice.Notice{
		notice.Info("New Notification", "Ada liked your post"),
		notice.Info("New comment", "nice"),
	}, rec.Notices())

	assert.Equal(t, "/comments/p9", h.Tapped(ctx, Message{Data: map[string]any{"type": "comment", "postId": "p9"}}))
}
