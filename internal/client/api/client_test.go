package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/storage"
	"github.com/dmitrijs2005/socialfeed/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	cred    *models.Credential
	err     error
	cleared int
}

func (f *fakeStore) Credential(context.Context) (models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Credential{}, f.err
	}
	if f.cred == nil {
		return models.Credential{}, storage.ErrNoCredential
	}
	return *f.cred, nil
}

func (f *fakeStore) ClearAll(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cred = nil
	f.cleared++
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc, store *fakeStore, rec *notice.Recorder) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second, Platform: "linux"},
		store, rec, logging.NewNopLogger())
}

func TestClient_InjectsCompositeAuthorization(t *testing.T) {
	var got http.Header
	store := &fakeStore{cred: &models.Credential{AccessToken: "A", RefreshToken: "R"}}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{"data":{}}`))
	}, store, &notice.Recorder{})

	_, err := c.Get(context.Background(), "/posts", nil)
	require.NoError(t, err)

	assert.Equal(t, "token=Atoken=R", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "linux", got.Get("User-Agent"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))
}

func TestClient_NoTokenSendsUnauthenticated(t *testing.T) {
	for name, store := range map[string]*fakeStore{
		"absent":        {},
		"lookup failed": {err: errors.New("disk gone")},
	} {
		t.Run(name, func(t *testing.T) {
			var auth string
			var seen bool
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				auth, seen = r.Header.Get("Authorization"), true
			}, store, &notice.Recorder{})

			_, err := c.Post(context.Background(), "/auth/login", loginRequest{Email: "a@b.co"})
			require.NoError(t, err)
			assert.True(t, seen)
			assert.Empty(t, auth)
		})
	}
}

func TestClient_UnauthorizedClearsAndNotifies(t *testing.T) {
	var calls int
	store := &fakeStore{cred: &models.Credential{AccessToken: "A", RefreshToken: "R"}}
	rec := &notice.Recorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Token expired"}`))
	}, store, rec)

	var hooked int
	c.OnUnauthorized(func() { hooked++ })

	_, err := c.Get(context.Background(), "/posts", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Token expired", MessageOf(err))

	assert.Equal(t, 1, calls, "401 must not be replayed")
	assert.Equal(t, 1, store.cleared)
	assert.Equal(t, 1, hooked)
	require.Len(t, rec.Notices(), 1)
	assert.Equal(t, notice.Error("Error", "Token expired"), rec.Notices()[0])
}

func TestClient_StatusErrorPassesThrough(t *testing.T) {
	store := &fakeStore{}
	rec := &notice.Recorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Email already exists"}`))
	}, store, rec)

	_, err := c.Post(context.Background(), "/auth/register", nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "Email already exists", se.Message)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 0, store.cleared)
	assert.Empty(t, rec.Notices())
}

func TestClient_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url, Timeout: time.Second}, &fakeStore{}, nil, logging.NewNopLogger())
	_, err := c.Get(context.Background(), "/posts", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, IsTimeout(err))
}

func TestRestyLogger_StructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	l := newRestyLogger(logging.NewTextLogger(&buf, "debug"))

	l.Warnf("retrying %s, attempt %d\n", "/posts", 2)
	l.Errorf("giving up: %v", errors.New("dial tcp"))

	out := buf.String()
	assert.Contains(t, out, `msg="resty warning"`)
	assert.Contains(t, out, "component=resty")
	assert.Contains(t, out, `detail="retrying /posts, attempt 2"`)
	assert.Contains(t, out, `msg="resty error"`)
	assert.Contains(t, out, `detail="giving up: dial tcp"`)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, &fakeStore{}, nil, logging.NewNopLogger())
	_, err := c.Get(context.Background(), "/posts", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.True(t, IsTimeout(err))
}

func TestClient_CallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL}, &fakeStore{}, nil, logging.NewNopLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "/posts", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(ErrUnavailable))
	assert.True(t, Retryable(&StatusError{StatusCode: http.StatusInternalServerError}))
	assert.False(t, Retryable(&StatusError{StatusCode: http.StatusUnauthorized}))
	assert.False(t, Retryable(context.Canceled))
}
