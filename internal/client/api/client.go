// Package api is the HTTP client of the social feed backend and the endpoint
// modules built on top of it.
//
// Every request carries the stored tokens as a composite Authorization
// header. A 401 response clears the credential store, fires the registered
// unauthorized hooks and surfaces an error notice; it is never retried here.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/storage"
	"github.com/dmitrijs2005/socialfeed/internal/common"
	"github.com/dmitrijs2005/socialfeed/internal/logging"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const DefaultTimeout = 10 * time.Second

// CredentialStore is the part of the persistent store the client needs.
type CredentialStore interface {
	Credential(ctx context.Context) (models.Credential, error)
	ClearAll(ctx context.Context) error
}

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Platform string
	// HTTPClient overrides the underlying transport, mostly for tests.
	HTTPClient *http.Client
}

type Client struct {
	rc       *resty.Client
	store    CredentialStore
	notifier notice.Notifier
	log      logging.Logger

	mu             sync.Mutex
	onUnauthorized []func()
}

func NewClient(cfg Config, store CredentialStore, n notice.Notifier, l logging.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if n == nil {
		n = notice.Discard
	}

	rc := resty.New()
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	}
	rc.SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeaders(map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
			"User-Agent":   cfg.Platform,
		})

	rc.SetLogger(newRestyLogger(l))

	c := &Client{rc: rc, store: store, notifier: n, log: l}
	rc.OnBeforeRequest(c.injectHeaders)
	return c
}

// OnUnauthorized registers fn to run after a 401 cleared the credentials.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = append(c.onUnauthorized, fn)
	c.mu.Unlock()
}

func (c *Client) injectHeaders(_ *resty.Client, r *resty.Request) error {
	ctx := r.Context()
	r.SetHeader(common.RequestIDHeaderName, uuid.NewString())

	cred, err := c.store.Credential(ctx)
	switch {
	case errors.Is(err, storage.ErrNoCredential):
		return nil
	case err != nil:
		c.log.Warn(ctx, "token lookup failed, sending request unauthenticated", "error", err)
		return nil
	}
	r.SetHeader(common.AuthorizationHeaderName,
		common.TokenPrefix+cred.AccessToken+common.TokenPrefix+cred.RefreshToken)
	return nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	req := c.rc.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Debug(ctx, "request failed", "method", method, "path", path,
			"request_id", req.Header.Get(common.RequestIDHeaderName), "error", err)
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}

	c.log.Debug(ctx, "request done", "method", method, "path", path,
		"status", resp.StatusCode(), "request_id", resp.Request.Header.Get(common.RequestIDHeaderName))

	if resp.IsSuccess() {
		return resp.Body(), nil
	}

	se := &StatusError{
		StatusCode: resp.StatusCode(),
		Message:    serverMessage(resp.Body()),
		Body:       resp.Body(),
	}
	if se.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized(ctx, se)
	}
	return nil, se
}

// handleUnauthorized runs once per failed request; the request itself is
// not replayed.
func (c *Client) handleUnauthorized(ctx context.Context, se *StatusError) {
	ctx = context.WithoutCancel(ctx)
	if err := c.store.ClearAll(ctx); err != nil {
		c.log.Error(ctx, "failed to clear credentials after 401", "error", err)
	}

	c.mu.Lock()
	hooks := append([]func(){}, c.onUnauthorized...)
	c.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}

	c.notifier.Notify(notice.Error("Error", se.Message))
}

// restyLogger routes resty's internal messages to the application logger.
// resty hands over printf-style messages without a request context, so each
// one becomes a constant record with the rendered text under "detail".
type restyLogger struct {
	log logging.Logger
}

func newRestyLogger(l logging.Logger) restyLogger {
	return restyLogger{log: l.With("component", "resty")}
}

func (r restyLogger) Errorf(format string, v ...any) {
	r.log.Error(context.Background(), "resty error", "detail", restyDetail(format, v))
}

func (r restyLogger) Warnf(format string, v ...any) {
	r.log.Warn(context.Background(), "resty warning", "detail", restyDetail(format, v))
}

func (r restyLogger) Debugf(format string, v ...any) {
	r.log.Debug(context.Background(), "resty debug", "detail", restyDetail(format, v))
}

func restyDetail(format string, v []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
