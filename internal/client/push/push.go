// Package push obtains the device push token, registers it with the backend
// and turns incoming notifications into notices and navigation targets.
package push

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/logging"
)

var ErrUnavailable = errors.New("push notifications unavailable")

// Provider is a source of device push tokens.
type Provider interface {
	Available() bool
	Token(ctx context.Context) (string, error)
}

// Unavailable is the provider of environments without push support.
type Unavailable struct {
	Reason string
}

func (Unavailable) Available() bool { return false }

func (u Unavailable) Token(context.Context) (string, error) {
	if u.Reason == "" {
		return "", ErrUnavailable
	}
	return "", fmt.Errorf("%w: %s", ErrUnavailable, u.Reason)
}

// Static hands out a preconfigured token.
type Static struct {
	Value string
}

func (s Static) Available() bool { return s.Value != "" }

func (s Static) Token(context.Context) (string, error) {
	if s.Value == "" {
		return "", ErrUnavailable
	}
	return s.Value, nil
}

// DeviceRegistry is the backend endpoint accepting push tokens.
type DeviceRegistry interface {
	RegisterDevice(ctx context.Context, token string) error
}

type Registrar struct {
	provider Provider
	registry DeviceRegistry
	log      logging.Logger
}

func NewRegistrar(p Provider, r DeviceRegistry, l logging.Logger) *Registrar {
	return &Registrar{provider: p, registry: r, log: l}
}

// Start registers the device token in the background. Failures are logged
// and never reported to the caller. The returned channel is closed when the
// attempt is over.
func (r *Registrar) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if !r.provider.Available() {
		r.log.Warn(ctx, "push notifications are not supported in this environment")
		close(done)
		return done
	}

	go func() {
		defer close(done)
		token, err := r.provider.Token(ctx)
		if err != nil {
			r.log.Error(ctx, "error getting push token", "error", err)
			return
		}
		if err := r.registry.RegisterDevice(ctx, token); err != nil {
			r.log.Error(ctx, "failed to register push token", "error", err)
			return
		}
		r.log.Info(ctx, "push token registered with backend")
	}()
	return done
}

// Message is an incoming push notification.
type Message struct {
	Title string
	Body  string
	Data  map[string]any
}

// Route resolves where tapping a notification with payload data leads.
func Route(data map[string]any) string {
	typ, _ := data["type"].(string)
	postID := stringValue(data["postId"])

	switch {
	case (typ == "comment" || typ == "like") && postID != "":
		return "/comments/" + postID
	case stringValue(data["screen"]) != "":
		return stringValue(data["screen"])
	default:
		return "/notifications"
	}
}

func stringValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Handler reacts to notifications delivered while the client runs.
type Handler struct {
	notifier notice.Notifier
	log      logging.Logger
}

func NewHandler(n notice.Notifier, l logging.Logger) *Handler {
	return &Handler{notifier: n, log: l}
}

// Received shows m as an info notice.
func (h *Handler) Received(ctx context.Context, m Message) {
	h.log.Debug(ctx, "notification received", "title", m.Title)
	title := m.Title
	if title == "" {
		title = "New Notification"
	}
	h.notifier.Notify(notice.Info(title, m.Body))
}

// Tapped returns the navigation target for m.
func (h *Handler) Tapped(ctx context.Context, m Message) string {
	target := Route(m.Data)
	h.log.Debug(ctx, "notification tapped", "target", target)
	return target
}
