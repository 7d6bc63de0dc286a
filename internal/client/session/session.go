// Package session holds the in-memory authentication state of the client
// and keeps it consistent with the persistent credential store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidLoginResponse = errors.New("invalid response from server - missing user or token")

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Store is the persistent side of the session.
type Store interface {
	SaveSession(ctx context.Context, cred models.Credential, user models.User) error
	Credential(ctx context.Context) (models.Credential, error)
	SaveUser(ctx context.Context, user models.User) error
	User(ctx context.Context) (*models.User, error)
	ClearAll(ctx context.Context) error
}

type Session struct {
	store Store
	log   logging.Logger
	now   func() time.Time

	mu        sync.RWMutex
	user      *models.User
	expiresAt time.Time
	subs      map[int]func(State)
	nextSub   int
}

func New(store Store, l logging.Logger) *Session {
	return &Session{store: store, log: l, now: time.Now, subs: make(map[int]func(State))}
}

// Restore rebuilds the session from the stored profile and token without a
// network round trip. A profile without a token is discarded.
func (s *Session) Restore(ctx context.Context) error {
	user, err := s.store.User(ctx)
	if err != nil {
		s.log.Error(ctx, "error checking stored auth", "error", err)
		return fmt.Errorf("restore session: %w", err)
	}
	if user == nil {
		return nil
	}

	cred, err := s.store.Credential(ctx)
	if err != nil {
		s.log.Warn(ctx, "stored profile has no usable token, clearing", "error", err)
		if err := s.store.ClearAll(ctx); err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
		return nil
	}

	exp, ok := tokenExpiry(cred.AccessToken)
	if ok && !exp.After(s.now()) {
		s.log.Warn(ctx, "stored access token has expired", "expired_at", exp)
	}

	s.set(user, exp)
	s.log.Info(ctx, "session restored", "user_id", user.ID)
	return nil
}

// Login persists the credentials and profile from a login response and
// moves the session to authenticated.
func (s *Session) Login(ctx context.Context, p *models.AuthPayload) error {
	if p == nil || p.Token == "" {
		return ErrInvalidLoginResponse
	}
	if err := s.store.SaveSession(ctx, p.Credential(), p.User); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	exp, _ := tokenExpiry(p.Token)
	u := p.User
	s.set(&u, exp)
	s.log.Info(ctx, "logged in", "user_id", u.ID)
	return nil
}

// Logout clears the persisted credentials and the in-memory user.
func (s *Session) Logout(ctx context.Context) error {
	err := s.store.ClearAll(ctx)
	s.set(nil, time.Time{})
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Invalidate drops the in-memory user after the credentials were cleared
// elsewhere, e.g. by the HTTP client on a 401.
func (s *Session) Invalidate() {
	s.set(nil, time.Time{})
}

// UpdateUser replaces the cached profile of the signed-in user.
func (s *Session) UpdateUser(ctx context.Context, u models.User) error {
	if !s.IsAuthenticated() {
		return nil
	}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return nil
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	return s.State() == Authenticated
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return Unauthenticated
	}
	return Authenticated
}

// ExpiresAt returns the access token expiry when it could be decoded. It is
// informational only.
func (s *Session) ExpiresAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt, !s.expiresAt.IsZero()
}

// Subscribe calls fn on every state transition until the returned function
// is called.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) set(u *models.User, exp time.Time) {
	s.mu.Lock()
	before := s.user != nil
	s.user = u
	s.expiresAt = exp
	after := s.user != nil
	var fns []func(State)
	if before != after {
		for _, fn := range s.subs {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	state := Unauthenticated
	if after {
		state = Authenticated
	}
	for _, fn := range fns {
		fn(state)
	}
}

// tokenExpiry reads the exp claim of a JWT without verifying it.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
