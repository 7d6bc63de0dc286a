// Package services contains the feature services of the social feed client.
// Each service runs its reads and writes through the query layer, reports
// mutation outcomes as user notices and keeps the session in step with the
// backend.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/query"
	"github.com/dmitrijs2005/socialfeed/internal/client/validation"
	"github.com/dmitrijs2005/socialfeed/internal/logging"
)

// AuthBackend is the authentication endpoint module.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*models.AuthPayload, error)
	Signup(ctx context.Context, firstName, lastName, email, password string) (models.User, error)
	Logout(ctx context.Context) error
}

// SessionState is the session the auth service drives.
type SessionState interface {
	Login(ctx context.Context, p *models.AuthPayload) error
	Logout(ctx context.Context) error
	User() *models.User
	UpdateUser(ctx context.Context, u models.User) error
}

// AuthService defines authentication operations.
//
// Contract:
//   - Login: validate, authenticate, persist credentials, invalidate every query.
//   - Signup: validate and create the account; the user logs in afterwards.
//   - Logout: tell the backend (best effort), clear credentials and the cache.
type AuthService interface {
	Login(ctx context.Context, form validation.LoginForm) (*models.User, error)
	Signup(ctx context.Context, form validation.SignupForm) error
	Logout(ctx context.Context) error
}

type authService struct {
	session  SessionState
	cache    *query.Client
	notifier notice.Notifier
	log      logging.Logger

	login  *query.Mutation[validation.LoginForm, *models.AuthPayload]
	signup *query.Mutation[validation.SignupForm, models.User]
	logout *query.Mutation[struct{}, struct{}]
}

func NewAuthService(backend AuthBackend, s SessionState, c *query.Client, n notice.Notifier, l logging.Logger) AuthService {
	a := &authService{session: s, cache: c, notifier: n, log: l}

	a.login = query.NewMutation(c, query.MutationConfig[validation.LoginForm, *models.AuthPayload]{
		Fn: func(ctx context.Context, f validation.LoginForm) (*models.AuthPayload, error) {
			return backend.Login(ctx, f.Email, f.Password)
		},
		OnSuccess: func(ctx context.Context, _ validation.LoginForm, p *models.AuthPayload) error {
			return s.Login(ctx, p)
		},
		InvalidateAll: true,
	})

	a.signup = query.NewMutation(c, query.MutationConfig[validation.SignupForm, models.User]{
		Fn: func(ctx context.Context, f validation.SignupForm) (models.User, error) {
			return backend.Signup(ctx, f.FirstName, f.LastName, f.Email, f.Password)
		},
		InvalidateAll: true,
	})

	a.logout = query.NewMutation(c, query.MutationConfig[struct{}, struct{}]{
		Fn: func(ctx context.Context, _ struct{}) (struct{}, error) {
			return struct{}{}, backend.Logout(ctx)
		},
	})
	return a
}

func (a *authService) Login(ctx context.Context, form validation.LoginForm) (*models.User, error) {
	if errs := validation.ValidateLogin(form); errs != nil {
		return nil, errs
	}
	if _, err := a.login.Run(ctx, form); err != nil {
		a.log.Info(ctx, "login failed", "error", err)
		notifyFailure(a.notifier, "Login Failed", err)
		return nil, fmt.Errorf("login: %w", err)
	}
	a.notifier.Notify(notice.Success("Welcome back!", "You have successfully logged in"))
	return a.session.User(), nil
}

func (a *authService) Signup(ctx context.Context, form validation.SignupForm) error {
	if errs := validation.ValidateSignup(form); errs != nil {
		return errs
	}
	if _, err := a.signup.Run(ctx, form); err != nil {
		notifyFailure(a.notifier, "Signup Failed", err)
		return fmt.Errorf("signup: %w", err)
	}
	a.notifier.Notify(notice.Success("Account Created!", "Please login to continue"))
	return nil
}

// Logout always ends the local session, even when the backend call fails.
func (a *authService) Logout(ctx context.Context) error {
	if _, err := a.logout.Run(ctx, struct{}{}); err != nil {
		a.log.Warn(ctx, "backend logout failed, clearing local session anyway", "error", err)
	}
	err := a.session.Logout(ctx)
	a.cache.Clear()
	return err
}
