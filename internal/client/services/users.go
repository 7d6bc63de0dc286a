package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/query"
	"github.com/dmitrijs2005/socialfeed/internal/client/validation"
	"github.com/dmitrijs2005/socialfeed/internal/logging"
)

var ErrNoUser = errors.New("user id is required")

type UserBackend interface {
	Details(ctx context.Context, userID string) (models.User, error)
	Update(ctx context.Context, userID string, patch models.ProfileUpdate) (models.User, error)
}

type UserService interface {
	Details(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, userID string, patch models.ProfileUpdate) (models.User, error)
}

func UserKey(userID string) query.Key {
	return query.Key{"user", userID}
}

type profileChange struct {
	userID string
	patch  models.ProfileUpdate
}

type userService struct {
	backend  UserBackend
	cache    *query.Client
	notifier notice.Notifier
	log      logging.Logger
	update   *query.Mutation[profileChange, models.User]
}

func NewUserService(backend UserBackend, s SessionState, c *query.Client, n notice.Notifier, l logging.Logger) UserService {
	return &userService{
		backend:  backend,
		cache:    c,
		notifier: n,
		log:      l,
		update: query.NewMutation(c, query.MutationConfig[profileChange, models.User]{
			Fn: func(ctx context.Context, v profileChange) (models.User, error) {
				return backend.Update(ctx, v.userID, v.patch)
			},
			OnSuccess: func(ctx context.Context, v profileChange, u models.User) error {
				me := s.User()
				if me == nil || me.ID != v.userID || u.ID == "" {
					return nil
				}
				if err := s.UpdateUser(ctx, u); err != nil {
					l.Warn(ctx, "failed to refresh stored profile", "error", err)
				}
				return nil
			},
			Invalidates: func(v profileChange, _ models.User) []query.Key {
				return []query.Key{UserKey(v.userID)}
			},
		}),
	}
}

func (s *userService) Details(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, ErrNoUser
	}
	u, err := query.Fetch(ctx, s.cache, UserKey(userID), func(ctx context.Context) (models.User, error) {
		return s.backend.Details(ctx, userID)
	})
	if err != nil {
		return models.User{}, fmt.Errorf("load user details: %w", err)
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, patch models.ProfileUpdate) (models.User, error) {
	if userID == "" {
		return models.User{}, ErrNoUser
	}
	for _, name := range []*string{patch.FirstName, patch.LastName} {
		if name == nil {
			continue
		}
		if err := validation.ValidateName(*name); err != nil {
			return models.User{}, err
		}
	}
	u, err := s.update.Run(ctx, profileChange{userID: userID, patch: patch})
	if err != nil {
		notifyFailure(s.notifier, "Failed to update profile", err)
		return models.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
