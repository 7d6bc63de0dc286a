// Package storage is the persistent credential store of the client. It keeps
// the access and refresh tokens sealed in secure storage and the user profile
// snapshot in general storage, and clears all three together.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/repositories/preferences"
	"github.com/dmitrijs2005/socialfeed/internal/client/repositories/securestore"
	"github.com/dmitrijs2005/socialfeed/internal/common"
	"github.com/dmitrijs2005/socialfeed/internal/dbx"
)

// ErrNoCredential is returned by Credential when no access token is stored.
var ErrNoCredential = errors.New("no stored credential")

// CredentialStore is the contract the HTTP client and session depend on.
type CredentialStore interface {
	SaveSession(ctx context.Context, cred models.Credential, user models.User) error
	Credential(ctx context.Context) (models.Credential, error)
	SaveUser(ctx context.Context, user models.User) error
	User(ctx context.Context) (*models.User, error)
	ClearAll(ctx context.Context) error
}

type Store struct {
	db     *sql.DB
	sealer securestore.Sealer
}

func NewStore(db *sql.DB, sealer securestore.Sealer) *Store {
	return &Store{db: db, sealer: sealer}
}

func (s *Store) secure(db dbx.DBTX) securestore.Repository {
	return securestore.NewSQLiteRepository(db, s.sealer)
}

func (s *Store) prefs(db dbx.DBTX) preferences.Repository {
	return preferences.NewSQLiteRepository(db)
}

// SaveToken stores the access token.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	if err := s.secure(s.db).Set(ctx, common.TokenKey, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Token returns the access token or "" when none is stored.
func (s *Store) Token(ctx context.Context) (string, error) {
	v, _, err := s.secure(s.db).Get(ctx, common.TokenKey)
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return v, nil
}

// SaveRefreshToken stores the refresh token.
func (s *Store) SaveRefreshToken(ctx context.Context, token string) error {
	if err := s.secure(s.db).Set(ctx, common.RefreshTokenKey, token); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// RefreshToken returns the refresh token or "" when none is stored.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	v, _, err := s.secure(s.db).Get(ctx, common.RefreshTokenKey)
	if err != nil {
		return "", fmt.Errorf("get refresh token: %w", err)
	}
	return v, nil
}

// Credential returns both tokens, or ErrNoCredential when no access token is
// stored.
func (s *Store) Credential(ctx context.Context) (models.Credential, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return models.Credential{}, err
	}
	if token == "" {
		return models.Credential{}, ErrNoCredential
	}
	refresh, err := s.RefreshToken(ctx)
	if err != nil {
		return models.Credential{}, err
	}
	return models.Credential{AccessToken: token, RefreshToken: refresh}, nil
}

// SaveUser stores the profile snapshot.
func (s *Store) SaveUser(ctx context.Context, user models.User) error {
	return s.prefs(s.db).SaveProfile(ctx, user)
}

// User returns the cached profile, or nil when none is stored.
func (s *Store) User(ctx context.Context) (*models.User, error) {
	return s.prefs(s.db).LoadProfile(ctx)
}

// SaveSession writes both tokens and the profile in one transaction.
func (s *Store) SaveSession(ctx context.Context, cred models.Credential, user models.User) error {
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		secure := s.secure(tx)
		if err := secure.Set(ctx, common.TokenKey, cred.AccessToken); err != nil {
			return err
		}
		if err := secure.Set(ctx, common.RefreshTokenKey, cred.RefreshToken); err != nil {
			return err
		}
		return s.prefs(tx).SaveProfile(ctx, user)
	})
}

// ClearAll removes both tokens and the profile atomically.
func (s *Store) ClearAll(ctx context.Context) error {
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		secure := s.secure(tx)
		if err := secure.Delete(ctx, common.TokenKey); err != nil {
			return err
		}
		if err := secure.Delete(ctx, common.RefreshTokenKey); err != nil {
			return err
		}
		return s.prefs(tx).DeleteProfile(ctx)
	})
	if err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	return nil
}
