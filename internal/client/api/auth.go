package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
)

// Requester is the transport the endpoint modules run on. *Client
// implements it.
type Requester interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
	Put(ctx context.Context, path string, body any) ([]byte, error)
	Delete(ctx context.Context, path string) ([]byte, error)
}

type AuthAPI struct {
	c Requester
}

func NewAuthAPI(c Requester) *AuthAPI {
	return &AuthAPI{c: c}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Login posts the credentials. The returned payload is nil when the
// response carries no "data" object; callers treat that as invalid.
func (a *AuthAPI) Login(ctx context.Context, email, password string) (*models.AuthPayload, error) {
	body, err := a.c.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if !present(env.Data) {
		return nil, nil
	}
	var p models.AuthPayload
	if err := json.Unmarshal(env.Data, &p); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return &p, nil
}

// Signup creates an account. It does not start a session.
func (a *AuthAPI) Signup(ctx context.Context, firstName, lastName, email, password string) (models.User, error) {
	body, err := a.c.Post(ctx, "/auth/register", signupRequest{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  password,
	})
	if err != nil {
		return models.User{}, err
	}
	return decodePayload[models.User](body)
}

func (a *AuthAPI) Logout(ctx context.Context) error {
	_, err := a.c.Post(ctx, "/auth/logout", nil)
	return err
}
