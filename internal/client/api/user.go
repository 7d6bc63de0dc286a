package api

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
)

type UserAPI struct {
	c Requester
}

func NewUserAPI(c Requester) *UserAPI {
	return &UserAPI{c: c}
}

func (a *UserAPI) Details(ctx context.Context, userID string) (models.User, error) {
	body, err := a.c.Get(ctx, "/user/details/"+url.PathEscape(userID), nil)
	if err != nil {
		return models.User{}, err
	}
	return decodePayload[models.User](body)
}

func (a *UserAPI) Update(ctx context.Context, userID string, patch models.ProfileUpdate) (models.User, error) {
	body, err := a.c.Put(ctx, "/user/"+url.PathEscape(userID), patch)
	if err != nil {
		return models.User{}, err
	}
	return decodePayload[models.User](body)
}
