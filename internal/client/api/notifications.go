package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
)

const DefaultNotificationsPerPage = 20

type NotificationsAPI struct {
	c Requester
}

func NewNotificationsAPI(c Requester) *NotificationsAPI {
	return &NotificationsAPI{c: c}
}

type registerDeviceRequest struct {
	FCMToken string `json:"fcmToken"`
}

// RegisterDevice associates a push token with the current user.
func (a *NotificationsAPI) RegisterDevice(ctx context.Context, token string) error {
	_, err := a.c.Post(ctx, "/notifications/register", registerDeviceRequest{FCMToken: token})
	return err
}

func (a *NotificationsAPI) List(ctx context.Context, page, limit int) (models.NotificationPage, error) {
	if limit <= 0 {
		limit = DefaultNotificationsPerPage
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	body, err := a.c.Get(ctx, "/notifications", q)
	if err != nil {
		return models.NotificationPage{}, err
	}
	return decodePayload[models.NotificationPage](body)
}

func (a *NotificationsAPI) MarkAsRead(ctx context.Context, id string) error {
	_, err := a.c.Put(ctx, "/notifications/"+url.PathEscape(id)+"/read", nil)
	return err
}

func (a *NotificationsAPI) MarkAllAsRead(ctx context.Context) error {
	_, err := a.c.Put(ctx, "/notifications/read-all", nil)
	return err
}
