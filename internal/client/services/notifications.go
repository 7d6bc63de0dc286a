package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/query"
)

type NotificationsBackend interface {
	List(ctx context.Context, page, limit int) (models.NotificationPage, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error
}

type NotificationService interface {
	List(ctx context.Context) ([]models.Notification, error)
	NextPage(ctx context.Context) ([]models.Notification, error)
	HasMore() bool
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) error
}

var NotificationsKey = query.Key{"notifications"}

type notificationService struct {
	notifier notice.Notifier
	pages    *query.Infinite[models.NotificationPage]
	markOne  *query.Mutation[string, struct{}]
	markAll  *query.Mutation[struct{}, struct{}]
}

func NewNotificationService(backend NotificationsBackend, c *query.Client, n notice.Notifier, perPage int) NotificationService {
	return &notificationService{
		notifier: n,
		pages: query.NewInfinite(c, NotificationsKey, 1,
			func(ctx context.Context, page int) (models.NotificationPage, error) {
				return backend.List(ctx, page, perPage)
			},
			func(last models.NotificationPage) (int, bool) {
				if last.Page < last.TotalPages {
					return last.Page + 1, true
				}
				return 0, false
			},
		),
		markOne: query.NewMutation(c, query.MutationConfig[string, struct{}]{
			Fn: func(ctx context.Context, id string) (struct{}, error) {
				return struct{}{}, backend.MarkAsRead(ctx, id)
			},
			Invalidates: func(string, struct{}) []query.Key { return []query.Key{NotificationsKey} },
		}),
		markAll: query.NewMutation(c, query.MutationConfig[struct{}, struct{}]{
			Fn: func(ctx context.Context, _ struct{}) (struct{}, error) {
				return struct{}{}, backend.MarkAllAsRead(ctx)
			},
			Invalidates: func(struct{}, struct{}) []query.Key { return []query.Key{NotificationsKey} },
		}),
	}
}

func flattenNotifications(p query.Pages[models.NotificationPage]) []models.Notification {
	var out []models.Notification
	for _, page := range p.Pages {
		out = append(out, page.Results...)
	}
	return out
}

func (s *notificationService) List(ctx context.Context) ([]models.Notification, error) {
	pages, err := s.pages.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	return flattenNotifications(pages), nil
}

func (s *notificationService) NextPage(ctx context.Context) ([]models.Notification, error) {
	pages, err := s.pages.FetchNextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("load more notifications: %w", err)
	}
	return flattenNotifications(pages), nil
}

func (s *notificationService) HasMore() bool {
	return s.pages.HasNextPage()
}

func (s *notificationService) MarkAsRead(ctx context.Context, id string) error {
	if _, err := s.markOne.Run(ctx, id); err != nil {
		notifyFailure(s.notifier, "Failed to mark notification", err)
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context) error {
	if _, err := s.markAll.Run(ctx, struct{}{}); err != nil {
		notifyFailure(s.notifier, "Failed to mark all as read", err)
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	s.notifier.Notify(notice.Success("All notifications marked as read", ""))
	return nil
}
