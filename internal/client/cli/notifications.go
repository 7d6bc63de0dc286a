package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
)

const commentsRoute = "/comments/"

// Notifications prints the first page of notifications, unread ones marked
// with '*'.
func (a *App) Notifications(ctx context.Context) error {
	list, err := a.notificationService.List(ctx)
	if err != nil {
		a.reportLoad("notifications", "notifications", err)
		return err
	}
	a.remember(list)
	a.printNotifications(list)
	return nil
}

// MoreNotifications loads the next page and prints the whole list.
func (a *App) MoreNotifications(ctx context.Context) error {
	if !a.notificationService.HasMore() {
		fmt.Fprintln(a.out, "No more notifications")
		return nil
	}
	list, err := a.notificationService.NextPage(ctx)
	if err != nil {
		a.reportLoad("notifications", "morenotifications", err)
		return err
	}
	a.remember(list)
	a.printNotifications(list)
	return nil
}

func (a *App) printNotifications(list []models.Notification) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No notifications yet")
		return
	}
	unread := 0
	for _, n := range list {
		printNotification(a.out, n)
		if !n.IsRead {
			unread++
		}
	}
	if unread > 0 {
		fmt.Fprintf(a.out, "%d unread. Type 'readall' to mark all as read.\n", unread)
	}
	if a.notificationService.HasMore() {
		fmt.Fprintln(a.out, "Type 'morenotifications' to load more.")
	}
}

func (a *App) Read(ctx context.Context, id string) error {
	if err := a.notificationService.MarkAsRead(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Marked as read")
	return nil
}

func (a *App) ReadAll(ctx context.Context) error {
	return a.notificationService.MarkAllAsRead(ctx)
}

// Open acts like tapping a notification: it is marked as read and the
// screen it points to is shown.
func (a *App) Open(ctx context.Context, id string) error {
	a.mu.Lock()
	n, ok := a.notifications[id]
	a.mu.Unlock()
	if !ok {
		fmt.Fprintln(a.out, "Unknown notification, type 'notifications' first")
		return nil
	}

	if !n.IsRead {
		if err := a.notificationService.MarkAsRead(ctx, id); err != nil {
			return err
		}
	}

	target := a.push.Tapped(ctx, messageOf(n))
	if postID, ok := strings.CutPrefix(target, commentsRoute); ok {
		return a.Comments(ctx, postID)
	}
	return a.Notifications(ctx)
}

// remember keeps the last listed notifications so Open can find them by id.
func (a *App) remember(list []models.Notification) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, n := range list {
		a.notifications[n.ID] = n
	}
}
