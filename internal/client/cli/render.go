package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/client/api"
	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/validation"
)

// nowFn is a test seam for relative timestamps.
var nowFn = time.Now

// timeAgo renders t relative to now: "just now", "5m ago", "3h ago", "2d ago".
func timeAgo(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

func printPost(w io.Writer, p models.Post) {
	heart := "♡"
	if p.IsLiked {
		heart = "♥"
	}
	fmt.Fprintf(w, "[%s] %s · %s\n", p.ID, p.AuthorName(), timeAgo(nowFn(), p.CreatedAt))
	fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(p.Content, "\n", "\n  "))
	fmt.Fprintf(w, "  %s %d  comments %d\n", heart, p.LikesCount, p.CommentsCount)
}

func printComment(w io.Writer, c models.Comment) {
	fmt.Fprintf(w, "%s (%s): %s\n", c.AuthorName(), c.CreatedAt.Format(time.DateOnly), c.Content)
}

// senderName is the display name of a notification sender, "Someone" when absent.
func senderName(n models.Notification) string {
	if n.Sender == nil {
		return "Someone"
	}
	return models.User{FirstName: n.Sender.FirstName, LastName: n.Sender.LastName}.FullName()
}

// notificationText strips the sender name the backend already embeds in the
// message so it is not printed twice.
func notificationText(n models.Notification) string {
	if n.Sender == nil {
		return n.Message
	}
	full := n.Sender.FirstName + " " + n.Sender.LastName
	text := strings.TrimSpace(strings.Replace(n.Message, full, "", 1))
	if text == "" {
		return n.Message
	}
	return text
}

func notificationTitle(typ string) string {
	switch typ {
	case models.NotificationLike:
		return "New Like"
	case models.NotificationComment:
		return "New Comment"
	default:
		return ""
	}
}

func printNotification(w io.Writer, n models.Notification) {
	marker := " "
	if !n.IsRead {
		marker = "*"
	}
	fmt.Fprintf(w, "%s [%s] %s %s · %s\n", marker, n.ID, senderName(n), notificationText(n), timeAgo(nowFn(), n.CreatedAt))
}

func printUser(w io.Writer, u models.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.FullName(), u.Email)
	if u.Username != "" {
		fmt.Fprintf(w, "  @%s\n", u.Username)
	}
	if u.Bio != "" {
		fmt.Fprintf(w, "  %s\n", u.Bio)
	}
	fmt.Fprintf(w, "  Posts %d  Followers %d  Following %d\n", u.PostsCount, u.FollowersCount, u.FollowingCount)
}

// reportInput prints validation failures. Every other failure was already
// surfaced as a notice by the service.
func (a *App) reportInput(err error) {
	var fe validation.FieldErrors
	var ve *validation.Error
	switch {
	case errors.As(err, &fe):
		fmt.Fprintf(a.out, "Invalid input: %s\n", fe.Error())
	case errors.As(err, &ve):
		fmt.Fprintf(a.out, "Invalid input: %s\n", ve.Message)
	}
}

// reportLoad prints a failed fetch with a hint on how to retry it.
func (a *App) reportLoad(what, retry string, err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		return
	}
	msg := api.MessageOf(err)
	if msg == "" {
		msg = "Failed to load " + what
	}
	fmt.Fprintf(a.out, "Error: %s\nType '%s' to retry.\n", msg, retry)
}
