package services

import (
	"errors"

	"github.com/dmitrijs2005/socialfeed/internal/client/api"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/session"
	"github.com/dmitrijs2005/socialfeed/internal/client/validation"
)

const fallbackMessage = "Please try again"

// failureMessage is the text shown under a failure notice.
func failureMessage(err error) string {
	if msg := api.MessageOf(err); msg != "" {
		return msg
	}
	var ve *validation.Error
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, session.ErrInvalidLoginResponse):
		return err.Error()
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, please try again"
	default:
		return fallbackMessage
	}
}

// notifyFailure reports a failed operation. Expired sessions were already
// reported by the HTTP client.
func notifyFailure(n notice.Notifier, title string, err error) {
	if errors.Is(err, api.ErrUnauthorized) {
		return
	}
	n.Notify(notice.Error(title, failureMessage(err)))
}
