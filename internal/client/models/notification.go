package models

import (
	"encoding/json"
	"time"
)

// Notification types that point at a post.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
)

type Sender struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	Sender    *Sender   `json:"sender,omitempty"`
	PostID    string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// UnmarshalJSON accepts "_id" for the id and a "post" field that is either
// a bare id or an embedded post object.
func (n *Notification) UnmarshalJSON(b []byte) error {
	type alias Notification
	var raw struct {
		alias
		LegacyID string          `json:"_id"`
		Post     json.RawMessage `json:"post"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = Notification(raw.alias)
	n.ID = pickID(n.ID, raw.LegacyID)
	n.PostID = postRef(raw.Post)
	return nil
}

func postRef(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	var obj struct {
		ID       string `json:"id"`
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	return pickID(obj.ID, obj.LegacyID)
}

// NotificationPage is one page of notifications: {results, page, totalPages}.
type NotificationPage struct {
	Results     []Notification `json:"results"`
	Page        int            `json:"page"`
	TotalPages  int            `json:"totalPages"`
	UnreadCount int            `json:"unreadCount,omitempty"`
}
