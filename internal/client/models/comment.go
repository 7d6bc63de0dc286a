package models

import (
	"encoding/json"
	"time"
)

type CommentUser struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Comment struct {
	ID        string       `json:"id"`
	Content   string       `json:"content"`
	User      *CommentUser `json:"user,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

func (c *Comment) UnmarshalJSON(b []byte) error {
	type alias Comment
	var raw struct {
		alias
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*c = Comment(raw.alias)
	c.ID = pickID(c.ID, raw.LegacyID)
	return nil
}

// AuthorName returns the commenter name or "Anonymous".
func (c Comment) AuthorName() string {
	if c.User == nil || c.User.Name == "" {
		return "Anonymous"
	}
	return c.User.Name
}
