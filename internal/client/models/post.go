package models

import (
	"encoding/json"
	"time"
)

// Author is the embedded author summary of a post.
type Author struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username,omitempty"`
}

type Post struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Author        *Author   `json:"author,omitempty"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	IsLiked       bool      `json:"isLiked"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p *Post) UnmarshalJSON(b []byte) error {
	type alias Post
	var raw struct {
		alias
		LegacyID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Post(raw.alias)
	p.ID = pickID(p.ID, raw.LegacyID)
	return nil
}

// AuthorName is the display name of the post author, "Unknown" when absent.
func (p Post) AuthorName() string {
	if p.Author == nil {
		return "Unknown"
	}
	name := User{FirstName: p.Author.FirstName, LastName: p.Author.LastName}.FullName()
	if name == "" {
		return "Unknown"
	}
	return name
}

// PostPage is one page of the feed: {data, page, nextPage}.
type PostPage struct {
	Data       []Post `json:"data"`
	Page       int    `json:"page"`
	NextPage   *int   `json:"nextPage"`
	TotalPages int    `json:"totalPages,omitempty"`
}
