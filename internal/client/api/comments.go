package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
)

type CommentsAPI struct {
	c Requester
}

func NewCommentsAPI(c Requester) *CommentsAPI {
	return &CommentsAPI{c: c}
}

// List returns the comments of a post, or an empty slice when the response
// carries neither "data" nor "comments".
func (a *CommentsAPI) List(ctx context.Context, postID string) ([]models.Comment, error) {
	q := url.Values{}
	q.Set("filter_post", postID)

	body, err := a.c.Get(ctx, "/posts/"+url.PathEscape(postID)+"/comments", q)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	raw := env.Data
	if !present(raw) {
		raw = env.Comments
	}
	comments := []models.Comment{}
	if !present(raw) {
		return comments, nil
	}
	if err := json.Unmarshal(raw, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

func (a *CommentsAPI) Add(ctx context.Context, postID, content string) (models.Comment, error) {
	body, err := a.c.Post(ctx, "/posts/"+url.PathEscape(postID)+"/comment", contentRequest{Content: content})
	if err != nil {
		return models.Comment{}, err
	}
	return decodePayload[models.Comment](body)
}
