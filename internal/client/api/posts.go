package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
)

const DefaultPostsPerPage = 10

type PostsAPI struct {
	c     Requester
	limit int
}

// NewPostsAPI returns the posts module. A non-positive limit means
// DefaultPostsPerPage.
func NewPostsAPI(c Requester, limit int) *PostsAPI {
	if limit <= 0 {
		limit = DefaultPostsPerPage
	}
	return &PostsAPI{c: c, limit: limit}
}

type contentRequest struct {
	Content string `json:"content"`
}

// List fetches one feed page, filtered by author username when username is
// not empty.
func (p *PostsAPI) List(ctx context.Context, page int, username string) (models.PostPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(p.limit))
	if username != "" {
		q.Set("searchTerm", username)
		q.Add("searchFields", "username")
	}

	body, err := p.c.Get(ctx, "/posts", q)
	if err != nil {
		return models.PostPage{}, err
	}
	return decodePostPage(body)
}

// decodePostPage accepts both {data: {data: [...], page, nextPage}} and a
// bare {data: [...], page, nextPage}.
func decodePostPage(body []byte) (models.PostPage, error) {
	var page models.PostPage
	raw := unwrap(body)
	if isArray(raw) {
		raw = body
	}
	if !present(raw) {
		return page, nil
	}
	if err := json.Unmarshal(raw, &page); err != nil {
		return page, fmt.Errorf("decode posts page: %w", err)
	}
	return page, nil
}

func (p *PostsAPI) Create(ctx context.Context, content string) (models.Post, error) {
	body, err := p.c.Post(ctx, "/posts", contentRequest{Content: content})
	if err != nil {
		return models.Post{}, err
	}
	return decodePayload[models.Post](body)
}

func (p *PostsAPI) Like(ctx context.Context, postID string) error {
	_, err := p.c.Post(ctx, "/posts/"+url.PathEscape(postID)+"/like", nil)
	return err
}

func (p *PostsAPI) Unlike(ctx context.Context, postID string) error {
	_, err := p.c.Delete(ctx, "/posts/"+url.PathEscape(postID)+"/like")
	return err
}
