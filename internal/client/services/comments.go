package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/query"
	"github.com/dmitrijs2005/socialfeed/internal/client/validation"
)

var ErrNoPost = errors.New("post id is required")

type CommentsBackend interface {
	List(ctx context.Context, postID string) ([]models.Comment, error)
	Add(ctx context.Context, postID, content string) (models.Comment, error)
}

type CommentService interface {
	List(ctx context.Context, postID string) ([]models.Comment, error)
	Add(ctx context.Context, postID, content string) (models.Comment, error)
}

func CommentsKey(postID string) query.Key {
	return query.Key{"comments", postID}
}

type newComment struct {
	postID  string
	content string
}

type commentService struct {
	backend  CommentsBackend
	cache    *query.Client
	notifier notice.Notifier
	add      *query.Mutation[newComment, models.Comment]
}

func NewCommentService(backend CommentsBackend, c *query.Client, n notice.Notifier) CommentService {
	return &commentService{
		backend:  backend,
		cache:    c,
		notifier: n,
		add: query.NewMutation(c, query.MutationConfig[newComment, models.Comment]{
			Fn: func(ctx context.Context, v newComment) (models.Comment, error) {
				return backend.Add(ctx, v.postID, v.content)
			},
			Invalidates: func(v newComment, _ models.Comment) []query.Key {
				return []query.Key{CommentsKey(v.postID), postsPrefix}
			},
		}),
	}
}

// List returns the comments of postID. An empty id never reaches the
// backend.
func (s *commentService) List(ctx context.Context, postID string) ([]models.Comment, error) {
	if postID == "" {
		return nil, ErrNoPost
	}
	comments, err := query.Fetch(ctx, s.cache, CommentsKey(postID), func(ctx context.Context) ([]models.Comment, error) {
		return s.backend.List(ctx, postID)
	})
	if err != nil {
		return nil, fmt.Errorf("load comments: %w", err)
	}
	return comments, nil
}

func (s *commentService) Add(ctx context.Context, postID, content string) (models.Comment, error) {
	if postID == "" {
		return models.Comment{}, ErrNoPost
	}
	if err := validation.ValidateCommentContent(content); err != nil {
		return models.Comment{}, err
	}
	c, err := s.add.Run(ctx, newComment{postID: postID, content: content})
	if err != nil {
		notifyFailure(s.notifier, "Failed to add comment", err)
		return models.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}
