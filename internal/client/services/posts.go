package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/query"
	"github.com/dmitrijs2005/socialfeed/internal/client/validation"
)

type PostsBackend interface {
	List(ctx context.Context, page int, username string) (models.PostPage, error)
	Create(ctx context.Context, content string) (models.Post, error)
	Like(ctx context.Context, postID string) error
	Unlike(ctx context.Context, postID string) error
}

// PostService is the feed: a paginated list of posts per author filter
// ("" for everyone) plus the post mutations.
type PostService interface {
	Feed(ctx context.Context, username string) ([]models.Post, error)
	FeedNextPage(ctx context.Context, username string) ([]models.Post, error)
	HasMorePosts(username string) bool
	Create(ctx context.Context, content string) (models.Post, error)
	Like(ctx context.Context, postID string) error
	Unlike(ctx context.Context, postID string) error
}

func PostsKey(username string) query.Key {
	return query.Key{"posts", username}
}

var postsPrefix = query.Key{"posts"}

type postService struct {
	backend  PostsBackend
	cache    *query.Client
	notifier notice.Notifier

	create *query.Mutation[string, models.Post]
	like   *query.Mutation[string, struct{}]
	unlike *query.Mutation[string, struct{}]
}

func NewPostService(backend PostsBackend, c *query.Client, n notice.Notifier) PostService {
	invalidatePosts := func(string, struct{}) []query.Key { return []query.Key{postsPrefix} }

	return &postService{
		backend:  backend,
		cache:    c,
		notifier: n,
		create: query.NewMutation(c, query.MutationConfig[string, models.Post]{
			Fn:          backend.Create,
			Invalidates: func(string, models.Post) []query.Key { return []query.Key{postsPrefix} },
		}),
		like: query.NewMutation(c, query.MutationConfig[string, struct{}]{
			Fn: func(ctx context.Context, id string) (struct{}, error) {
				return struct{}{}, backend.Like(ctx, id)
			},
			Invalidates: invalidatePosts,
		}),
		unlike: query.NewMutation(c, query.MutationConfig[string, struct{}]{
			Fn: func(ctx context.Context, id string) (struct{}, error) {
				return struct{}{}, backend.Unlike(ctx, id)
			},
			Invalidates: invalidatePosts,
		}),
	}
}

func (s *postService) feed(username string) *query.Infinite[models.PostPage] {
	return query.NewInfinite(s.cache, PostsKey(username), 1,
		func(ctx context.Context, page int) (models.PostPage, error) {
			return s.backend.List(ctx, page, username)
		},
		func(last models.PostPage) (int, bool) {
			if last.NextPage == nil {
				return 0, false
			}
			return *last.NextPage, true
		},
	)
}

func flattenPosts(p query.Pages[models.PostPage]) []models.Post {
	var out []models.Post
	for _, page := range p.Pages {
		out = append(out, page.Data...)
	}
	return out
}

func (s *postService) Feed(ctx context.Context, username string) ([]models.Post, error) {
	pages, err := s.feed(username).Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}
	return flattenPosts(pages), nil
}

func (s *postService) FeedNextPage(ctx context.Context, username string) ([]models.Post, error) {
	pages, err := s.feed(username).FetchNextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("load more posts: %w", err)
	}
	return flattenPosts(pages), nil
}

func (s *postService) HasMorePosts(username string) bool {
	return s.feed(username).HasNextPage()
}

func (s *postService) Create(ctx context.Context, content string) (models.Post, error) {
	if err := validation.ValidatePostContent(content); err != nil {
		return models.Post{}, err
	}
	post, err := s.create.Run(ctx, content)
	if err != nil {
		notifyFailure(s.notifier, "Failed to create post", err)
		return models.Post{}, fmt.Errorf("create post: %w", err)
	}
	s.notifier.Notify(notice.Success("Post Created!", "Your post has been shared successfully"))
	return post, nil
}

func (s *postService) Like(ctx context.Context, postID string) error {
	if _, err := s.like.Run(ctx, postID); err != nil {
		notifyFailure(s.notifier, "Failed to like post", err)
		return fmt.Errorf("like post: %w", err)
	}
	return nil
}

func (s *postService) Unlike(ctx context.Context, postID string) error {
	if _, err := s.unlike.Run(ctx, postID); err != nil {
		notifyFailure(s.notifier, "Failed to unlike post", err)
		return fmt.Errorf("unlike post: %w", err)
	}
	return nil
}
