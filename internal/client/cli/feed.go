package cli

import (
	"context"
	"fmt"
	"strings"
)

// Feed prints the first page of posts, optionally only those of username.
func (a *App) Feed(ctx context.Context, username string) error {
	a.feedUser = username

	posts, err := a.postService.Feed(ctx, username)
	if err != nil {
		a.reportLoad("posts", strings.TrimSpace("feed "+username), err)
		return err
	}

	if len(posts) == 0 {
		if username != "" {
			fmt.Fprintln(a.out, "No posts found for this user")
		} else {
			fmt.Fprintln(a.out, "No posts yet. Be the first to post!")
		}
		return nil
	}
	for _, p := range posts {
		printPost(a.out, p)
	}
	if a.postService.HasMorePosts(username) {
		fmt.Fprintln(a.out, "Type 'more' to load more posts.")
	}
	return nil
}

// More loads the next page of the last feed and prints only the new posts.
func (a *App) More(ctx context.Context) error {
	// Feed reloads from the first page when the posts were invalidated since.
	before, err := a.postService.Feed(ctx, a.feedUser)
	if err != nil {
		a.reportLoad("posts", "more", err)
		return err
	}
	if !a.postService.HasMorePosts(a.feedUser) {
		fmt.Fprintln(a.out, "No more posts")
		return nil
	}

	posts, err := a.postService.FeedNextPage(ctx, a.feedUser)
	if err != nil {
		a.reportLoad("posts", "more", err)
		return err
	}

	for _, p := range posts[min(len(before), len(posts)):] {
		printPost(a.out, p)
	}
	if a.postService.HasMorePosts(a.feedUser) {
		fmt.Fprintln(a.out, "Type 'more' to load more posts.")
	}
	return nil
}

// Post asks for the content of a new post and publishes it.
func (a *App) Post(ctx context.Context) error {
	content, err := getMultiline(a.reader, "What's on your mind?", a.out)
	if err != nil {
		return err
	}
	if _, err := a.postService.Create(ctx, content); err != nil {
		a.reportInput(err)
		return err
	}
	return nil
}

func (a *App) Like(ctx context.Context, postID string) error {
	if err := a.postService.Like(ctx, postID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Liked")
	return nil
}

func (a *App) Unlike(ctx context.Context, postID string) error {
	if err := a.postService.Unlike(ctx, postID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Unliked")
	return nil
}

// Comments prints the comments of a post.
func (a *App) Comments(ctx context.Context, postID string) error {
	comments, err := a.commentService.List(ctx, postID)
	if err != nil {
		a.reportLoad("comments", "comments "+postID, err)
		return err
	}
	if len(comments) == 0 {
		fmt.Fprintln(a.out, "No comments yet. Be the first to comment!")
		return nil
	}
	for _, c := range comments {
		printComment(a.out, c)
	}
	return nil
}

// Comment asks for a comment and adds it to the post.
func (a *App) Comment(ctx context.Context, postID string) error {
	content, err := getSimpleText(a.reader, "Write a comment", a.out)
	if err != nil {
		return err
	}
	if _, err := a.commentService.Add(ctx, postID, content); err != nil {
		a.reportInput(err)
		return err
	}
	fmt.Fprintln(a.out, "Comment added")
	return nil
}
