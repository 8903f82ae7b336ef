package service

import (
	"context"
	"errors"
	"fmt"
	"go-portfolio-blog/internal/auth"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/feed"
	"strings"
)

// CommentService provides the business logic for comment threads.
type CommentService struct {
	repo    CommentRepository
	policy  auth.Policy
	events  feed.Publisher
	changes feed.Subscriber
}

// NewCommentService creates a new CommentService.
func NewCommentService(repo CommentRepository, policy auth.Policy, events feed.Publisher, changes feed.Subscriber) *CommentService {
	return &CommentService{repo: repo, policy: policy, events: events, changes: changes}
}

// List returns the comments of a post, oldest first.
func (s *CommentService) List(ctx context.Context, postID string) ([]*data.Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}

// Add posts a comment as the signed-in user. The text is trimmed.
func (s *CommentService) Add(ctx context.Context, id *auth.Identity, postID, text string) (*data.Comment, error) {
	if id == nil {
		return nil, ErrSignInRequired
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}

	comment := &data.Comment{
		PostID:      postID,
		AuthorEmail: id.Email,
		Content:     text,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	publish(s.events, data.TableComments, feed.Insert, comment.ID, postID)
	return comment, nil
}

// CanDelete reports whether id may delete the comment: its author or the admin.
func (s *CommentService) CanDelete(id *auth.Identity, c *data.Comment) bool {
	if id == nil {
		return false
	}
	return c.AuthorEmail == id.Email || s.policy.IsAdmin(id)
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id *auth.Identity, commentID string) error {
	if id == nil {
		return ErrSignInRequired
	}
	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if !s.CanDelete(id, comment) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return ErrCommentNotFound
		}
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	publish(s.events, data.TableComments, feed.Delete, commentID, comment.PostID)
	return nil
}

// PostOf returns the id of the post a comment belongs to.
func (s *CommentService) PostOf(ctx context.Context, commentID string) (string, error) {
	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return "", ErrCommentNotFound
		}
		return "", err
	}
	return comment.PostID, nil
}

// Watch calls fn with the current comments of a post and again with the full
// list after every change to them, until ctx is done.
func (s *CommentService) Watch(ctx context.Context, postID string, fn func([]*data.Comment, error)) {
	sub := s.changes.Subscribe(feed.Filter{Table: data.TableComments, PostID: postID})
	defer sub.Close()

	fn(s.List(ctx, postID))
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
			fn(s.List(ctx, postID))
		}
	}
}
