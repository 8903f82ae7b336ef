package service

import (
	"context"
	"errors"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/feed"
	"go-portfolio-blog/internal/storage"
	"time"
)

var (
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrForbidden           = errors.New("forbidden")
	ErrSignInRequired      = errors.New("sign in required")
	ErrEmptyComment        = errors.New("empty comment")
	ErrMissingFields       = errors.New("title, excerpt and content are required")
	ErrCategoryRequired    = errors.New("category required")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrSubcategoryMismatch = errors.New("subcategory does not belong to category")
	ErrThumbnailConflict   = errors.New("choose either a preset or an upload")
	ErrInvalidThumbnail    = errors.New("invalid thumbnail")
	ErrInvalidFileName     = errors.New("invalid file name")
)

// Message returns the text shown next to the control that caused err.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSignInRequired):
		return "You must be signed in to comment."
	case errors.Is(err, ErrEmptyComment):
		return "Comment cannot be empty."
	case errors.Is(err, ErrCategoryRequired):
		return "Please select a category."
	case errors.Is(err, ErrUnknownCategory):
		return "The selected category no longer exists."
	case errors.Is(err, ErrSubcategoryMismatch):
		return "The subcategory does not belong to the selected category."
	case errors.Is(err, ErrThumbnailConflict):
		return "Choose a preset thumbnail or upload one, not both."
	case errors.Is(err, ErrInvalidThumbnail):
		return "Thumbnails must be images."
	case errors.Is(err, ErrMissingFields):
		return "Title, excerpt and content are required."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, ErrPostNotFound):
		return "Post not found."
	case errors.Is(err, ErrCommentNotFound):
		return "Comment not found."
	case errors.Is(err, ErrInvalidFileName):
		return "Invalid file name."
	case errors.Is(err, storage.ErrObjectExists):
		return "A file with that name already exists."
	}
	return err.Error()
}

// PostRepository defines the database operations on posts.
type PostRepository interface {
	ListPosts(ctx context.Context) ([]*data.Post, error)
	GetPostByID(ctx context.Context, id string) (*data.Post, error)
	CreatePost(ctx context.Context, post *data.Post) error
	UpdatePost(ctx context.Context, post *data.Post) error
	DeletePost(ctx context.Context, id string) error
}

// CommentRepository defines the database operations on comments.
type CommentRepository interface {
	ListByPost(ctx context.Context, postID string) ([]*data.Comment, error)
	GetByID(ctx context.Context, id string) (*data.Comment, error)
	Create(ctx context.Context, comment *data.Comment) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the read operations on the taxonomy.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]*data.Category, error)
}

// Cache is the byte cache used for read-mostly data.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	TTL() time.Duration
}

func publish(p feed.Publisher, table string, typ feed.Type, id, postID string) {
	if p == nil {
		return
	}
	p.Publish(feed.Event{Table: table, Type: typ, ID: id, PostID: postID})
}
