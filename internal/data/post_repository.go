package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const selectPosts = `
	SELECT p.id, p.title, p.excerpt, p.content, p.tags, p.featured, p.created_at, p.author_email,
	       p.thumbnail, p.category_id, p.subcategory_id,
	       COALESCE(c.name, '') AS category_name, COALESCE(s.name, '') AS subcategory_name
	FROM posts p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN categories s ON s.id = p.subcategory_id`

// SQLPostRepository stores blog posts using sqlx.
type SQLPostRepository struct {
	db *sqlx.DB
}

// NewSQLPostRepository creates a new SQLPostRepository.
func NewSQLPostRepository(db *sqlx.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

// NewID returns a time ordered identifier for a new row.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ListPosts retrieves all posts, newest first, with category and subcategory names joined.
func (r *SQLPostRepository) ListPosts(ctx context.Context) ([]*Post, error) {
	posts := []*Post{}
	query := selectPosts + ` ORDER BY p.created_at DESC, p.id DESC`
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPostByID retrieves a single post by its ID.
func (r *SQLPostRepository) GetPostByID(ctx context.Context, id string) (*Post, error) {
	var post Post
	query := r.db.Rebind(selectPosts + ` WHERE p.id = ?`)
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return &post, nil
}

// CreatePost inserts a new post. ID and CreatedAt are assigned when empty.
func (r *SQLPostRepository) CreatePost(ctx context.Context, post *Post) error {
	if post.ID == "" {
		post.ID = NewID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Tags == nil {
		post.Tags = Tags{}
	}
	query := `INSERT INTO posts (id, title, excerpt, content, tags, featured, created_at, author_email, thumbnail, category_id, subcategory_id)
		VALUES (:id, :title, :excerpt, :content, :tags, :featured, :created_at, :author_email, :thumbnail, :category_id, :subcategory_id)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to execute create post query: %w", err)
	}
	return nil
}

// UpdatePost overwrites every editable field of an existing post.
func (r *SQLPostRepository) UpdatePost(ctx context.Context, post *Post) error {
	if post.Tags == nil {
		post.Tags = Tags{}
	}
	query := `UPDATE posts SET title = :title, excerpt = :excerpt, content = :content, tags = :tags,
		featured = :featured, thumbnail = :thumbnail WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// MySQL reports zero affected rows when nothing changed, so check existence.
		if _, err := r.GetPostByID(ctx, post.ID); err != nil {
			return err
		}
	}
	return nil
}

// DeletePost removes a post and its comments in one transaction.
func (r *SQLPostRepository) DeletePost(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM comments WHERE post_id = ?`), id); err != nil {
		return fmt.Errorf("failed to delete comments of post: %w", err)
	}
	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("post %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}
