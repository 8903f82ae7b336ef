package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLCommentRepository stores post comments using sqlx.
type SQLCommentRepository struct {
	db *sqlx.DB
}

// NewSQLCommentRepository creates a new SQLCommentRepository.
func NewSQLCommentRepository(db *sqlx.DB) *SQLCommentRepository {
	return &SQLCommentRepository{db: db}
}

// ListByPost returns the comments of a post, oldest first.
func (r *SQLCommentRepository) ListByPost(ctx context.Context, postID string) ([]*Comment, error) {
	comments := []*Comment{}
	query := r.db.Rebind(`SELECT id, post_id, author_email, content, created_at FROM comments
		WHERE post_id = ? ORDER BY created_at ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &comments, query, postID); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// GetByID retrieves a single comment.
func (r *SQLCommentRepository) GetByID(ctx context.Context, id string) (*Comment, error) {
	var comment Comment
	query := r.db.Rebind(`SELECT id, post_id, author_email, content, created_at FROM comments WHERE id = ?`)
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return &comment, nil
}

// Create inserts a comment. ID and CreatedAt are assigned when empty.
func (r *SQLCommentRepository) Create(ctx context.Context, comment *Comment) error {
	if comment.ID == "" {
		comment.ID = NewID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO comments (id, post_id, author_email, content, created_at)
		VALUES (:id, :post_id, :author_email, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// Delete removes a comment by its ID.
func (r *SQLCommentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM comments WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	return nil
}
