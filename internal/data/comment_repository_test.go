//go:build integration

package data

import (
	"context"
	"errors"
	"testing"
)

func TestCommentRepository_ListAscending(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	post := &Post{Title: "p", AuthorEmail: "a@example.com"}
	if err := NewSQLPostRepository(db).CreatePost(ctx, post); err != nil {
		t.Fatal(err)
	}

	repo := NewSQLCommentRepository(db)
	// Inserted back to back; the time ordered IDs break any timestamp tie.
	c1 := &Comment{PostID: post.ID, AuthorEmail: "u@example.com", Content: "C1"}
	c2 := &Comment{PostID: post.ID, AuthorEmail: "u@example.com", Content: "C2"}
	if err := repo.Create(ctx, c1); err != nil {
		t.Fatal(err)
	}
	if err := repo.Create(ctx, c2); err != nil {
		t.Fatal(err)
	}

	comments, err := repo.ListByPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("ListByPost failed: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Content != "C1" || comments[1].Content != "C2" {
		t.Errorf("expected order C1, C2; got %s, %s", comments[0].Content, comments[1].Content)
	}
}

func TestCommentRepository_GetAndDelete(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	post := &Post{Title: "p", AuthorEmail: "a@example.com"}
	if err := NewSQLPostRepository(db).CreatePost(ctx, post); err != nil {
		t.Fatal(err)
	}
	repo := NewSQLCommentRepository(db)
	comment := &Comment{PostID: post.ID, AuthorEmail: "u@example.com", Content: "hello"}
	if err := repo.Create(ctx, comment); err != nil {
		t.Fatal(err)
	}

	got, err := repo.GetByID(ctx, comment.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AuthorEmail != "u@example.com" {
		t.Errorf("expected author u@example.com, got %s", got.AuthorEmail)
	}

	if err := repo.Delete(ctx, comment.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, comment.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
