//go:build integration

package data

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPostRepository_CreateAndGet(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	categories := NewCategoryRepository(db)
	catID, err := categories.Save(ctx, &Category{Name: "Engineering"})
	if err != nil {
		t.Fatal(err)
	}
	subID, err := categories.Save(ctx, &Category{Name: "Go", ParentID: &catID})
	if err != nil {
		t.Fatal(err)
	}

	repo := NewSQLPostRepository(db)
	post := &Post{
		Title:         "A",
		Excerpt:       "b",
		Content:       "c",
		Tags:          Tags{"x", "y"},
		AuthorEmail:   "admin@example.com",
		Thumbnail:     "/static/thumbnails/default.svg",
		CategoryID:    &catID,
		SubcategoryID: &subID,
	}
	if err := repo.CreatePost(ctx, post); err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.ID == "" {
		t.Fatal("expected ID to be assigned")
	}

	got, err := repo.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("GetPostByID failed: %v", err)
	}
	if got.Title != "A" || got.Excerpt != "b" || got.Content != "c" {
		t.Errorf("unexpected post fields: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "x" || got.Tags[1] != "y" {
		t.Errorf("expected tags [x y], got %v", got.Tags)
	}
	if got.Featured {
		t.Error("expected featured to be false")
	}
	if got.CategoryName != "Engineering" || got.SubcategoryName != "Go" {
		t.Errorf("expected joined names Engineering/Go, got %q/%q", got.CategoryName, got.SubcategoryName)
	}
}

func TestPostRepository_GetMissing(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()

	_, err := NewSQLPostRepository(db).GetPostByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPostRepository_ListNewestFirst(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewSQLPostRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"old", "middle", "new"} {
		p := &Post{Title: title, AuthorEmail: "a@example.com", CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := repo.CreatePost(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	posts, err := repo.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts, got %d", len(posts))
	}
	if posts[0].Title != "new" || posts[2].Title != "old" {
		t.Errorf("expected newest first, got %s..%s", posts[0].Title, posts[2].Title)
	}
	if posts[0].CategoryName != "" {
		t.Errorf("expected empty category name, got %q", posts[0].CategoryName)
	}
}

func TestPostRepository_Update(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewSQLPostRepository(db)

	post := &Post{Title: "before", AuthorEmail: "a@example.com", Tags: Tags{"one"}}
	if err := repo.CreatePost(ctx, post); err != nil {
		t.Fatal(err)
	}

	post.Title = "after"
	post.Tags = Tags{"two", "three"}
	post.Featured = true
	if err := repo.UpdatePost(ctx, post); err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}

	got, err := repo.GetPostByID(ctx, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "after" || !got.Featured || len(got.Tags) != 2 {
		t.Errorf("update not applied: %+v", got)
	}

	missing := &Post{ID: "missing", Title: "x"}
	if err := repo.UpdatePost(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing post, got %v", err)
	}
}

func TestPostRepository_DeleteCascadesComments(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	posts := NewSQLPostRepository(db)
	comments := NewSQLCommentRepository(db)

	post := &Post{Title: "doomed", AuthorEmail: "a@example.com"}
	if err := posts.CreatePost(ctx, post); err != nil {
		t.Fatal(err)
	}
	if err := comments.Create(ctx, &Comment{PostID: post.ID, AuthorEmail: "u@example.com", Content: "hi"}); err != nil {
		t.Fatal(err)
	}

	if err := posts.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := posts.GetPostByID(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected post to be gone, got %v", err)
	}
	left, err := comments.ListByPost(ctx, post.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("expected comments to be deleted with the post, got %d", len(left))
	}

	if err := posts.DeletePost(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
