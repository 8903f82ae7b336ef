//go:build unit

package service

import (
	"context"
	"errors"
	"go-portfolio-blog/internal/auth"
	"go-portfolio-blog/internal/cache"
	"go-portfolio-blog/internal/config"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/feed"
	"strconv"
	"sync"
	"testing"
	"time"
)

const testAdmin = "admin@example.com"

var (
	adminID  = &auth.Identity{Subject: "admin-sub", Email: testAdmin}
	readerID = &auth.Identity{Subject: "reader-sub", Email: "reader@example.com"}
	otherID  = &auth.Identity{Subject: "other-sub", Email: "other@example.com"}
)

var testPolicy = auth.EmailPolicy{AdminEmail: testAdmin}

// newTestCache creates a new in-memory cache for testing.
func newTestCache(t *testing.T) (*cache.Cache, func()) {
	t.Helper()
	cfg := config.CacheConfig{
		FilePath: "file::memory:",
		TTL:      60,
	}
	c, err := cache.New(cfg)
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	teardown := func() {
		c.Close()
	}
	return c, teardown
}

// mockPostRepository keeps posts in memory, newest first.
type mockPostRepository struct {
	mutex        sync.Mutex
	posts        []*data.Post
	errToReturn  error
	createErr    error
	createCalled int
	updateCalled int
	deleteCalled int
	lastUpdated  *data.Post
}

var _ PostRepository = (*mockPostRepository)(nil)

func (m *mockPostRepository) ListPosts(ctx context.Context) ([]*data.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	out := make([]*data.Post, len(m.posts))
	copy(out, m.posts)
	return out, nil
}

func (m *mockPostRepository) GetPostByID(ctx context.Context, id string) (*data.Post, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	for _, p := range m.posts {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *mockPostRepository) CreatePost(ctx context.Context, post *data.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.createCalled++
	if m.createErr != nil {
		return m.createErr
	}
	post.ID = "post-" + strconv.Itoa(m.createCalled)
	post.CreatedAt = time.Now().UTC()
	m.posts = append([]*data.Post{post}, m.posts...)
	return nil
}

func (m *mockPostRepository) UpdatePost(ctx context.Context, post *data.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.updateCalled++
	m.lastUpdated = post
	if m.errToReturn != nil {
		return m.errToReturn
	}
	for i, p := range m.posts {
		if p.ID == post.ID {
			cp := *p
			cp.Title, cp.Excerpt, cp.Content = post.Title, post.Excerpt, post.Content
			cp.Tags, cp.Featured, cp.Thumbnail = post.Tags, post.Featured, post.Thumbnail
			m.posts[i] = &cp
			return nil
		}
	}
	return data.ErrNotFound
}

func (m *mockPostRepository) DeletePost(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.deleteCalled++
	if m.errToReturn != nil {
		return m.errToReturn
	}
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return data.ErrNotFound
}

// mockCommentRepository keeps comments in memory in insertion order.
type mockCommentRepository struct {
	mutex        sync.Mutex
	comments     []*data.Comment
	listErr      error
	createErr    error
	deleteErr    error
	createCalled int
	next         int
	// failListAfterDelete makes every list fail once a delete went through.
	failListAfterDelete bool
	// deleteStarted and deleteRelease, when set, hold Delete until released.
	deleteStarted chan struct{}
	deleteRelease chan struct{}
}

var _ CommentRepository = (*mockCommentRepository)(nil)

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID string) ([]*data.Comment, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*data.Comment, 0)
	for _, c := range m.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, id string) (*data.Comment, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, c := range m.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *mockCommentRepository) Create(ctx context.Context, comment *data.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.createCalled++
	if m.createErr != nil {
		return m.createErr
	}
	m.next++
	comment.ID = "comment-" + strconv.Itoa(m.next)
	comment.CreatedAt = time.Now().UTC()
	m.comments = append(m.comments, comment)
	return nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, id string) error {
	if m.deleteRelease != nil {
		m.deleteStarted <- struct{}{}
		<-m.deleteRelease
	}
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, c := range m.comments {
		if c.ID == id {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			if m.failListAfterDelete {
				m.listErr = errors.New("list down")
			}
			return nil
		}
	}
	return data.ErrNotFound
}

// mockCategoryRepository is a mock implementation of the CategoryRepository interface.
type mockCategoryRepository struct {
	categories   []*data.Category
	errToReturn  error
	getAllCalled int
}

var _ CategoryRepository = (*mockCategoryRepository)(nil)

func (m *mockCategoryRepository) GetAll(ctx context.Context) ([]*data.Category, error) {
	m.getAllCalled++
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	return m.categories, nil
}

// recordingPublisher remembers every published event.
type recordingPublisher struct {
	mutex  sync.Mutex
	events []feed.Event
}

var _ feed.Publisher = (*recordingPublisher)(nil)

func (r *recordingPublisher) Publish(e feed.Event) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingPublisher) all() []feed.Event {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]feed.Event, len(r.events))
	copy(out, r.events)
	return out
}

func strPtr(s string) *string { return &s }

// testTaxonomy is Engineering > Go, Design, and LifeStyle.
func testTaxonomy() []*data.Category {
	return []*data.Category{
		{ID: "cat-design", Name: "Design"},
		{ID: "cat-eng", Name: "Engineering"},
		{ID: "sub-go", Name: "Go", ParentID: strPtr("cat-eng")},
		{ID: "cat-life", Name: "LifeStyle"},
		{ID: "sub-ui", Name: "UI", ParentID: strPtr("cat-design")},
	}
}
