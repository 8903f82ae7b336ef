package service

import (
	"context"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/feed"
	"go-portfolio-blog/internal/logger"
	"strings"
)

// List modes.
const (
	ModeGrouped = "grouped"
	ModePaged   = "paged"
)

// OtherGroup is the group name for posts without a category.
const OtherGroup = "Other"

// State is the lifecycle state of a list view.
type State string

// The list view states. A view is in exactly one of them.
const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateEmpty   State = "empty"
	StateReady   State = "ready"
)

// ListQuery selects what the listing shows.
type ListQuery struct {
	Query   string
	Page    int
	Refresh int
}

// Group is the posts of one category.
type Group struct {
	Name     string       `json:"name"`
	Featured []*data.Post `json:"featured"`
	Posts    []*data.Post `json:"posts"`
}

// ListView is everything the listing page renders.
type ListView struct {
	State     State        `json:"state"`
	Error     string       `json:"error,omitempty"`
	Mode      string       `json:"mode"`
	Query     string       `json:"query"`
	NoMatches bool         `json:"no_matches"`
	Total     int          `json:"total"`
	Groups    []Group      `json:"groups,omitempty"`
	Posts     []*data.Post `json:"posts,omitempty"`
	Page      int          `json:"page,omitempty"`
	Pages     int          `json:"pages,omitempty"`
}

// BlogList builds the public listing of posts.
type BlogList struct {
	posts     PostRepository
	changes   feed.Subscriber
	log       logger.Logger
	lifestyle string
	mode      string
	pageSize  int
}

// NewBlogList creates a BlogList. Posts in the lifestyle category are left out
// of the listing and served by Lifestyle instead.
func NewBlogList(posts PostRepository, changes feed.Subscriber, log logger.Logger, lifestyle, mode string, pageSize int) *BlogList {
	if mode != ModePaged {
		mode = ModeGrouped
	}
	if pageSize <= 0 {
		pageSize = 6
	}
	return &BlogList{
		posts:     posts,
		changes:   changes,
		log:       log,
		lifestyle: lifestyle,
		mode:      mode,
		pageSize:  pageSize,
	}
}

// Load fetches the posts and builds the view for q.
func (b *BlogList) Load(ctx context.Context, q ListQuery) *ListView {
	view := &ListView{State: StateLoading, Mode: b.mode, Query: q.Query}

	all, err := b.posts.ListPosts(ctx)
	if err != nil {
		b.log.Error(err, "Failed to load posts")
		view.State = StateError
		view.Error = "Failed to load posts."
		return view
	}

	posts := make([]*data.Post, 0, len(all))
	for _, p := range all {
		if p.CategoryName != b.lifestyle {
			posts = append(posts, p)
		}
	}
	if len(posts) == 0 {
		view.State = StateEmpty
		return view
	}

	matches := FilterPosts(posts, q.Query)
	view.State = StateReady
	view.Total = len(matches)
	view.NoMatches = len(matches) == 0

	if b.mode == ModePaged {
		view.Posts, view.Page, view.Pages = Paginate(matches, q.Page, b.pageSize)
	} else {
		view.Groups = GroupPosts(matches)
	}
	return view
}

// Lifestyle lists only the posts of the lifestyle category, newest first.
func (b *BlogList) Lifestyle(ctx context.Context) ([]*data.Post, error) {
	all, err := b.posts.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	posts := make([]*data.Post, 0)
	for _, p := range all {
		if p.CategoryName == b.lifestyle {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// Watch calls fn with a loading view, then the loaded view, and again with a
// freshly loaded view after every post change until ctx is done.
func (b *BlogList) Watch(ctx context.Context, q ListQuery, fn func(*ListView)) {
	sub := b.changes.Subscribe(feed.Filter{Table: data.TablePosts})
	defer sub.Close()

	fn(&ListView{State: StateLoading, Mode: b.mode, Query: q.Query})
	fn(b.Load(ctx, q))

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
			fn(b.Load(ctx, q))
		}
	}
}

// FilterPosts keeps the posts whose title, excerpt, content or any tag
// contains query, ignoring case. Whitespace in query is matched as typed;
// only the empty query keeps everything.
func FilterPosts(posts []*data.Post, query string) []*data.Post {
	q := strings.ToLower(query)
	if q == "" {
		return posts
	}
	matches := make([]*data.Post, 0)
	for _, p := range posts {
		if postMatches(p, q) {
			matches = append(matches, p)
		}
	}
	return matches
}

func postMatches(p *data.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Excerpt), q) ||
		strings.Contains(strings.ToLower(p.Content), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// GroupPosts groups posts by category name in first-seen order. Posts keep
// their relative order inside a group.
func GroupPosts(posts []*data.Post) []Group {
	groups := make([]Group, 0)
	index := map[string]int{}
	for _, p := range posts {
		name := p.CategoryName
		if name == "" {
			name = OtherGroup
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name, Featured: []*data.Post{}, Posts: []*data.Post{}})
		}
		if p.Featured {
			groups[i].Featured = append(groups[i].Featured, p)
		} else {
			groups[i].Posts = append(groups[i].Posts, p)
		}
	}
	return groups
}

// Paginate returns the 1-based page of posts and the clamped page number and
// page count. There is always at least one page.
func Paginate(posts []*data.Post, page, size int) ([]*data.Post, int, int) {
	pages := (len(posts) + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * size
	end := start + size
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end], page, pages
}
