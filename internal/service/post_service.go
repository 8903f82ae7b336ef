package service

import (
	"context"
	"errors"
	"fmt"
	"go-portfolio-blog/internal/auth"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/feed"
	"go-portfolio-blog/internal/logger"
	"strings"
)

// Taxonomy looks up categories by id.
type Taxonomy interface {
	Category(ctx context.Context, id string) (*data.Category, error)
}

// PostInput holds the editable fields of a post as submitted by a form.
// Thumbnail is the value currently shown in the edit form.
type PostInput struct {
	Title     string
	Excerpt   string
	Content   string
	Tags      []string
	Featured  bool
	Preset    string
	Thumbnail string
	Upload    *Upload
}

// CreateInput holds a new post.
type CreateInput struct {
	PostInput
	CategoryID    string
	SubcategoryID string
}

// PostService provides the business logic for reading and curating posts.
type PostService struct {
	repo     PostRepository
	taxonomy Taxonomy
	thumbs   *Thumbnails
	policy   auth.Policy
	renderer *Renderer
	events   feed.Publisher
	log      logger.Logger
}

// NewPostService creates a new PostService.
func NewPostService(repo PostRepository, taxonomy Taxonomy, thumbs *Thumbnails, policy auth.Policy, renderer *Renderer, events feed.Publisher, log logger.Logger) *PostService {
	return &PostService{
		repo:     repo,
		taxonomy: taxonomy,
		thumbs:   thumbs,
		policy:   policy,
		renderer: renderer,
		events:   events,
		log:      log,
	}
}

// IsAdmin reports whether id may author and curate posts.
func (s *PostService) IsAdmin(id *auth.Identity) bool {
	return s.policy.IsAdmin(id)
}

// Thumbnails returns the thumbnail resolver.
func (s *PostService) Thumbnails() *Thumbnails {
	return s.thumbs
}

// Get retrieves a single post with its content rendered to HTML.
func (s *PostService) Get(ctx context.Context, id string) (*data.Post, error) {
	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	html, err := s.renderer.Render(post.Content)
	if err != nil {
		return nil, err
	}
	post.HTMLContent = html
	return post, nil
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]*data.Post, error) {
	return s.repo.ListPosts(ctx)
}

func validateFields(in PostInput) error {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Excerpt) == "" || strings.TrimSpace(in.Content) == "" {
		return ErrMissingFields
	}
	return nil
}

// Create inserts a new post authored by the signed-in admin. The thumbnail is
// uploaded before the insert and removed again if the insert fails.
func (s *PostService) Create(ctx context.Context, id *auth.Identity, in CreateInput) (*data.Post, error) {
	if !s.policy.IsAdmin(id) {
		return nil, ErrForbidden
	}
	if in.CategoryID == "" {
		return nil, ErrCategoryRequired
	}
	if err := validateFields(in.PostInput); err != nil {
		return nil, err
	}

	category, err := s.taxonomy.Category(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil || category.ParentID != nil {
		return nil, ErrUnknownCategory
	}
	var subcategoryID *string
	if in.SubcategoryID != "" {
		sub, err := s.taxonomy.Category(ctx, in.SubcategoryID)
		if err != nil {
			return nil, err
		}
		if sub == nil || sub.ParentID == nil || *sub.ParentID != category.ID {
			return nil, ErrSubcategoryMismatch
		}
		subcategoryID = &sub.ID
	}

	// only presets, uploads or the default are valid for new posts
	thumbnail, stored, err := s.thumbs.Resolve(ctx, in.Preset, "", in.Upload)
	if err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	post := &data.Post{
		Title:         in.Title,
		Excerpt:       in.Excerpt,
		Content:       in.Content,
		Tags:          data.Tags(tags),
		Featured:      in.Featured,
		AuthorEmail:   id.Email,
		Thumbnail:     thumbnail,
		CategoryID:    &category.ID,
		SubcategoryID: subcategoryID,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		if stored != nil {
			if rmErr := s.thumbs.Remove(ctx, stored); rmErr != nil {
				s.log.Error(rmErr, fmt.Sprintf("Failed to remove orphaned thumbnail %s", stored.Path))
			}
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	post.CategoryName = category.Name

	publish(s.events, data.TablePosts, feed.Insert, post.ID, post.ID)
	return post, nil
}

// Update overwrites every editable field of a post.
func (s *PostService) Update(ctx context.Context, id *auth.Identity, postID string, in PostInput) (*data.Post, error) {
	if !s.policy.IsAdmin(id) {
		return nil, ErrForbidden
	}
	if err := validateFields(in); err != nil {
		return nil, err
	}

	thumbnail, stored, err := s.thumbs.Resolve(ctx, in.Preset, in.Thumbnail, in.Upload)
	if err != nil {
		return nil, err
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	post := &data.Post{
		ID:        postID,
		Title:     in.Title,
		Excerpt:   in.Excerpt,
		Content:   in.Content,
		Tags:      data.Tags(tags),
		Featured:  in.Featured,
		Thumbnail: thumbnail,
	}
	if err := s.repo.UpdatePost(ctx, post); err != nil {
		if stored != nil {
			if rmErr := s.thumbs.Remove(ctx, stored); rmErr != nil {
				s.log.Error(rmErr, fmt.Sprintf("Failed to remove orphaned thumbnail %s", stored.Path))
			}
		}
		if errors.Is(err, data.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	publish(s.events, data.TablePosts, feed.Update, postID, postID)
	return s.Get(ctx, postID)
}

// Delete removes a post and its comments.
func (s *PostService) Delete(ctx context.Context, id *auth.Identity, postID string) error {
	if !s.policy.IsAdmin(id) {
		return ErrForbidden
	}
	if err := s.repo.DeletePost(ctx, postID); err != nil {
		if errors.Is(err, data.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}
	publish(s.events, data.TablePosts, feed.Delete, postID, postID)
	// the post's comments went with it
	publish(s.events, data.TableComments, feed.Delete, "", postID)
	return nil
}
