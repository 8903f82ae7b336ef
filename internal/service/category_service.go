package service

import (
	"context"
	"encoding/json"
	"go-portfolio-blog/internal/data"
	"go-portfolio-blog/internal/logger"
)

const categoriesCacheKey = "categories:all"

// CategoryNode is a top level category with its subcategories.
type CategoryNode struct {
	*data.Category
	Children []*data.Category `json:"children"`
}

// CategoryService serves the read-only taxonomy, cached.
type CategoryService struct {
	repo  CategoryRepository
	cache Cache
	log   logger.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo CategoryRepository, cache Cache, log logger.Logger) *CategoryService {
	return &CategoryService{repo: repo, cache: cache, log: log}
}

func (s *CategoryService) all(ctx context.Context) ([]*data.Category, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(categoriesCacheKey)
		if err != nil {
			s.log.Warn("category cache read failed: " + err.Error())
		} else if cached != nil {
			var categories []*data.Category
			if err := json.Unmarshal(cached, &categories); err == nil {
				return categories, nil
			}
		}
	}

	categories, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(categories); err == nil {
			if err := s.cache.Set(categoriesCacheKey, encoded, s.cache.TTL()); err != nil {
				s.log.Warn("category cache write failed: " + err.Error())
			}
		}
	}
	return categories, nil
}

// Categories returns the top level categories ordered by name.
func (s *CategoryService) Categories(ctx context.Context) ([]*data.Category, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	top := make([]*data.Category, 0)
	for _, c := range all {
		if c.ParentID == nil {
			top = append(top, c)
		}
	}
	return top, nil
}

// Subcategories returns the children of a category ordered by name.
func (s *CategoryService) Subcategories(ctx context.Context, categoryID string) ([]*data.Category, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	children := make([]*data.Category, 0)
	for _, c := range all {
		if c.ParentID != nil && *c.ParentID == categoryID {
			children = append(children, c)
		}
	}
	return children, nil
}

// Tree returns every top level category with its subcategories.
func (s *CategoryService) Tree(ctx context.Context) ([]CategoryNode, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	nodes := make([]CategoryNode, 0)
	index := map[string]int{}
	for _, c := range all {
		if c.ParentID == nil {
			index[c.ID] = len(nodes)
			nodes = append(nodes, CategoryNode{Category: c, Children: []*data.Category{}})
		}
	}
	for _, c := range all {
		if c.ParentID == nil {
			continue
		}
		if i, ok := index[*c.ParentID]; ok {
			nodes[i].Children = append(nodes[i].Children, c)
		}
	}
	return nodes, nil
}

// Category finds a category or subcategory by id. It returns nil if there is none.
func (s *CategoryService) Category(ctx context.Context, id string) (*data.Category, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}
