package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// CategoryRepository handles database operations for categories and subcategories.
type CategoryRepository struct {
	DB *sqlx.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// FindByName finds a category by name and parent ID.
func (r *CategoryRepository) FindByName(ctx context.Context, name string, parentID *string) (*Category, error) {
	var category Category
	var err error
	if parentID == nil {
		err = r.DB.GetContext(ctx, &category, r.DB.Rebind("SELECT id, name, parent_id FROM categories WHERE name = ? AND parent_id IS NULL"), name)
	} else {
		err = r.DB.GetContext(ctx, &category, r.DB.Rebind("SELECT id, name, parent_id FROM categories WHERE name = ? AND parent_id = ?"), name, *parentID)
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}
	return &category, nil
}

// SearchByName searches for categories by name.
func (r *CategoryRepository) SearchByName(ctx context.Context, query string) ([]*Category, error) {
	categories := []*Category{}
	err := r.DB.SelectContext(ctx, &categories, r.DB.Rebind("SELECT id, name, parent_id FROM categories WHERE name LIKE ? ORDER BY name"), "%"+query+"%")
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetAll retrieves all categories and subcategories.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]*Category, error) {
	categories := []*Category{}
	err := r.DB.SelectContext(ctx, &categories, "SELECT id, name, parent_id FROM categories ORDER BY name")
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetChildren retrieves the subcategories of a category.
func (r *CategoryRepository) GetChildren(ctx context.Context, parentID string) ([]*Category, error) {
	categories := []*Category{}
	err := r.DB.SelectContext(ctx, &categories, r.DB.Rebind("SELECT id, name, parent_id FROM categories WHERE parent_id = ? ORDER BY name"), parentID)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Save creates a new category and returns its ID.
func (r *CategoryRepository) Save(ctx context.Context, category *Category) (string, error) {
	if category.ID == "" {
		category.ID = NewID()
	}
	_, err := r.DB.NamedExecContext(ctx, "INSERT INTO categories (id, name, parent_id) VALUES (:id, :name, :parent_id)", category)
	if err != nil {
		return "", err
	}
	return category.ID, nil
}

// GetByID finds a category by its ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*Category, error) {
	var category Category
	err := r.DB.GetContext(ctx, &category, r.DB.Rebind("SELECT id, name, parent_id FROM categories WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}
	return &category, nil
}
