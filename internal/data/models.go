package data

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"html/template"
	"time"
)

// Tables reported on the change feed.
const (
	TablePosts    = "posts"
	TableComments = "comments"
)

// Post represents a single blog post in the database.
type Post struct {
	ID              string        `db:"id" json:"id"`
	Title           string        `db:"title" json:"title"`
	Excerpt         string        `db:"excerpt" json:"excerpt"`
	Content         string        `db:"content" json:"content"`
	HTMLContent     template.HTML `db:"-" json:"-"`
	Tags            Tags          `db:"tags" json:"tags"`
	Featured        bool          `db:"featured" json:"featured"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	AuthorEmail     string        `db:"author_email" json:"author_email"`
	Thumbnail       string        `db:"thumbnail" json:"thumbnail"`
	CategoryID      *string       `db:"category_id" json:"category_id,omitempty"`
	SubcategoryID   *string       `db:"subcategory_id" json:"subcategory_id,omitempty"`
	CategoryName    string        `db:"category_name" json:"category_name,omitempty"`
	SubcategoryName string        `db:"subcategory_name" json:"subcategory_name,omitempty"`
}

// Comment represents a comment attached to a post.
type Comment struct {
	ID          string    `db:"id" json:"id"`
	PostID      string    `db:"post_id" json:"post_id"`
	AuthorEmail string    `db:"author_email" json:"author_email"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Category represents a category for blog posts. A category with a parent is a subcategory.
type Category struct {
	ID       string  `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	ParentID *string `db:"parent_id" json:"parent_id,omitempty"`
}

// Tags is an ordered list of free-form tag strings stored as a JSON text column.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}
