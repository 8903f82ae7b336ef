// Package storage provides the object store used for post thumbnails and hosted files.
package storage

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrObjectExists is returned when an upload would overwrite an object and upsert is off.
	ErrObjectExists = errors.New("object already exists")

	// ErrObjectNotFound is returned when an object does not exist.
	ErrObjectNotFound = errors.New("object not found")
)

// Object describes a stored object.
type Object struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
	URL          string    `json:"url"`
}

// UploadOptions control how an object is written.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Upsert       bool
}

// ObjectStore is a bucketed blob store with public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader, size int64, opts UploadOptions) error
	PublicURL(bucket, path string) string
	List(ctx context.Context, bucket, prefix string, limit, offset int) ([]Object, error)
	Remove(ctx context.Context, bucket string, paths ...string) error
}

// cacheControl turns a bare number of seconds into a max-age directive.
func cacheControl(v string) string {
	if v == "" {
		return ""
	}
	if strings.Trim(v, "0123456789") == "" {
		return "max-age=" + v
	}
	return v
}

// escapePath escapes every segment of an object path for use in a URL.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
