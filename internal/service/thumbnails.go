package service

import (
	"context"
	"fmt"
	"go-portfolio-blog/internal/storage"
	"io"
	"path"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
)

// Upload is a file received from a form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// StoredThumbnail is an uploaded thumbnail.
type StoredThumbnail struct {
	Path string
	URL  string
}

// Thumbnails resolves the thumbnail of a post: one of the fixed presets, an
// uploaded image, or the default.
type Thumbnails struct {
	store        storage.ObjectStore
	bucket       string
	cacheControl string
	presets      []string
	fallback     string
	now          func() time.Time
}

// NewThumbnails creates a Thumbnails resolver.
func NewThumbnails(store storage.ObjectStore, bucket, cacheControl string, presets []string, fallback string) *Thumbnails {
	return &Thumbnails{
		store:        store,
		bucket:       bucket,
		cacheControl: cacheControl,
		presets:      presets,
		fallback:     fallback,
		now:          time.Now,
	}
}

// Presets returns the preset thumbnail paths.
func (t *Thumbnails) Presets() []string {
	return t.presets
}

// Default returns the thumbnail used when none was chosen.
func (t *Thumbnails) Default() string {
	return t.fallback
}

// IsPreset reports whether p is one of the presets.
func (t *Thumbnails) IsPreset(p string) bool {
	for _, preset := range t.presets {
		if p == preset {
			return true
		}
	}
	return false
}

// Upload stores an image under thumbnails/<yyyymmdd>-<uuid><ext> and returns
// its public URL. Existing objects are never overwritten.
func (t *Thumbnails) Upload(ctx context.Context, u *Upload) (*StoredThumbnail, error) {
	if !strings.HasPrefix(u.ContentType, "image/") {
		return nil, ErrInvalidThumbnail
	}
	ext := strings.ToLower(path.Ext(u.Filename))
	name := fmt.Sprintf("thumbnails/%s-%s%s", t.now().UTC().Format("20060102"), uuid.NewString(), ext)

	err := t.store.Upload(ctx, t.bucket, name, u.Body, u.Size, storage.UploadOptions{
		ContentType:  u.ContentType,
		CacheControl: t.cacheControl,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload thumbnail: %w", err)
	}
	return &StoredThumbnail{Path: name, URL: t.store.PublicURL(t.bucket, name)}, nil
}

// Remove deletes an uploaded thumbnail.
func (t *Thumbnails) Remove(ctx context.Context, stored *StoredThumbnail) error {
	return t.store.Remove(ctx, t.bucket, stored.Path)
}

// Resolve picks the thumbnail for a form submission. A preset and an upload
// are mutually exclusive; current is kept when neither is given and falls
// back to the default. The returned StoredThumbnail is non-nil only when an
// object was uploaded.
func (t *Thumbnails) Resolve(ctx context.Context, preset, current string, upload *Upload) (string, *StoredThumbnail, error) {
	switch {
	case preset != "" && upload != nil:
		return "", nil, ErrThumbnailConflict
	case upload != nil:
		stored, err := t.Upload(ctx, upload)
		if err != nil {
			return "", nil, err
		}
		return stored.URL, stored, nil
	case preset != "":
		if !t.IsPreset(preset) {
			return "", nil, ErrInvalidThumbnail
		}
		return preset, nil, nil
	case current != "":
		if !govalidator.IsRequestURI(current) && !govalidator.IsURL(current) {
			return "", nil, ErrInvalidThumbnail
		}
		return current, nil, nil
	}
	return t.fallback, nil, nil
}
