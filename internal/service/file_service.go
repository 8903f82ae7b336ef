package service

import (
	"context"
	"fmt"
	"go-portfolio-blog/internal/auth"
	"go-portfolio-blog/internal/storage"
	"path"
	"strings"
)

// fileListLimit caps how many files a listing returns.
const fileListLimit = 100

// FileService lets signed-in users keep files in their own folder of the
// files bucket.
type FileService struct {
	store        storage.ObjectStore
	bucket       string
	cacheControl string
}

// NewFileService creates a new FileService.
func NewFileService(store storage.ObjectStore, bucket, cacheControl string) *FileService {
	return &FileService{store: store, bucket: bucket, cacheControl: cacheControl}
}

func folder(id *auth.Identity) string {
	return id.Subject + "/"
}

func cleanName(name string) (string, error) {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", ErrInvalidFileName
	}
	return name, nil
}

// List returns the user's files.
func (s *FileService) List(ctx context.Context, id *auth.Identity) ([]storage.Object, error) {
	if id == nil {
		return nil, ErrSignInRequired
	}
	files, err := s.store.List(ctx, s.bucket, folder(id), fileListLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// Upload stores a file in the user's folder. A file with the same name is
// not replaced; storage.ErrObjectExists is returned instead.
func (s *FileService) Upload(ctx context.Context, id *auth.Identity, u *Upload) (string, error) {
	if id == nil {
		return "", ErrSignInRequired
	}
	name, err := cleanName(u.Filename)
	if err != nil {
		return "", err
	}
	key := folder(id) + name
	err = s.store.Upload(ctx, s.bucket, key, u.Body, u.Size, storage.UploadOptions{
		ContentType:  u.ContentType,
		CacheControl: s.cacheControl,
	})
	if err != nil {
		return "", err
	}
	return s.store.PublicURL(s.bucket, key), nil
}

// Delete removes a file from the user's folder.
func (s *FileService) Delete(ctx context.Context, id *auth.Identity, name string) error {
	if id == nil {
		return ErrSignInRequired
	}
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, s.bucket, folder(id)+name); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
