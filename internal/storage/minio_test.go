package storage

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-portfolio-blog/internal/config"
)

func TestMinioPublicURL(t *testing.T) {
	store, err := NewMinio(config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/filehoster-files/u1/a%20b.txt", store.PublicURL("filehoster-files", "u1/a b.txt"))

	store, err = NewMinio(config.StorageConfig{
		Endpoint:  "localhost:9000",
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/blog-thumbnails/thumbnails/x.png", store.PublicURL("blog-thumbnails", "thumbnails/x.png"))
}

// TestMinioStore runs against a live server when BLOG_TEST_MINIO_ENDPOINT is set.
func TestMinioStore(t *testing.T) {
	endpoint := os.Getenv("BLOG_TEST_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("BLOG_TEST_MINIO_ENDPOINT not set")
	}

	store, err := NewMinio(config.StorageConfig{
		Endpoint:  endpoint,
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	ctx := context.Background()
	bucket := "blog-test"
	require.NoError(t, store.EnsureBucket(ctx, bucket))

	prefix := uuid.NewString() + "/"
	name := prefix + "a.txt"
	require.NoError(t, store.Upload(ctx, bucket, name, bytes.NewReader([]byte("hello")), 5, UploadOptions{ContentType: "text/plain"}))

	err = store.Upload(ctx, bucket, name, bytes.NewReader([]byte("hello")), 5, UploadOptions{})
	assert.ErrorIs(t, err, ErrObjectExists)

	objects, err := store.List(ctx, bucket, prefix, 100, 0)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "a.txt", objects[0].Name)
	assert.Equal(t, int64(5), objects[0].Size)

	require.NoError(t, store.Remove(ctx, bucket, name))
	objects, err = store.List(ctx, bucket, prefix, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, objects)
}
