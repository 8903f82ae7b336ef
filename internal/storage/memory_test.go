package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryUpload(t *testing.T) {
	store := NewMemory("/storage")
	ctx := context.Background()

	err := store.Upload(ctx, "files", "u1/a.txt", strings.NewReader("hello"), 5, UploadOptions{ContentType: "text/plain"})
	require.NoError(t, err)
	assert.True(t, store.Has("files", "u1/a.txt"))

	err = store.Upload(ctx, "files", "u1/a.txt", strings.NewReader("again"), 5, UploadOptions{})
	assert.ErrorIs(t, err, ErrObjectExists)

	err = store.Upload(ctx, "files", "u1/a.txt", strings.NewReader("again"), 5, UploadOptions{Upsert: true})
	assert.NoError(t, err)
}

func TestMemoryListAndRemove(t *testing.T) {
	store := NewMemory("/storage")
	ctx := context.Background()

	for _, name := range []string{"u1/b.txt", "u1/a.txt", "u2/c.txt"} {
		require.NoError(t, store.Upload(ctx, "files", name, strings.NewReader(name), 0, UploadOptions{}))
	}

	objects, err := store.List(ctx, "files", "u1/", 100, 0)
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "a.txt", objects[0].Name)
	assert.Equal(t, "u1/a.txt", objects[0].Path)
	assert.Equal(t, int64(8), objects[0].Size)
	assert.Equal(t, "/storage/files/u1/a.txt", objects[0].URL)
	assert.False(t, objects[0].LastModified.IsZero())

	objects, err = store.List(ctx, "files", "u1/", 1, 1)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "b.txt", objects[0].Name)

	require.NoError(t, store.Remove(ctx, "files", "u1/a.txt", "u1/missing.txt"))
	objects, err = store.List(ctx, "files", "u1/", 100, 0)
	require.NoError(t, err)
	assert.Len(t, objects, 1)

	objects, err = store.List(ctx, "empty", "", 100, 0)
	require.NoError(t, err)
	assert.NotNil(t, objects)
	assert.Empty(t, objects)
}

func TestMemoryServeHTTP(t *testing.T) {
	store := NewMemory("/storage")
	require.NoError(t, store.Upload(context.Background(), "blog-thumbnails", "thumbnails/x.png", strings.NewReader("png"), 3, UploadOptions{
		ContentType:  "image/png",
		CacheControl: "3600",
	}))

	rec := httptest.NewRecorder()
	store.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/blog-thumbnails/thumbnails/x.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "max-age=3600", rec.Header().Get("Cache-Control"))
	body, _ := io.ReadAll(rec.Body)
	assert.Equal(t, "png", string(body))

	rec = httptest.NewRecorder()
	store.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/blog-thumbnails/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicURLEscaping(t *testing.T) {
	store := NewMemory("/storage/")
	assert.Equal(t, "/storage/files/u1/my%20file.txt", store.PublicURL("files", "u1/my file.txt"))
}

func TestCacheControl(t *testing.T) {
	assert.Equal(t, "", cacheControl(""))
	assert.Equal(t, "max-age=3600", cacheControl("3600"))
	assert.Equal(t, "no-cache", cacheControl("no-cache"))
}
