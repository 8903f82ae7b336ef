package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	data         []byte
	contentType  string
	cacheControl string
	modified     time.Time
}

// Memory is an object store that keeps objects in memory. It also serves
// them over HTTP below its base path, so it can stand in for a real bucket
// during development.
type Memory struct {
	mutex   sync.RWMutex
	base    string
	buckets map[string]map[string]*memoryObject
}

// NewMemory creates an empty in-memory store whose public URLs start with base.
func NewMemory(base string) *Memory {
	return &Memory{
		base:    strings.TrimRight(base, "/"),
		buckets: map[string]map[string]*memoryObject{},
	}
}

// Upload implements the ObjectStore interface.
func (m *Memory) Upload(_ context.Context, bucket, name string, r io.Reader, _ int64, opts UploadOptions) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	objects, ok := m.buckets[bucket]
	if !ok {
		objects = map[string]*memoryObject{}
		m.buckets[bucket] = objects
	}
	if _, exists := objects[name]; exists && !opts.Upsert {
		return fmt.Errorf("%s/%s: %w", bucket, name, ErrObjectExists)
	}
	objects[name] = &memoryObject{
		data:         data,
		contentType:  opts.ContentType,
		cacheControl: cacheControl(opts.CacheControl),
		modified:     time.Now().UTC(),
	}
	return nil
}

// PublicURL implements the ObjectStore interface.
func (m *Memory) PublicURL(bucket, name string) string {
	return m.base + "/" + url.PathEscape(bucket) + "/" + escapePath(name)
}

// List implements the ObjectStore interface. Objects are returned in key order.
func (m *Memory) List(_ context.Context, bucket, prefix string, limit, offset int) ([]Object, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	keys := make([]string, 0)
	for key := range m.buckets[bucket] {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	objects := make([]Object, 0)
	for i, key := range keys {
		if i < offset {
			continue
		}
		if limit > 0 && len(objects) >= limit {
			break
		}
		obj := m.buckets[bucket][key]
		objects = append(objects, Object{
			Name:         path.Base(key),
			Path:         key,
			Size:         int64(len(obj.data)),
			ContentType:  obj.contentType,
			LastModified: obj.modified,
			URL:          m.PublicURL(bucket, key),
		})
	}
	return objects, nil
}

// Remove implements the ObjectStore interface. Missing objects are ignored.
func (m *Memory) Remove(_ context.Context, bucket string, paths ...string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, name := range paths {
		delete(m.buckets[bucket], name)
	}
	return nil
}

// Has reports whether an object exists.
func (m *Memory) Has(bucket, name string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	_, ok := m.buckets[bucket][name]
	return ok
}

// ServeHTTP serves stored objects at <base>/<bucket>/<path>.
func (m *Memory) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, m.base+"/")
	bucket, name, ok := strings.Cut(rest, "/")
	if !ok || name == "" {
		http.NotFound(w, r)
		return
	}

	m.mutex.RLock()
	obj, found := m.buckets[bucket][name]
	m.mutex.RUnlock()
	if !found {
		http.NotFound(w, r)
		return
	}

	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	if obj.cacheControl != "" {
		w.Header().Set("Cache-Control", obj.cacheControl)
	}
	http.ServeContent(w, r, path.Base(name), obj.modified, bytes.NewReader(obj.data))
}
