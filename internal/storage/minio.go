package storage

import (
	"context"
	"fmt"
	"go-portfolio-blog/internal/config"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Minio stores objects in S3 compatible buckets.
type Minio struct {
	client       *minio.Client
	publicURL    string
	cacheControl string
}

// NewMinio creates a new Minio store from the storage configuration.
func NewMinio(cfg config.StorageConfig) (*Minio, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	public := cfg.PublicURL
	if public == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		public = scheme + "://" + cfg.Endpoint
	}

	return &Minio{
		client:       client,
		publicURL:    strings.TrimRight(public, "/"),
		cacheControl: cacheControl(cfg.CacheControl),
	}, nil
}

// EnsureBucket creates the bucket if missing and makes its objects publicly readable.
func (m *Minio) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
	}

	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
	if err := m.client.SetBucketPolicy(ctx, bucket, policy); err != nil {
		return fmt.Errorf("failed to set policy on bucket %s: %w", bucket, err)
	}
	return nil
}

// Upload implements the ObjectStore interface.
func (m *Minio) Upload(ctx context.Context, bucket, name string, r io.Reader, size int64, opts UploadOptions) error {
	// check object
	if !opts.Upsert {
		_, err := m.client.StatObject(ctx, bucket, name, minio.StatObjectOptions{})
		if isMinioNotFoundErr(err) {
			// continue
		} else if err != nil {
			return err
		} else {
			return fmt.Errorf("%s/%s: %w", bucket, name, ErrObjectExists)
		}
	}

	cc := cacheControl(opts.CacheControl)
	if cc == "" {
		cc = m.cacheControl
	}
	_, err := m.client.PutObject(ctx, bucket, name, r, size, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		CacheControl: cc,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s/%s: %w", bucket, name, err)
	}
	return nil
}

// PublicURL implements the ObjectStore interface.
func (m *Minio) PublicURL(bucket, name string) string {
	return m.publicURL + "/" + url.PathEscape(bucket) + "/" + escapePath(name)
}

// List implements the ObjectStore interface.
func (m *Minio) List(ctx context.Context, bucket, prefix string, limit, offset int) ([]Object, error) {
	// stop the listing goroutine once enough objects are read
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects := make([]Object, 0)
	skipped := 0
	for info := range m.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list %s/%s: %w", bucket, prefix, info.Err)
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(objects) >= limit {
			break
		}
		objects = append(objects, Object{
			Name:         path.Base(info.Key),
			Path:         info.Key,
			Size:         info.Size,
			ContentType:  info.ContentType,
			LastModified: info.LastModified,
			URL:          m.PublicURL(bucket, info.Key),
		})
	}
	return objects, nil
}

// Remove implements the ObjectStore interface.
func (m *Minio) Remove(ctx context.Context, bucket string, paths ...string) error {
	for _, name := range paths {
		err := m.client.RemoveObject(ctx, bucket, name, minio.RemoveObjectOptions{})
		if err != nil && !isMinioNotFoundErr(err) {
			return fmt.Errorf("failed to remove %s/%s: %w", bucket, name, err)
		}
	}
	return nil
}

func isMinioNotFoundErr(err error) bool {
	return minio.ToErrorResponse(err).StatusCode == http.StatusNotFound
}
