package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"quizzy-quest/internal/config"
	"quizzy-quest/internal/domain"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	DriverLocal = "local"
	DriverMinio = "minio"
)

// NewImageStore builds the image store selected by cfg.Driver.
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (domain.ImageStore, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return NewLocalImageStore(cfg.LocalDir, cfg.PublicURL), nil
	case DriverMinio:
		return NewMinioImageStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// LocalImageStore keeps images under a directory served as static files.
type LocalImageStore struct {
	root      string
	publicURL string
}

func NewLocalImageStore(root, publicURL string) *LocalImageStore {
	return &LocalImageStore{root: root, publicURL: strings.TrimSuffix(publicURL, "/")}
}

// Root is the directory images are written to.
func (s *LocalImageStore) Root() string {
	return s.root
}

func (s *LocalImageStore) resolve(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("invalid image path %q", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *LocalImageStore) Save(ctx context.Context, name string, _ string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write image %s: %w", name, err)
	}
	return nil
}

// Delete is a no-op for images that do not exist.
func (s *LocalImageStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image %s: %w", name, err)
	}
	return nil
}

func (s *LocalImageStore) URL(name string) string {
	return s.publicURL + "/" + strings.TrimPrefix(name, "/")
}

// MinioImageStore keeps images in an S3-compatible bucket.
type MinioImageStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinioImageStore connects to the endpoint and creates the bucket when missing.
func NewMinioImageStore(ctx context.Context, cfg config.StorageConfig) (*MinioImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
	}

	publicURL := strings.TrimSuffix(cfg.PublicURL, "/")
	if publicURL == "" {
		publicURL = client.EndpointURL().String() + "/" + cfg.Bucket
	}
	return &MinioImageStore{client: client, bucket: cfg.Bucket, publicURL: publicURL}, nil
}

func (s *MinioImageStore) Save(ctx context.Context, name string, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload image %s: %w", name, err)
	}
	return nil
}

func (s *MinioImageStore) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", name, err)
	}
	return nil
}

func (s *MinioImageStore) URL(name string) string {
	return s.publicURL + "/" + strings.TrimPrefix(name, "/")
}
