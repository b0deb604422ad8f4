package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/spec-kit/applicant-tracker/internal/config"
)

// MinioStore keeps résumés in a private MinIO/S3 bucket. Uploads go through
// the internal endpoint; links are signed against the public one so the
// browser can reach them.
type MinioStore struct {
	internalClient *minio.Client
	publicClient   *minio.Client
	bucket         string
}

// NewMinioStore initialises both clients and makes sure the bucket exists.
func NewMinioStore(ctx context.Context, cfg config.StorageConfig) (*MinioStore, error) {
	creds := credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	internalClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init internal minio client: %w", err)
	}

	publicClient := internalClient
	if cfg.PublicEndpoint != "" {
		parsed, err := url.Parse(cfg.PublicEndpoint)
		if err != nil {
			return nil, fmt.Errorf("parse storage public endpoint: %w", err)
		}
		if parsed.Host == "" {
			return nil, fmt.Errorf("invalid storage public endpoint %q: host missing", cfg.PublicEndpoint)
		}
		publicClient, err = minio.New(parsed.Host, &minio.Options{
			Creds:  creds,
			Secure: parsed.Scheme == "https",
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("init public minio client: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := internalClient.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if !cfg.AutoCreateBucket {
			return nil, fmt.Errorf("bucket %q does not exist (auto create disabled)", cfg.Bucket)
		}
		if err := internalClient.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &MinioStore{
		internalClient: internalClient,
		publicClient:   publicClient,
		bucket:         cfg.Bucket,
	}, nil
}

// Upload stores the object, never overwriting silently: callers generate
// unique paths.
func (s *MinioStore) Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.internalClient.PutObject(ctx, s.bucket, path, reader, size, opts); err != nil {
		return fmt.Errorf("put object %q: %w", path, err)
	}
	return nil
}

// SignedURL presigns a GET for path.
func (s *MinioStore) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrObjectNotFound
	}
	if _, err := s.internalClient.StatObject(ctx, s.bucket, path, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return "", ErrObjectNotFound
		}
		return "", fmt.Errorf("stat object %q: %w", path, err)
	}
	presigned, err := s.publicClient.PresignedGetObject(ctx, s.bucket, path, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", path, err)
	}
	return presigned.String(), nil
}

// Delete removes path.
func (s *MinioStore) Delete(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := s.internalClient.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", path, err)
	}
	return nil
}

// Ping checks that the bucket is reachable.
func (s *MinioStore) Ping(ctx context.Context) error {
	ok, err := s.internalClient.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q missing", s.bucket)
	}
	return nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}
