package archive

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/ai-tripplanner/internal/domain/export"
)

// S3Config locates the archive bucket on any S3-compatible endpoint (R2, MinIO, AWS).
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
}

// S3Store archives exported trips to object storage.
type S3Store struct {
	client *minio.Client
	bucket string
	region string
	logger *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewS3Store constructs the storage adapter.
func NewS3Store(cfg S3Config, logger *slog.Logger) (*S3Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("archive bucket cannot be empty")
	}
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "https"),
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init archive client: %w", err)
	}
	return &S3Store{client: client, bucket: cfg.Bucket, region: cfg.Region, logger: logger.With("component", "archive.s3")}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		s.bucketReady = true
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	s.logger.Info("archive bucket ready", "bucket", s.bucket)
	s.bucketReady = true
	return nil
}

// Put implements export.Archive.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (export.StoredObject, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return export.StoredObject{}, fmt.Errorf("ensure archive bucket: %w", err)
	}
	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	})
	if err != nil {
		return export.StoredObject{}, fmt.Errorf("put archive object: %w", err)
	}
	return export.StoredObject{Key: key, Size: info.Size, ETag: info.ETag}, nil
}

var _ export.Archive = (*S3Store)(nil)

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	return raw
}
