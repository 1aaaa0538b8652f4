// Package archive copies raw uploads to S3-compatible object storage.
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

	"github.com/yanqian/textcraft/internal/domain/textcraft"
)

// R2Archive stores uploads in Cloudflare R2 or any S3-compatible bucket.
type R2Archive struct {
	client *minio.Client
	bucket string
	logger *slog.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewR2Archive constructs the archive adapter.
func NewR2Archive(endpoint, accessKey, secretKey, bucket, region string, logger *slog.Logger) (*R2Archive, error) {
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("archive bucket cannot be empty")
	}
	client, err := minio.New(sanitizeEndpoint(endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure:       !strings.HasPrefix(strings.ToLower(strings.TrimSpace(endpoint)), "http://"),
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init r2 client: %w", err)
	}
	return &R2Archive{client: client, bucket: bucket, logger: logger.With("component", "archive.r2")}, nil
}

// Store uploads data under key.
func (a *R2Archive) Store(ctx context.Context, key string, data []byte, contentType string) error {
	if err := a.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket %s: %w", a.bucket, err)
	}
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:      contentType,
		DisableMultipart: true,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	a.logger.Debug("upload archived", "key", key, "size", info.Size, "etag", info.ETag)
	return nil
}

// ensureBucket creates the bucket on first use. Failures are retried on the next call.
func (a *R2Archive) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.bucketReady {
		return nil
	}
	if err := a.createBucket(ctx); err != nil {
		return err
	}
	a.bucketReady = true
	return nil
}

func (a *R2Archive) createBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err == nil && exists {
		return nil
	}
	err = a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}

var _ textcraft.UploadArchive = (*R2Archive)(nil)
