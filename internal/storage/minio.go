package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"alcyxob/sales-reports/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// minioStorage implements FileStorage using MinIO.
type minioStorage struct {
	client     *minio.Client
	bucketName string
	logger     *zap.Logger
}

// NewMinIOStorage creates a new MinIO storage client, creating the bucket if needed.
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig, logger *zap.Logger) (FileStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:     cfg.UseSSL,
		Region:     cfg.Region,
		MaxRetries: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("created minio bucket", zap.String("bucket", cfg.Bucket))
	}

	logger.Info("MinIO storage initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket))

	return &minioStorage{
		client:     client,
		bucketName: cfg.Bucket,
		logger:     logger,
	}, nil
}

// PutObject stores an object in MinIO.
func (m *minioStorage) PutObject(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucketName, objectKey, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		m.logger.Error("failed to upload object", zap.String("key", objectKey), zap.Error(err))
		return fmt.Errorf("failed to upload to minio: %w", err)
	}

	return nil
}

// GeneratePresignedDownloadURL creates a temporary URL for downloading (GET).
func (m *minioStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	u, err := m.client.PresignedGetObject(ctx, m.bucketName, objectKey, expires, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign minio object: %w", err)
	}
	return u.String(), nil
}

// DeleteObject removes an object from the bucket.
func (m *minioStorage) DeleteObject(ctx context.Context, objectKey string) error {
	if err := m.client.RemoveObject(ctx, m.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete from minio: %w", err)
	}

	m.logger.Info("deleted object", zap.String("key", objectKey), zap.String("bucket", m.bucketName))
	return nil
}
