package storage

import (
	"context"
	"io"
	"time"

	"alcyxob/sales-reports/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// s3Storage implements the FileStorage interface using an S3-compatible backend.
type s3Storage struct {
	client        *s3.Client        // Regular client for operations like DeleteObject
	uploader      *manager.Uploader // Streams bodies of unknown length as multipart uploads
	presignClient *s3.PresignClient // Special client for generating presigned URLs
	bucketName    string
	logger        *zap.Logger
}

// NewS3Storage creates a new S3 storage service instance.
func NewS3Storage(ctx context.Context, cfg config.S3Config, logger *zap.Logger) (FileStorage, error) {
	opts := []func(*awsCfg.LoadOptions) error{
		awsCfg.WithRegion(cfg.Region),
	}
	// Static keys when configured, otherwise the default credential chain.
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsCfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}

	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		logger.Error("failed to load AWS SDK config for S3", zap.Error(err))
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
		// One write attempt per upload; callers own any retry policy.
		o.Retryer = aws.NopRetryer{}
	})

	logger.Info("S3 storage initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.BucketName))

	// A failed multipart upload is left as is: no abort, no cleanup of uploaded parts.
	uploader := manager.NewUploader(s3Client, func(u *manager.Uploader) {
		u.LeavePartsOnError = true
	})

	return &s3Storage{
		client:        s3Client,
		uploader:      uploader,
		presignClient: s3.NewPresignClient(s3Client),
		bucketName:    cfg.BucketName,
		logger:        logger,
	}, nil
}

// PutObject uploads body to objectKey. The uploader sizes parts itself, so size is
// only informational here.
func (s *s3Storage) PutObject(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		s.logger.Error("failed to upload object",
			zap.String("key", objectKey),
			zap.String("bucket", s.bucketName),
			zap.Error(err))
		return err
	}

	s.logger.Debug("uploaded object", zap.String("key", objectKey), zap.String("bucket", s.bucketName))
	return nil
}

// GeneratePresignedDownloadURL creates a temporary URL for downloading (GET).
func (s *s3Storage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	presignParams := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}

	req, err := s.presignClient.PresignGetObject(ctx, presignParams, s3.WithPresignExpires(expires))
	if err != nil {
		s.logger.Error("failed to generate presigned GET URL", zap.String("key", objectKey), zap.Error(err))
		return "", err
	}

	return req.URL, nil
}

// DeleteObject removes an object from the S3 bucket.
func (s *s3Storage) DeleteObject(ctx context.Context, objectKey string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		s.logger.Error("failed to delete object",
			zap.String("key", objectKey),
			zap.String("bucket", s.bucketName),
			zap.Error(err))
		return err
	}

	s.logger.Info("deleted object", zap.String("key", objectKey), zap.String("bucket", s.bucketName))
	return nil
}
