package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"alcyxob/sales-reports/internal/config"

	"go.uber.org/zap"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// Supported storage drivers.
const (
	DriverS3    = "s3"
	DriverMinIO = "minio"
)

// ErrUnknownDriver is returned by New for a driver name it does not know.
var ErrUnknownDriver = errors.New("unknown storage driver")

// FileStorage defines the interface for object storage operations.
// Implementations must be safe for concurrent use and must not retry failed writes.
type FileStorage interface {
	// PutObject writes body to objectKey, overwriting any existing object.
	// size may be -1 when unknown.
	PutObject(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET requests
	// for downloading an object directly from the storage provider.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteObject removes an object from the storage provider.
	DeleteObject(ctx context.Context, objectKey string) error
}

// New creates the FileStorage selected by cfg.Storage.Driver.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (FileStorage, error) {
	switch cfg.Storage.Driver {
	case DriverS3, "":
		return NewS3Storage(ctx, cfg.S3, logger)
	case DriverMinIO:
		return NewMinIOStorage(ctx, cfg.MinIO, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Storage.Driver)
	}
}
