package service

import (
	"alcyxob/sales-reports/internal/domain"
	"alcyxob/sales-reports/internal/metrics"
	"alcyxob/sales-reports/internal/repository"
	"alcyxob/sales-reports/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	// ErrFileRead means the local report file could not be opened or read.
	ErrFileRead = errors.New("report file could not be read")
	// ErrStorageTransfer means the blob backend rejected or could not complete a write.
	ErrStorageTransfer = errors.New("report transfer to storage failed")

	ErrReportNotFound      = errors.New("report not found")
	ErrDownloadURLError    = errors.New("failed to generate download URL")
	ErrMetadataUnavailable = errors.New("report metadata store is not configured")
	// ErrMetadataDelete means the object was removed but its record was not.
	ErrMetadataDelete = errors.New("report record could not be deleted")
)

// ReportService uploads vendor sales reports and manages the stored ones.
type ReportService interface {
	// UploadSalesReport stores file under sales_reports/{vendorID}/{timestamp}.csv.
	// It makes exactly one write attempt and never retries.
	UploadSalesReport(ctx context.Context, vendorID string, file io.Reader) (*domain.SalesReport, error)
	// UploadSalesReportFile opens path and uploads it as UploadSalesReport does.
	UploadSalesReportFile(ctx context.Context, vendorID, path string) (*domain.SalesReport, error)

	ListVendorReports(ctx context.Context, vendorID string) ([]domain.SalesReport, error)
	GetReportDownloadURL(ctx context.Context, vendorID string, reportID primitive.ObjectID) (string, error)
	DeleteReport(ctx context.Context, vendorID string, reportID primitive.ObjectID) error
}

// Option customizes a report service.
type Option func(*reportService)

// WithClock replaces time.Now as the source of upload timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *reportService) { s.now = now }
}

// WithPresignExpiry sets how long download URLs stay valid.
func WithPresignExpiry(d time.Duration) Option {
	return func(s *reportService) { s.presignExpiry = d }
}

// reportService implements the ReportService interface.
// All fields are set at construction and never mutated, so calls may run concurrently.
type reportService struct {
	fileStorage   storage.FileStorage
	reportRepo    repository.ReportRepository // nil disables metadata
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time
	presignExpiry time.Duration
}

// NewReportService creates a new instance of reportService. reportRepo and m may be nil.
func NewReportService(
	fileStorage storage.FileStorage,
	reportRepo repository.ReportRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ...Option,
) ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &reportService{
		fileStorage:   fileStorage,
		reportRepo:    reportRepo,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
		presignExpiry: storage.DefaultPresignedURLExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// === Upload ===

// UploadSalesReportFile opens path for reading and uploads it. A file that cannot be
// opened fails with ErrFileRead before storage is contacted.
func (s *reportService) UploadSalesReportFile(ctx context.Context, vendorID, path string) (*domain.SalesReport, error) {
	f, err := os.Open(path)
	if err != nil {
		s.metrics.ObserveUpload(metrics.ResultReadError, 0, 0)
		return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
	}
	defer f.Close()

	return s.UploadSalesReport(ctx, vendorID, f)
}

// UploadSalesReport transfers file to blob storage at the vendor-scoped, time-stamped key.
func (s *reportService) UploadSalesReport(ctx context.Context, vendorID string, file io.Reader) (*domain.SalesReport, error) {
	target := domain.NewUploadTarget(vendorID, s.now())
	objectKey := target.ObjectKey()
	log := s.logger.With(zap.String("vendorId", vendorID), zap.String("key", objectKey))

	if file == nil {
		s.metrics.ObserveUpload(metrics.ResultReadError, 0, 0)
		return nil, fmt.Errorf("%w: no file given", ErrFileRead)
	}

	size, err := readableSize(file)
	if err != nil {
		s.metrics.ObserveUpload(metrics.ResultReadError, 0, 0)
		return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
	}

	body := &trackingReader{r: file}
	started := time.Now()
	err = s.fileStorage.PutObject(ctx, objectKey, body, size, domain.SalesReportMimeType)
	elapsed := time.Since(started).Seconds()

	// A failed read surfaces through the backend's error; report it as what it is.
	if body.err != nil {
		s.metrics.ObserveUpload(metrics.ResultReadError, body.n, elapsed)
		log.Warn("reading report failed during upload", zap.Error(body.err))
		return nil, fmt.Errorf("%w: %w", ErrFileRead, body.err)
	}
	if err != nil {
		s.metrics.ObserveUpload(metrics.ResultTransferError, body.n, elapsed)
		log.Warn("report upload failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorageTransfer, err)
	}
	s.metrics.ObserveUpload(metrics.ResultSuccess, body.n, elapsed)

	report := &domain.SalesReport{
		VendorID:    vendorID,
		ObjectKey:   objectKey,
		FileName:    fileName(file),
		ContentType: domain.SalesReportMimeType,
		Size:        body.n,
		UploadedAt:  target.Timestamp,
	}
	log.Info("report uploaded", zap.Int64("bytes", body.n))

	s.recordMetadata(ctx, report)
	return report, nil
}

// recordMetadata saves report metadata. The object is already durable at this point,
// so a failure here is logged and counted but does not fail the upload.
func (s *reportService) recordMetadata(ctx context.Context, report *domain.SalesReport) {
	if s.reportRepo == nil {
		return
	}
	if _, err := s.reportRepo.Save(ctx, report); err != nil {
		s.metrics.MetadataFailed()
		s.logger.Warn("failed to save report metadata",
			zap.String("key", report.ObjectKey),
			zap.Error(err))
	}
}

// === Stored reports ===

// ListVendorReports returns the vendor's reports, newest first.
func (s *reportService) ListVendorReports(ctx context.Context, vendorID string) ([]domain.SalesReport, error) {
	if s.reportRepo == nil {
		return nil, ErrMetadataUnavailable
	}
	return s.reportRepo.ListByVendor(ctx, vendorID)
}

// GetReportDownloadURL returns a temporary GET URL for one of the vendor's reports.
func (s *reportService) GetReportDownloadURL(ctx context.Context, vendorID string, reportID primitive.ObjectID) (string, error) {
	report, err := s.vendorReport(ctx, vendorID, reportID)
	if err != nil {
		return "", err
	}

	url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, report.ObjectKey, s.presignExpiry)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDownloadURLError, err)
	}
	return url, nil
}

// DeleteReport removes the stored object and then its metadata.
func (s *reportService) DeleteReport(ctx context.Context, vendorID string, reportID primitive.ObjectID) error {
	report, err := s.vendorReport(ctx, vendorID, reportID)
	if err != nil {
		return err
	}

	if err := s.fileStorage.DeleteObject(ctx, report.ObjectKey); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageTransfer, err)
	}

	if err := s.reportRepo.Delete(ctx, reportID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReportNotFound
		}
		// The record now points at a missing object. Deleting again is safe.
		s.metrics.MetadataFailed()
		s.logger.Warn("object deleted but report record remains",
			zap.String("key", report.ObjectKey),
			zap.String("reportId", reportID.Hex()),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrMetadataDelete, err)
	}
	return nil
}

// vendorReport loads a report and checks it belongs to vendorID.
func (s *reportService) vendorReport(ctx context.Context, vendorID string, reportID primitive.ObjectID) (*domain.SalesReport, error) {
	if s.reportRepo == nil {
		return nil, ErrMetadataUnavailable
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	// Another vendor's report is indistinguishable from a missing one.
	if report.VendorID != vendorID {
		return nil, ErrReportNotFound
	}
	return report, nil
}
