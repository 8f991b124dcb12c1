package repository

import (
	"alcyxob/sales-reports/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDeleteFailed = RepositoryError("delete failed")
	ErrInvalid      = RepositoryError("invalid record")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ReportRepository defines the interface for interacting with sales report metadata.
type ReportRepository interface {
	// Save upserts the record keyed by its ObjectKey and returns the stored ID.
	// A second save for the same key replaces the first (last writer wins).
	Save(ctx context.Context, report *domain.SalesReport) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SalesReport, error)
	// ListByVendor returns a vendor's reports, newest first.
	ListByVendor(ctx context.Context, vendorID string) ([]domain.SalesReport, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
