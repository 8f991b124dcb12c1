package mongo

import (
	"alcyxob/sales-reports/internal/domain"
	"alcyxob/sales-reports/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reportCollectionName = "sales_reports"

// mongoReportRepository implements repository.ReportRepository
type mongoReportRepository struct {
	collection *mongo.Collection
}

// NewMongoReportRepository creates a new report repository backed by MongoDB.
func NewMongoReportRepository(db *mongo.Database) repository.ReportRepository {
	return &mongoReportRepository{
		collection: db.Collection(reportCollectionName),
	}
}

// Save upserts report metadata keyed by objectKey.
func (r *mongoReportRepository) Save(ctx context.Context, report *domain.SalesReport) (primitive.ObjectID, error) {
	if report.VendorID == "" || report.ObjectKey == "" {
		return primitive.NilObjectID, repository.ErrInvalid
	}

	filter := bson.M{"objectKey": report.ObjectKey}
	update := bson.M{
		"$set": bson.M{
			"vendorId":    report.VendorID,
			"fileName":    report.FileName,
			"contentType": report.ContentType,
			"size":        report.Size,
			"uploadedAt":  report.UploadedAt,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved domain.SalesReport
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return primitive.NilObjectID, err
	}

	report.ID = saved.ID
	return saved.ID, nil
}

// GetByID retrieves report metadata by its ID.
func (r *mongoReportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SalesReport, error) {
	var report domain.SalesReport
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// ListByVendor retrieves all report metadata of a vendor, newest first.
func (r *mongoReportRepository) ListByVendor(ctx context.Context, vendorID string) ([]domain.SalesReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"vendorId": vendorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []domain.SalesReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Delete removes report metadata.
func (r *mongoReportRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureReportIndexes creates necessary indexes for the sales_reports collection.
func EnsureReportIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Vendor listing, newest first
			Keys:    bson.D{{Key: "vendorId", Value: 1}, {Key: "uploadedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// One record per stored object
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
