package domain

import (
	"path"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Storage layout for vendor sales reports.
const (
	SalesReportsPrefix    = "sales_reports"
	SalesReportExtension  = ".csv"
	SalesReportMimeType   = "text/csv"
	ReportTimestampLayout = "2006-01-02T15:04:05.000000000Z07:00" // ISO-8601, fixed nanoseconds
)

// UploadTarget is the destination of a single report upload.
// It lives only for the duration of one upload call.
type UploadTarget struct {
	VendorID  string    // Verbatim, never sanitized
	Timestamp time.Time // Captured at call time
}

// NewUploadTarget builds the target for vendorID at instant t (normalized to UTC).
func NewUploadTarget(vendorID string, t time.Time) UploadTarget {
	return UploadTarget{VendorID: vendorID, Timestamp: t.UTC()}
}

// EncodedTimestamp renders the capture instant as used in the object key.
func (t UploadTarget) EncodedTimestamp() string {
	return t.Timestamp.UTC().Format(ReportTimestampLayout)
}

// ObjectKey returns sales_reports/{vendorId}/{timestamp}.csv.
func (t UploadTarget) ObjectKey() string {
	// path.Join would clean "..", "//" etc. out of the vendor id; keep it verbatim.
	return SalesReportsPrefix + "/" + t.VendorID + "/" + t.EncodedTimestamp() + SalesReportExtension
}

// VendorPrefix is the key prefix under which all reports of a vendor are stored.
func VendorPrefix(vendorID string) string {
	return SalesReportsPrefix + "/" + vendorID + "/"
}

// SalesReport stores metadata about a report uploaded for a vendor.
// The actual file resides in blob storage under ObjectKey.
type SalesReport struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VendorID    string             `bson:"vendorId" json:"vendorId"`
	ObjectKey   string             `bson:"objectKey" json:"objectKey"`
	FileName    string             `bson:"fileName,omitempty" json:"fileName,omitempty"` // Original name, if known
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"` // Bytes transferred
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}

// BaseFileName returns the last element of a client supplied file name.
func BaseFileName(name string) string {
	if name == "" {
		return ""
	}
	return path.Base(name)
}
