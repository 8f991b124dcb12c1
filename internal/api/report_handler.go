package api

import (
	"alcyxob/sales-reports/internal/domain"
	"alcyxob/sales-reports/internal/service"
	"errors"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportHandler holds the report service dependency.
type ReportHandler struct {
	reportService  service.ReportService
	maxUploadBytes int64
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService, maxUploadBytes int64) *ReportHandler {
	return &ReportHandler{reportService: reportService, maxUploadBytes: maxUploadBytes}
}

// --- DTOs for API (Data Transfer Objects) ---

// ReportResponse is the DTO for returning report details.
type ReportResponse struct {
	ID          string    `json:"id,omitempty"` // Empty when metadata could not be recorded
	VendorID    string    `json:"vendorId"`
	ObjectKey   string    `json:"objectKey"`
	FileName    string    `json:"fileName,omitempty"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// DownloadURLResponse carries a temporary download link.
type DownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// MapReportToResponse converts a domain.SalesReport to ReportResponse DTO.
func MapReportToResponse(r *domain.SalesReport) ReportResponse {
	if r == nil {
		return ReportResponse{}
	}
	resp := ReportResponse{
		VendorID:    r.VendorID,
		ObjectKey:   r.ObjectKey,
		FileName:    r.FileName,
		ContentType: r.ContentType,
		Size:        r.Size,
		UploadedAt:  r.UploadedAt,
	}
	if r.ID != primitive.NilObjectID {
		resp.ID = r.ID.Hex()
	}
	return resp
}

// MapReportsToResponse converts a slice of domain.SalesReport to a slice of ReportResponse DTO.
func MapReportsToResponse(reports []domain.SalesReport) []ReportResponse {
	responses := make([]ReportResponse, len(reports))
	for i := range reports {
		responses[i] = MapReportToResponse(&reports[i])
	}
	return responses
}

// uploadedFile exposes the client's file name and size to the upload service.
type uploadedFile struct {
	multipart.File
	name string
	size int64
}

func (f uploadedFile) Name() string { return f.name }
func (f uploadedFile) Size() int64  { return f.size }

// --- Handler Methods ---

// UploadReport godoc
// @Summary Upload a sales report
// @Description Stores the multipart "file" under sales_reports/{vendorId}/{timestamp}.csv.
// @Tags Reports
// @Accept multipart/form-data
// @Produce json
// @Param vendorId path string true "Vendor ID"
// @Param file formData file true "Report file"
// @Success 201 {object} ReportResponse
// @Failure 400 {object} gin.H "Missing file"
// @Failure 413 {object} gin.H "File too large"
// @Failure 422 {object} gin.H "File could not be read"
// @Failure 502 {object} gin.H "Storage rejected the upload"
// @Router /vendors/{vendorId}/reports [post]
func (h *ReportHandler) UploadReport(c *gin.Context) {
	vendorID := c.Param("vendorId")

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWithError(c, http.StatusRequestEntityTooLarge, "Report file is too large.")
			return
		}
		abortWithError(c, http.StatusBadRequest, "Multipart field 'file' is required.")
		return
	}

	file, err := header.Open()
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, http.StatusUnprocessableEntity, "Report file could not be read.")
		return
	}
	defer file.Close()

	report, err := h.reportService.UploadSalesReport(
		c.Request.Context(),
		vendorID,
		uploadedFile{File: file, name: domain.BaseFileName(header.Filename), size: header.Size},
	)
	if err != nil {
		_ = c.Error(err)
		switch {
		case errors.Is(err, service.ErrFileRead):
			abortWithError(c, http.StatusUnprocessableEntity, "Report file could not be read.")
		case errors.Is(err, service.ErrStorageTransfer):
			abortWithError(c, http.StatusBadGateway, "Report could not be stored. Please retry.")
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to upload report.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapReportToResponse(report))
}

// ListReports godoc
// @Summary List a vendor's sales reports
// @Tags Reports
// @Produce json
// @Param vendorId path string true "Vendor ID"
// @Success 200 {array} ReportResponse
// @Failure 503 {object} gin.H "Metadata store disabled"
// @Router /vendors/{vendorId}/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	reports, err := h.reportService.ListVendorReports(c.Request.Context(), c.Param("vendorId"))
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to retrieve reports.")
		return
	}

	if reports == nil {
		c.JSON(http.StatusOK, []ReportResponse{}) // Return empty JSON array, not null
		return
	}
	c.JSON(http.StatusOK, MapReportsToResponse(reports))
}

// GetDownloadURL godoc
// @Summary Get a temporary download URL for a report
// @Tags Reports
// @Produce json
// @Param vendorId path string true "Vendor ID"
// @Param reportId path string true "Report ID"
// @Success 200 {object} DownloadURLResponse
// @Failure 400 {object} gin.H "Invalid report ID"
// @Failure 404 {object} gin.H "Report not found"
// @Router /vendors/{vendorId}/reports/{reportId}/download [get]
func (h *ReportHandler) GetDownloadURL(c *gin.Context) {
	reportID, ok := parseReportID(c)
	if !ok {
		return
	}

	url, err := h.reportService.GetReportDownloadURL(c.Request.Context(), c.Param("vendorId"), reportID)
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to generate download URL.")
		return
	}

	c.JSON(http.StatusOK, DownloadURLResponse{DownloadURL: url})
}

// DeleteReport godoc
// @Summary Delete a report and its stored file
// @Tags Reports
// @Param vendorId path string true "Vendor ID"
// @Param reportId path string true "Report ID"
// @Success 204
// @Failure 404 {object} gin.H "Report not found"
// @Failure 502 {object} gin.H "Storage rejected the delete"
// @Router /vendors/{vendorId}/reports/{reportId} [delete]
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	reportID, ok := parseReportID(c)
	if !ok {
		return
	}

	if err := h.reportService.DeleteReport(c.Request.Context(), c.Param("vendorId"), reportID); err != nil {
		h.abortWithServiceError(c, err, "Failed to delete report.")
		return
	}

	c.Status(http.StatusNoContent)
}

func parseReportID(c *gin.Context) (primitive.ObjectID, bool) {
	reportID, err := primitive.ObjectIDFromHex(c.Param("reportId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid report ID format.")
		return primitive.NilObjectID, false
	}
	return reportID, true
}

// abortWithServiceError maps service errors of the stored-report operations to statuses.
func (h *ReportHandler) abortWithServiceError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		abortWithError(c, http.StatusNotFound, "Report not found.")
	case errors.Is(err, service.ErrMetadataUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, "Report listing is not enabled.")
	case errors.Is(err, service.ErrStorageTransfer):
		abortWithError(c, http.StatusBadGateway, "Storage request failed. Please retry.")
	case errors.Is(err, service.ErrMetadataDelete):
		abortWithError(c, http.StatusInternalServerError, "Report file deleted but its record remains. Please retry.")
	default:
		abortWithError(c, http.StatusInternalServerError, fallback)
	}
}
