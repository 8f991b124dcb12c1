package api

import (
	"alcyxob/sales-reports/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteOptions carries the optional pieces of the router.
type RouteOptions struct {
	MaxUploadBytes int64        // <= 0 means unlimited
	MetricsHandler http.Handler // nil disables /metrics
}

func SetupRoutes(router *gin.Engine, reportService service.ReportService, opts RouteOptions) {
	reportHandler := NewReportHandler(reportService, opts.MaxUploadBytes)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	if opts.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}

	apiV1 := router.Group("/api/v1")
	{
		// --- Vendor Report Routes ---
		reports := apiV1.Group("/vendors/:vendorId/reports")
		{
			// POST /api/v1/vendors/{vendorId}/reports (multipart "file")
			reports.POST("", reportHandler.UploadReport)
			// GET /api/v1/vendors/{vendorId}/reports
			reports.GET("", reportHandler.ListReports)
			// GET /api/v1/vendors/{vendorId}/reports/{reportId}/download
			reports.GET("/:reportId/download", reportHandler.GetDownloadURL)
			// DELETE /api/v1/vendors/{vendorId}/reports/{reportId}
			reports.DELETE("/:reportId", reportHandler.DeleteReport)
		}
	}
}
