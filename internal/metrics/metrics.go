package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sales_reports"

// Upload outcomes used as the "result" label.
const (
	ResultSuccess       = "success"
	ResultReadError     = "read_error"
	ResultTransferError = "transfer_error"
)

// Metrics holds the collectors for report uploads.
type Metrics struct {
	Uploads          *prometheus.CounterVec
	UploadBytes      prometheus.Counter
	UploadDuration   prometheus.Histogram
	MetadataFailures prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Report uploads by result.",
		}, []string{"result"}),
		UploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes transferred to blob storage by successful uploads.",
		}),
		UploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_duration_seconds",
			Help:      "Time spent transferring a report to blob storage.",
			Buckets:   prometheus.DefBuckets,
		}),
		MetadataFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_failures_total",
			Help:      "Report records that could not be saved or deleted.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Uploads, m.UploadBytes, m.UploadDuration, m.MetadataFailures)
	}
	return m
}

// ObserveUpload records the outcome of one upload.
func (m *Metrics) ObserveUpload(result string, bytes int64, seconds float64) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(result).Inc()
	m.UploadDuration.Observe(seconds)
	if result == ResultSuccess && bytes > 0 {
		m.UploadBytes.Add(float64(bytes))
	}
}

// MetadataFailed counts a metadata record that could not be saved or deleted.
func (m *Metrics) MetadataFailed() {
	if m == nil {
		return
	}
	m.MetadataFailures.Inc()
}

// Handler exposes the collectors of g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
