package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "invoice_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// ExportsTotal counts export attempts; result is success, error, cached or skipped
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_exports_total",
			Help: "Invoice exports by format and result",
		},
		[]string{"format", "result"},
	)

	RasterizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "invoice_rasterize_duration_seconds",
			Help:    "Time spent rasterizing a document",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)

	PreviewSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "invoice_preview_sessions",
			Help: "Open live preview sessions",
		},
	)

	PreviewEdits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "invoice_preview_edits_total",
			Help: "Form edits received over the preview channel",
		},
		[]string{"field"},
	)
)
