package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"invoice-builder/internal/handlers"
	"invoice-builder/internal/middleware"
)

func NewRouter(
	invoiceHandler *handlers.InvoiceHandler,
	previewHandler *handlers.PreviewHandler,
	pageHandler *handlers.PageHandler,
	healthHandler *handlers.HealthHandler,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.MetricsMiddleware)

	// Builder page and its live preview channel
	r.HandleFunc("/", pageHandler.BuilderPage).Methods("GET")
	r.HandleFunc("/ws/preview", previewHandler.Live).Methods("GET")

	// Live sessions
	sessions := r.PathPrefix("/api/sessions/{id}").Subrouter()
	sessions.HandleFunc("/preview.png", invoiceHandler.SessionPreview).Methods("GET")
	sessions.HandleFunc("/export/{format}", invoiceHandler.SessionExport).Methods("GET")

	// Stateless API
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/invoices/totals", invoiceHandler.Totals).Methods("POST")
	api.HandleFunc("/invoices/export/{format}", invoiceHandler.Export).Methods("POST")
	api.HandleFunc("/preview/scale", previewHandler.Scale).Methods("POST")

	// Health endpoints (for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
