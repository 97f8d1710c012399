package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"invoice-builder/internal/export"
	"invoice-builder/internal/models"
	"invoice-builder/internal/render"
	"invoice-builder/internal/services"
	"invoice-builder/internal/session"
	"invoice-builder/pkg/utils"
)

type InvoiceHandler struct {
	hub      *session.Hub
	exporter *export.Exporter
	opts     render.Options
}

func NewInvoiceHandler(hub *session.Hub, exporter *export.Exporter, opts render.Options) *InvoiceHandler {
	return &InvoiceHandler{hub: hub, exporter: exporter, opts: opts}
}

// Totals computes subtotal, tax and total for a posted invoice state
func (h *InvoiceHandler) Totals(w http.ResponseWriter, r *http.Request) {
	var state models.InvoiceState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	utils.JSON(w, http.StatusOK, models.TotalsResponse{
		State:  state,
		Totals: services.CalculateTotals(state.Items, state.TaxRate),
	})
}

// Export renders a posted invoice state and returns it as a download
func (h *InvoiceHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := mux.Vars(r)["format"]
	if format != export.FormatPNG && format != export.FormatPDF {
		utils.Error(w, http.StatusBadRequest, "Unsupported format. Use png or pdf")
		return
	}

	var state models.InvoiceState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	surface := export.NewSurface()
	totals := services.CalculateTotals(state.Items, state.TaxRate)
	surface.Show(render.BuildDocument(state, totals, h.opts))

	h.serveExport(w, r, surface, format)
}

// SessionExport downloads what a live builder page currently shows. A page
// that is gone, or has nothing mounted, gets 204 and no file.
func (h *InvoiceHandler) SessionExport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	format := vars["format"]
	if format != export.FormatPNG && format != export.FormatPDF {
		utils.Error(w, http.StatusBadRequest, "Unsupported format. Use png or pdf")
		return
	}

	s, err := h.hub.Get(vars["id"])
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.serveExport(w, r, s.Surface(), format)
}

// SessionPreview returns the on-screen rendering of a live page
func (h *InvoiceHandler) SessionPreview(w http.ResponseWriter, r *http.Request) {
	s, err := h.hub.Get(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Session not found")
		return
	}

	data, err := h.exporter.Preview(s.Surface())
	if err != nil {
		log.Printf("[Preview] Render failed for %s: %v", s.ID, err)
		http.Error(w, "Failed to render preview", http.StatusInternalServerError)
		return
	}
	if data == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

func (h *InvoiceHandler) serveExport(w http.ResponseWriter, r *http.Request, surface *export.Surface, format string) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	a, err := h.exporter.Export(ctx, surface, format)
	if err != nil {
		log.WithFields(log.Fields{"format": format}).Errorf("[Export] failed: %v", err)
		http.Error(w, fmt.Sprintf("Failed to export %s: %v", format, err), http.StatusInternalServerError)
		return
	}
	if a == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", a.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", a.Filename))
	w.Write(a.Data)
}
