package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"invoice-builder/internal/export"
	"invoice-builder/internal/models"
	"invoice-builder/internal/render"
	"invoice-builder/internal/services"
)

// renderFiles writes the PNG and PDF exports of a saved invoice state
func renderFiles(ctx context.Context, p *pipeline, statePath, outDir string) error {
	raw, err := os.ReadFile(statePath)
	if err != nil {
		return fmt.Errorf("read state: %w", err)
	}

	var state models.InvoiceState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("parse state %s: %w", statePath, err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	totals := services.CalculateTotals(state.Items, state.TaxRate)
	surface := export.NewSurface()
	surface.Show(render.BuildDocument(state, totals, p.opts))

	for _, format := range []string{export.FormatPNG, export.FormatPDF} {
		a, err := p.exporter.Export(ctx, surface, format)
		if err != nil {
			return err
		}
		path := filepath.Join(outDir, a.Filename)
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		log.WithFields(log.Fields{"file": path, "bytes": len(a.Data)}).Info("[Render] wrote export")
	}

	log.Printf("[Render] subtotal=%v tax=%v total=%v", totals.Subtotal, totals.Tax, totals.Total)
	return nil
}
