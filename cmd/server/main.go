package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"invoice-builder/internal/cache"
	"invoice-builder/internal/config"
	"invoice-builder/internal/export"
	h "invoice-builder/internal/http"
	"invoice-builder/internal/handlers"
	"invoice-builder/internal/health"
	"invoice-builder/internal/middleware"
	"invoice-builder/internal/render"
	"invoice-builder/internal/services"
	"invoice-builder/internal/session"
	"invoice-builder/internal/storage"
	"invoice-builder/internal/timeutil"
)

// pipeline is everything needed to turn an invoice state into files
type pipeline struct {
	opts     render.Options
	exporter *export.Exporter
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	fonts, err := render.LoadFonts(cfg.Render.FontRegular, cfg.Render.FontBold)
	if err != nil {
		return nil, fmt.Errorf("load fonts: %w", err)
	}

	opts := render.OptionsFor(cfg.Render.Locale, cfg.Render.CurrencySymbol)

	// The seeded form and captions must be drawable, or every preview is tofu
	state := services.NewInvoiceState(timeutil.Now(), cfg.Render.ItemRows, cfg.Render.Locale)
	doc := render.BuildDocument(state, services.CalculateTotals(state.Items, state.TaxRate), opts)
	if missing := fonts.MissingGlyphs(doc); len(missing) > 0 {
		return nil, fmt.Errorf("fonts cannot draw %q for locale %q; set render.font_regular and render.font_bold", string(missing), cfg.Render.Locale)
	}

	raster := render.NewRasterizer(fonts, cfg.BackgroundColor())
	exporter := export.NewExporter(raster, export.Options{
		Factor:         cfg.Export.Factor,
		SuppressShadow: cfg.Export.SuppressShadow,
		PNGFilename:    cfg.Export.PNGFilename,
		PDFFilename:    cfg.Export.PDFFilename,
	})

	return &pipeline{opts: opts, exporter: exporter}, nil
}

func main() {
	// Parse command-line flags
	port := flag.Int("port", 0, "Server port (overrides config)")
	renderPath := flag.String("render", "", "Render an invoice state JSON file to PNG and PDF, then exit")
	outDir := flag.String("out", ".", "Output directory for -render")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	cfg.SetupLogging()

	// Override port if specified
	if *port != 0 {
		cfg.Server.Port = *port
	}

	p, err := newPipeline(cfg)
	if err != nil {
		log.Fatalf("[Render] %v", err)
	}

	if *renderPath != "" {
		if err := renderFiles(context.Background(), p, *renderPath, *outDir); err != nil {
			log.Fatalf("[Render] %v", err)
		}
		return
	}

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if cfg.Redis.Enabled {
		if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.Printf("[Redis] Cache unavailable: %v (exports will always render)", err)
		} else {
			log.Println("[Redis] Cache connected successfully")
			ttl := time.Duration(cfg.Export.CacheTTLMin) * time.Minute
			p.exporter.WithCache(cache.NewExportCache(ttl))
		}
		defer cache.Close()
	}

	// Export archive on R2 (optional)
	if cfg.R2.Usable() {
		archiver, err := storage.NewR2Archiver(context.Background(), cfg.R2)
		if err != nil {
			log.Printf("[R2] Archive disabled: %v", err)
		} else {
			p.exporter.WithArchiver(archiver)
			log.Printf("[R2] Archiving exports to bucket %s", cfg.R2.Bucket)
		}
	}

	eo := p.exporter.Options()
	log.Printf("[Export] factor=%g suppress_shadow=%t files=%s,%s", eo.Factor, eo.SuppressShadow, eo.PNGFilename, eo.PDFFilename)

	hub := session.NewHub(session.Config{
		ItemRows:     cfg.Render.ItemRows,
		Locale:       cfg.Render.Locale,
		NominalWidth: cfg.Preview.NominalWidth,
		Padding:      cfg.Preview.Padding,
		Render:       p.opts,
	})

	invoiceHandler := handlers.NewInvoiceHandler(hub, p.exporter, p.opts)
	previewHandler := handlers.NewPreviewHandler(hub, p.opts.Formatter, cfg.Preview.NominalWidth, cfg.Preview.Padding)
	pageHandler := handlers.NewPageHandler(cfg.Render.Locale, cfg.Render.ItemRows, cfg.Preview.NominalWidth, cfg.Preview.Padding)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(cache.GetClient(), hub.Len))

	router := h.NewRouter(invoiceHandler, previewHandler, pageHandler, healthHandler)

	// Wrap with panic recovery and CORS
	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(corsMiddleware(router))

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("[Server] Invoice builder running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
