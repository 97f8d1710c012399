package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	log "github.com/sirupsen/logrus"

	"invoice-builder/internal/metrics"
	"invoice-builder/internal/render"
)

const (
	FormatPNG = "png"
	FormatPDF = "pdf"

	DefaultFactor      = 3.0
	DefaultPNGFilename = "invoice.png"
	DefaultPDFFilename = "invoice.pdf"

	pdfImageName = "invoice"
)

// Artifact is one exported file
type Artifact struct {
	Filename    string
	ContentType string
	Format      string
	Key         string
	Data        []byte
}

// Rasterizer turns a document into a bitmap
type Rasterizer interface {
	Rasterize(doc *render.Document, factor float64, shadow bool) (*image.RGBA, error)
}

// Cache stores finished exports by key
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}

// Archiver keeps a copy of each produced export
type Archiver interface {
	Archive(ctx context.Context, a *Artifact) error
}

// Options configure the export pipeline
type Options struct {
	// Factor is the supersampling factor of the capture
	Factor float64
	// SuppressShadow hides the drop shadow while capturing
	SuppressShadow bool
	PNGFilename    string
	PDFFilename    string
}

// Exporter captures a surface and produces PNG or single-page PDF files
type Exporter struct {
	raster   Rasterizer
	opts     Options
	cache    Cache
	archiver Archiver
	// rasterID identifies the rasterizer's fonts and background in cache keys
	rasterID string
}

type fingerprinter interface {
	Fingerprint() string
}

func NewExporter(raster Rasterizer, opts Options) *Exporter {
	if opts.Factor <= 0 {
		opts.Factor = DefaultFactor
	}
	if opts.PNGFilename == "" {
		opts.PNGFilename = DefaultPNGFilename
	}
	if opts.PDFFilename == "" {
		opts.PDFFilename = DefaultPDFFilename
	}
	e := &Exporter{raster: raster, opts: opts}
	if fp, ok := raster.(fingerprinter); ok {
		e.rasterID = fp.Fingerprint()
	}
	return e
}

// WithCache enables the export cache
func (e *Exporter) WithCache(c Cache) *Exporter {
	e.cache = c
	return e
}

// WithArchiver enables archiving of produced exports
func (e *Exporter) WithArchiver(a Archiver) *Exporter {
	e.archiver = a
	return e
}

// Options returns the effective options
func (e *Exporter) Options() Options {
	return e.opts
}

// PNG exports the surface as a PNG. A surface with nothing mounted yields a
// nil artifact and no error.
func (e *Exporter) PNG(ctx context.Context, s *Surface) (*Artifact, error) {
	return e.export(ctx, s, FormatPNG)
}

// PDF exports the surface as a single A4 portrait page with the capture
// aspect-fit and centered.
func (e *Exporter) PDF(ctx context.Context, s *Surface) (*Artifact, error) {
	return e.export(ctx, s, FormatPDF)
}

// Export dispatches on format name
func (e *Exporter) Export(ctx context.Context, s *Surface, format string) (*Artifact, error) {
	switch format {
	case FormatPNG, FormatPDF:
		return e.export(ctx, s, format)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Preview renders the page at 1x without the shadow band so the image keeps
// the nominal page width; the builder page draws the shadow itself. It is not
// cached or archived.
func (e *Exporter) Preview(s *Surface) ([]byte, error) {
	doc := s.Document()
	if doc == nil {
		return nil, nil
	}
	img, err := e.raster.Rasterize(doc, 1, false)
	if err != nil {
		return nil, fmt.Errorf("rasterize preview: %w", err)
	}
	return encodePNG(img)
}

func (e *Exporter) export(ctx context.Context, s *Surface, format string) (*Artifact, error) {
	doc := s.Document()
	if doc == nil {
		metrics.ExportsTotal.WithLabelValues(format, "skipped").Inc()
		return nil, nil
	}

	// Only fresh renders are archived. A hit means the same bytes went to the
	// archive when the entry was filled, within the cache TTL.
	key := e.cacheKey(format, doc)
	if e.cache != nil {
		if data, ok := e.cache.Get(ctx, key); ok {
			metrics.ExportsTotal.WithLabelValues(format, "cached").Inc()
			return e.artifact(format, key, data), nil
		}
	}

	img, err := e.capture(s, doc)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues(format, "error").Inc()
		return nil, err
	}

	data, err := encodePNG(img)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues(format, "error").Inc()
		return nil, err
	}
	if format == FormatPDF {
		data, err = composePDF(data, img.Bounds())
		if err != nil {
			metrics.ExportsTotal.WithLabelValues(format, "error").Inc()
			return nil, err
		}
	}

	a := e.artifact(format, key, data)
	metrics.ExportsTotal.WithLabelValues(format, "success").Inc()

	if e.cache != nil {
		e.cache.Set(ctx, key, data)
	}
	if e.archiver != nil {
		if err := e.archiver.Archive(ctx, a); err != nil {
			log.WithFields(log.Fields{"format": format, "key": key}).Warnf("[Export] archive failed: %v", err)
		}
	}
	return a, nil
}

// capture rasterizes the displayed document. The shadow is restored on every
// exit path, including a panicking rasterizer.
func (e *Exporter) capture(s *Surface, doc *render.Document) (*image.RGBA, error) {
	if e.opts.SuppressShadow {
		s.hideShadow()
		defer s.restoreShadow()
	}

	start := time.Now()
	img, err := e.raster.Rasterize(doc, e.opts.Factor, s.ShadowVisible())
	metrics.RasterizeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("rasterize: %w", err)
	}
	return img, nil
}

func (e *Exporter) artifact(format, key string, data []byte) *Artifact {
	a := &Artifact{Format: format, Key: key, Data: data}
	switch format {
	case FormatPDF:
		a.Filename = e.opts.PDFFilename
		a.ContentType = "application/pdf"
	default:
		a.Filename = e.opts.PNGFilename
		a.ContentType = "image/png"
	}
	return a
}

func (e *Exporter) cacheKey(format string, doc *render.Document) string {
	return fmt.Sprintf("export:%s:%g:%t:%s:%s", format, e.opts.Factor, e.opts.SuppressShadow, e.rasterID, doc.Fingerprint())
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// composePDF places the PNG on one A4 portrait page using Fit
func composePDF(pngData []byte, bounds image.Rectangle) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Invoice", true)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	p := Fit(pageW, pageH, float64(bounds.Dx()), float64(bounds.Dy()))

	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(pdfImageName, opt, bytes.NewReader(pngData))
	pdf.ImageOptions(pdfImageName, p.X, p.Y, p.Width, p.Height, false, opt, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
