package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-builder/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Render.Locale = "en"
	cfg.Render.CurrencySymbol = "¥"
	cfg.Render.Background = "#ffffff"
	cfg.Export.Factor = 1
	cfg.Export.SuppressShadow = true
	return cfg
}

func TestRenderFiles(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(statePath, []byte(`{
		"issue_date": "2026年5月23日",
		"recipient": "株式会社サンプル 様",
		"items": [{"name": "Design", "quantity": 3, "unit_price": 1500}],
		"tax_rate": 10
	}`), 0o644))

	p, err := newPipeline(testConfig())
	require.NoError(t, err)

	out := filepath.Join(dir, "out")
	require.NoError(t, renderFiles(context.Background(), p, statePath, out))

	pngData, err := os.ReadFile(filepath.Join(out, "invoice.png"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(pngData))
	require.NoError(t, err)
	assert.Equal(t, 794, img.Bounds().Dx())

	pdfData, err := os.ReadFile(filepath.Join(out, "invoice.pdf"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdfData, []byte("%PDF-")))
}

func TestRenderFilesBadState(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.json")
	require.NoError(t, os.WriteFile(statePath, []byte(`{"items": "nope"}`), 0o644))

	p, err := newPipeline(testConfig())
	require.NoError(t, err)

	err = renderFiles(context.Background(), p, statePath, dir)
	assert.ErrorContains(t, err, "parse state")
}

func TestPipelineRejectsJapaneseWithoutCJKFont(t *testing.T) {
	cfg := testConfig()
	cfg.Render.Locale = "ja"

	_, err := newPipeline(cfg)
	assert.ErrorContains(t, err, "render.font_regular")
}

func TestPipelineExporterOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Export.Factor = 0
	cfg.Export.PNGFilename = "bill.png"

	p, err := newPipeline(cfg)
	require.NoError(t, err)

	opts := p.exporter.Options()
	assert.Equal(t, 3.0, opts.Factor)
	assert.Equal(t, "bill.png", opts.PNGFilename)
	assert.Equal(t, "invoice.pdf", opts.PDFFilename)
}
