package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// ShadowOffset is the width of the drop shadow band in layout pixels
const ShadowOffset = 8.0

var shadowColor = color.RGBA{R: 0xd9, G: 0xdb, B: 0xdf, A: 0xff}

var ErrInvalidFactor = errors.New("rasterize: scale factor must be positive")

// Rasterizer converts a Document into a bitmap
type Rasterizer struct {
	fonts      *FontSet
	background color.RGBA
}

// NewRasterizer creates a rasterizer. The background is forced opaque.
func NewRasterizer(fonts *FontSet, background color.RGBA) *Rasterizer {
	background.A = 0xff
	return &Rasterizer{fonts: fonts, background: background}
}

// Fingerprint identifies everything besides the document that changes the
// output: background colour and fonts.
func (r *Rasterizer) Fingerprint() string {
	return fmt.Sprintf("%02x%02x%02x-%s", r.background.R, r.background.G, r.background.B, r.fonts.ID())
}

// CanvasSize returns the pixel size of a rasterized page at the given factor
func CanvasSize(doc *Document, factor float64, shadow bool) (int, int) {
	w, h := doc.Width, doc.Height
	if shadow {
		w += ShadowOffset
		h += ShadowOffset
	}
	return int(math.Round(w * factor)), int(math.Round(h * factor))
}

// Rasterize draws the document at factor pixels per layout pixel onto an
// opaque canvas. When shadow is set the canvas grows by the shadow band.
func (r *Rasterizer) Rasterize(doc *Document, factor float64, shadow bool) (*image.RGBA, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil, ErrInvalidFactor
	}

	w, h := CanvasSize(doc, factor, shadow)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)

	pageW, pageH := CanvasSize(doc, factor, false)
	if shadow {
		off := int(math.Round(ShadowOffset * factor))
		band := image.NewUniform(shadowColor)
		draw.Draw(img, image.Rect(pageW, off, w, h), band, image.Point{}, draw.Src)
		draw.Draw(img, image.Rect(off, pageH, w, h), band, image.Point{}, draw.Src)
	}
	page := img.SubImage(image.Rect(0, 0, pageW, pageH)).(*image.RGBA)

	for _, rule := range doc.Rules {
		rect := image.Rect(
			int(math.Round(rule.X1*factor)),
			int(math.Round(rule.Y*factor)),
			int(math.Round(rule.X2*factor)),
			int(math.Round((rule.Y+rule.Thickness)*factor)),
		)
		draw.Draw(page, rect, image.NewUniform(rule.Color), image.Point{}, draw.Src)
	}

	faces := newFaceCache(r.fonts)
	defer faces.Close()

	for _, t := range doc.Texts {
		face, err := faces.face(t.Bold, t.Size*factor)
		if err != nil {
			return nil, fmt.Errorf("rasterize: font face: %w", err)
		}

		x := fixed.Int26_6(math.Round(t.X * factor * 64))
		if t.Align == AlignRight {
			x -= font.MeasureString(face, t.Value)
		}
		d := &font.Drawer{
			Dst:  page,
			Src:  image.NewUniform(t.Color),
			Face: face,
			Dot:  fixed.Point26_6{X: x, Y: fixed.Int26_6(math.Round(t.Y * factor * 64))},
		}
		d.DrawString(t.Value)
	}

	return img, nil
}
