package render

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image/color"
	"strings"

	"invoice-builder/internal/models"
)

// Page geometry. Layout units are CSS pixels (96 per inch) on an A4 page.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
	PxPerMM      = 96 / 25.4

	PageWidth  = PageWidthMM * PxPerMM
	PageHeight = PageHeightMM * PxPerMM

	pagePadding = 48.0
	baseSize    = 16.0
	lineHeight  = 24.0
)

// Align is the horizontal anchor of a text run
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

var (
	colorPrimary = color.RGBA{R: 0x1f, G: 0x3a, B: 0x5f, A: 0xff}
	colorText    = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	colorRule    = color.RGBA{R: 0xd1, G: 0xd5, B: 0xdb, A: 0xff}
	colorRowRule = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
)

// Text is one run of text. Y is the baseline; for AlignRight, X is the right edge.
type Text struct {
	X     float64    `json:"x"`
	Y     float64    `json:"y"`
	Size  float64    `json:"size"`
	Bold  bool       `json:"bold,omitempty"`
	Align Align      `json:"align,omitempty"`
	Color color.RGBA `json:"color"`
	Value string     `json:"value"`
}

// Rule is a horizontal line starting at the top edge Y
type Rule struct {
	X1        float64    `json:"x1"`
	X2        float64    `json:"x2"`
	Y         float64    `json:"y"`
	Thickness float64    `json:"thickness"`
	Color     color.RGBA `json:"color"`
}

// Document is the display list of a rendered invoice
type Document struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Texts  []Text  `json:"texts"`
	Rules  []Rule  `json:"rules"`
}

// Fingerprint identifies the visual content of the document
func (d *Document) Fingerprint() string {
	data, err := json.Marshal(d)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Options control document captions and number formatting
type Options struct {
	Labels    Labels
	Formatter *Formatter
}

type layout struct {
	doc  *Document
	opts Options
}

func (l *layout) text(x, top, size float64, bold bool, align Align, c color.RGBA, value string) {
	if value == "" {
		return
	}
	l.doc.Texts = append(l.doc.Texts, Text{
		X: x, Y: top + size*0.8, Size: size, Bold: bold, Align: align, Color: c, Value: value,
	})
}

func (l *layout) rule(x1, x2, y, thickness float64, c color.RGBA) {
	l.doc.Rules = append(l.doc.Rules, Rule{X1: x1, X2: x2, Y: y, Thickness: thickness, Color: c})
}

// BuildDocument maps an invoice state and its totals onto a fixed-size page.
// Content that runs past the bottom of the page is clipped by the rasterizer.
func BuildDocument(state models.InvoiceState, totals models.Totals, opts Options) *Document {
	doc := &Document{Width: PageWidth, Height: PageHeight}
	l := &layout{doc: doc, opts: opts}
	lb := opts.Labels
	f := opts.Formatter

	left := pagePadding
	right := PageWidth - pagePadding
	contentWidth := right - left

	// Header: title and recipient on the left, dates and sender on the right
	l.text(left, pagePadding, 30, true, AlignLeft, colorPrimary, lb.Title)
	l.text(left, pagePadding+36+16, baseSize, false, AlignLeft, colorText, state.Recipient)

	top := pagePadding
	l.text(right, top, baseSize, false, AlignRight, colorText, fmt.Sprintf("%s: %s", lb.IssueDate, state.IssueDate))
	top += lineHeight
	l.text(right, top, baseSize, false, AlignRight, colorText, fmt.Sprintf("%s: %s", lb.DueDate, state.DueDate))
	top += lineHeight + 16
	l.text(right, top, baseSize, true, AlignRight, colorPrimary, state.SenderName)
	top += lineHeight
	l.text(right, top, baseSize, false, AlignRight, colorText, state.SenderAddress)
	top += lineHeight
	l.text(right, top, baseSize, false, AlignRight, colorText, fmt.Sprintf("%s: %s", lb.Phone, state.SenderPhone))
	top += lineHeight

	// Item table
	qtyRight := left + contentWidth*0.6
	priceRight := left + contentWidth*0.8
	top += 48
	l.text(left, top+8, baseSize, true, AlignLeft, colorPrimary, lb.Item)
	l.text(qtyRight, top+8, baseSize, true, AlignRight, colorPrimary, lb.Quantity)
	l.text(priceRight, top+8, baseSize, true, AlignRight, colorPrimary, lb.UnitPrice)
	l.text(right, top+8, baseSize, true, AlignRight, colorPrimary, lb.Amount)
	top += 8 + lineHeight + 8
	l.rule(left, right, top, 2, colorRule)
	top += 2

	for _, item := range state.Items {
		l.text(left, top+8, baseSize, false, AlignLeft, colorText, item.Name)
		l.text(qtyRight, top+8, baseSize, false, AlignRight, colorText, PlainOrBlank(item.Quantity))
		l.text(priceRight, top+8, baseSize, false, AlignRight, colorText, f.CurrencyOrBlank(item.UnitPrice))
		l.text(right, top+8, baseSize, false, AlignRight, colorText, f.CurrencyOrBlank(item.Amount()))
		top += 8 + lineHeight + 8
		l.rule(left, right, top, 1, colorRowRule)
		top++
	}

	// Totals box, a third of the content width, right aligned
	boxLeft := right - contentWidth/3
	top += 32
	l.text(boxLeft, top, baseSize, false, AlignLeft, colorText, lb.Subtotal)
	l.text(right, top, baseSize, false, AlignRight, colorText, f.Currency(totals.Subtotal))
	top += lineHeight + 8
	l.text(boxLeft, top, baseSize, false, AlignLeft, colorText, fmt.Sprintf("%s (%s%%)", lb.Tax, Plain(state.TaxRate)))
	l.text(right, top, baseSize, false, AlignRight, colorText, f.Currency(totals.Tax))
	top += lineHeight + 16
	l.rule(boxLeft, right, top, 2, colorPrimary)
	top += 2 + 8
	l.text(boxLeft, top, 18, true, AlignLeft, colorPrimary, lb.Total)
	l.text(right, top, 18, true, AlignRight, colorPrimary, f.Currency(totals.Total))
	top += 28

	top += 48
	top = l.section(left, right, top, lb.BankInfo, state.BankInfo)
	top += 32
	l.section(left, right, top, lb.Notes, state.Notes)

	return doc
}

// section draws a heading with an underline and the body with its line breaks
// preserved. It returns the top of the space below the body.
func (l *layout) section(left, right, top float64, heading, body string) float64 {
	l.text(left, top, baseSize, true, AlignLeft, colorPrimary, heading)
	top += lineHeight + 4
	l.rule(left, right, top, 2, colorPrimary)
	top += 2 + 8
	if body == "" {
		return top
	}
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		l.text(left, top, baseSize, false, AlignLeft, colorText, line)
		top += lineHeight
	}
	return top
}
