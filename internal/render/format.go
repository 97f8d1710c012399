package render

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders amounts the way the invoice prints them: a fixed currency
// glyph followed by a thousands-grouped number.
type Formatter struct {
	printer *message.Printer
	symbol  string
}

func NewFormatter(tag language.Tag, symbol string) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag), symbol: symbol}
}

// Number groups thousands and keeps at most three fraction digits
func (f *Formatter) Number(v float64) string {
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(3)))
}

func (f *Formatter) Currency(v float64) string {
	return f.symbol + f.Number(v)
}

// CurrencyOrBlank leaves zero-valued cells empty
func (f *Formatter) CurrencyOrBlank(v float64) string {
	if v == 0 {
		return ""
	}
	return f.Currency(v)
}

// Plain prints a number without grouping, as typed into the form
func Plain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// PlainOrBlank leaves zero-valued cells empty
func PlainOrBlank(v float64) string {
	if v == 0 {
		return ""
	}
	return Plain(v)
}
