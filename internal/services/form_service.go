package services

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"invoice-builder/internal/models"
	"invoice-builder/internal/timeutil"
)

// Editable form fields
const (
	FieldIssueDate     = "issue_date"
	FieldDueDate       = "due_date"
	FieldRecipient     = "recipient"
	FieldSenderName    = "sender_name"
	FieldSenderPhone   = "sender_phone"
	FieldSenderAddress = "sender_address"
	FieldTaxRate       = "tax_rate"
	FieldBankInfo      = "bank_info"
	FieldNotes         = "notes"
	FieldItem          = "item"

	ItemFieldName      = "name"
	ItemFieldQuantity  = "quantity"
	ItemFieldUnitPrice = "unit_price"
)

// DefaultTaxRate is the consumption tax percentage a new invoice starts with
const DefaultTaxRate = 10

var (
	ErrUnknownField = errors.New("unknown field")
	ErrItemIndex    = errors.New("item index out of range")
)

// Placeholders are the values a new form is seeded with
type Placeholders struct {
	Recipient     string
	SenderName    string
	SenderPhone   string
	SenderAddress string
	DateLayout    string
}

var (
	englishPlaceholders = Placeholders{
		Recipient:     "Customer name",
		SenderName:    "Your name",
		SenderPhone:   "01-2345-6789",
		SenderAddress: "Street, City, Postcode",
		DateLayout:    timeutil.EnglishDateLayout,
	}
	japanesePlaceholders = Placeholders{
		Recipient:     "宛名 様",
		SenderName:    "差出人名",
		SenderPhone:   "01-2345-6789",
		SenderAddress: "〒123-4567 ",
		DateLayout:    timeutil.JapaneseDateLayout,
	}
)

// PlaceholdersFor picks the seed text for a locale; anything but Japanese gets
// the English set, which the built-in Go fonts can draw.
func PlaceholdersFor(locale string) Placeholders {
	if strings.HasPrefix(strings.ToLower(locale), "ja") {
		return japanesePlaceholders
	}
	return englishPlaceholders
}

// NewInvoiceState returns the initial form state for a locale. Every item is
// its own value, so editing one row never touches another.
func NewInvoiceState(now time.Time, itemCount int, locale string) models.InvoiceState {
	if itemCount < 0 {
		itemCount = 0
	}
	p := PlaceholdersFor(locale)
	return models.InvoiceState{
		IssueDate:     timeutil.FormatDate(now, p.DateLayout),
		DueDate:       timeutil.FormatDate(timeutil.EndOfNextMonth(now), p.DateLayout),
		Recipient:     p.Recipient,
		SenderName:    p.SenderName,
		SenderPhone:   p.SenderPhone,
		SenderAddress: p.SenderAddress,
		Items:         make([]models.InvoiceItem, itemCount),
		TaxRate:       DefaultTaxRate,
	}
}

// ApplyEdit returns the state that results from one field edit. The input state
// is left untouched. A value that is not a finite number is ignored for numeric
// fields and the previous value is kept.
func ApplyEdit(state models.InvoiceState, edit models.EditRequest) (models.InvoiceState, error) {
	next := state

	switch edit.Field {
	case FieldIssueDate:
		next.IssueDate = edit.Value
	case FieldDueDate:
		next.DueDate = edit.Value
	case FieldRecipient:
		next.Recipient = edit.Value
	case FieldSenderName:
		next.SenderName = edit.Value
	case FieldSenderPhone:
		next.SenderPhone = edit.Value
	case FieldSenderAddress:
		next.SenderAddress = edit.Value
	case FieldBankInfo:
		next.BankInfo = edit.Value
	case FieldNotes:
		next.Notes = edit.Value
	case FieldTaxRate:
		if v, ok := ParseNumber(edit.Value); ok {
			next.TaxRate = v
		}
	case FieldItem:
		items, err := applyItemEdit(state.Items, edit)
		if err != nil {
			return state, err
		}
		next.Items = items
	default:
		return state, fmt.Errorf("%w: %q", ErrUnknownField, edit.Field)
	}

	return next, nil
}

func applyItemEdit(items []models.InvoiceItem, edit models.EditRequest) ([]models.InvoiceItem, error) {
	if edit.Index < 0 || edit.Index >= len(items) {
		return nil, fmt.Errorf("%w: %d", ErrItemIndex, edit.Index)
	}

	item := items[edit.Index]
	switch edit.ItemField {
	case ItemFieldName:
		item.Name = edit.Value
	case ItemFieldQuantity:
		v, ok := ParseNumber(edit.Value)
		if !ok {
			return items, nil
		}
		item.Quantity = v
	case ItemFieldUnitPrice:
		v, ok := ParseNumber(edit.Value)
		if !ok {
			return items, nil
		}
		item.UnitPrice = v
	default:
		return nil, fmt.Errorf("%w: item %q", ErrUnknownField, edit.ItemField)
	}

	next := make([]models.InvoiceItem, len(items))
	copy(next, items)
	next[edit.Index] = item
	return next, nil
}

// ParseNumber coerces form input to a number. Blank input is zero, like a
// cleared number field.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
