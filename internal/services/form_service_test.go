package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-builder/internal/models"
	"invoice-builder/internal/timeutil"
)

func newState(t *testing.T) models.InvoiceState {
	t.Helper()
	now := time.Date(2026, 5, 23, 10, 0, 0, 0, timeutil.JST)
	return NewInvoiceState(now, models.DefaultItemCount, "en")
}

func TestNewInvoiceStateDefaults(t *testing.T) {
	state := newState(t)

	assert.Equal(t, "May 23, 2026", state.IssueDate)
	assert.Equal(t, "June 30, 2026", state.DueDate)
	assert.Equal(t, "Customer name", state.Recipient)
	assert.Equal(t, float64(DefaultTaxRate), state.TaxRate)
	assert.Len(t, state.Items, models.DefaultItemCount)
}

func TestNewInvoiceStateJapanese(t *testing.T) {
	now := time.Date(2026, 5, 23, 10, 0, 0, 0, timeutil.JST)
	state := NewInvoiceState(now, 3, "ja-JP")

	assert.Equal(t, "2026年5月23日", state.IssueDate)
	assert.Equal(t, "2026年6月30日", state.DueDate)
	assert.Equal(t, "宛名 様", state.Recipient)
	assert.Equal(t, "〒123-4567 ", state.SenderAddress)
}

func TestPlaceholdersForUnknownLocaleIsEnglish(t *testing.T) {
	assert.Equal(t, PlaceholdersFor("en"), PlaceholdersFor("de"))
	assert.Equal(t, PlaceholdersFor("en"), PlaceholdersFor(""))
}

func TestNewInvoiceStateItemsAreIndependent(t *testing.T) {
	state := newState(t)

	state.Items[0].Name = "consulting"
	state.Items[0].Quantity = 3

	for i := 1; i < len(state.Items); i++ {
		assert.Equal(t, models.InvoiceItem{}, state.Items[i], "row %d", i)
	}
}

func TestApplyEditTextFields(t *testing.T) {
	fields := map[string]func(models.InvoiceState) string{
		FieldIssueDate:     func(s models.InvoiceState) string { return s.IssueDate },
		FieldDueDate:       func(s models.InvoiceState) string { return s.DueDate },
		FieldRecipient:     func(s models.InvoiceState) string { return s.Recipient },
		FieldSenderName:    func(s models.InvoiceState) string { return s.SenderName },
		FieldSenderPhone:   func(s models.InvoiceState) string { return s.SenderPhone },
		FieldSenderAddress: func(s models.InvoiceState) string { return s.SenderAddress },
		FieldBankInfo:      func(s models.InvoiceState) string { return s.BankInfo },
		FieldNotes:         func(s models.InvoiceState) string { return s.Notes },
	}

	for field, get := range fields {
		t.Run(field, func(t *testing.T) {
			next, err := ApplyEdit(newState(t), models.EditRequest{Field: field, Value: "line one\nline two"})
			require.NoError(t, err)
			assert.Equal(t, "line one\nline two", get(next))
		})
	}
}

func TestApplyEditItemDoesNotAlias(t *testing.T) {
	state := newState(t)

	next, err := ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: 2, ItemField: ItemFieldName, Value: "hosting"})
	require.NoError(t, err)

	assert.Equal(t, "hosting", next.Items[2].Name)
	assert.Empty(t, state.Items[2].Name, "previous revision must not change")
	for i, item := range next.Items {
		if i != 2 {
			assert.Empty(t, item.Name)
		}
	}
}

func TestApplyEditNumericFields(t *testing.T) {
	state := newState(t)

	state, err := ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: 0, ItemField: ItemFieldQuantity, Value: "2"})
	require.NoError(t, err)
	state, err = ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: 0, ItemField: ItemFieldUnitPrice, Value: " 1000 "})
	require.NoError(t, err)
	state, err = ApplyEdit(state, models.EditRequest{Field: FieldTaxRate, Value: "8"})
	require.NoError(t, err)

	assert.Equal(t, 2.0, state.Items[0].Quantity)
	assert.Equal(t, 1000.0, state.Items[0].UnitPrice)
	assert.Equal(t, 8.0, state.TaxRate)
}

func TestApplyEditRejectsNonNumeric(t *testing.T) {
	state := newState(t)
	state, err := ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: 1, ItemField: ItemFieldQuantity, Value: "5"})
	require.NoError(t, err)

	for _, bad := range []string{"abc", "5x", "NaN", "Inf", "-infinity"} {
		next, err := ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: 1, ItemField: ItemFieldQuantity, Value: bad})
		require.NoError(t, err)
		assert.Equal(t, 5.0, next.Items[1].Quantity, "input %q", bad)

		next, err = ApplyEdit(state, models.EditRequest{Field: FieldTaxRate, Value: bad})
		require.NoError(t, err)
		assert.Equal(t, float64(DefaultTaxRate), next.TaxRate, "input %q", bad)
	}
}

func TestApplyEditBlankNumberIsZero(t *testing.T) {
	state := newState(t)
	state, err := ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: 0, ItemField: ItemFieldUnitPrice, Value: "300"})
	require.NoError(t, err)

	state, err = ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: 0, ItemField: ItemFieldUnitPrice, Value: ""})
	require.NoError(t, err)
	assert.Zero(t, state.Items[0].UnitPrice)
}

func TestApplyEditErrors(t *testing.T) {
	state := newState(t)

	_, err := ApplyEdit(state, models.EditRequest{Field: "colour"})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: models.DefaultItemCount, ItemField: ItemFieldName})
	assert.ErrorIs(t, err, ErrItemIndex)

	_, err = ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: -1, ItemField: ItemFieldName})
	assert.ErrorIs(t, err, ErrItemIndex)

	_, err = ApplyEdit(state, models.EditRequest{Field: FieldItem, Index: 0, ItemField: "sku"})
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestParseNumber(t *testing.T) {
	v, ok := ParseNumber("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, ok = ParseNumber("   ")
	assert.True(t, ok)
	assert.Zero(t, v)

	_, ok = ParseNumber("twelve")
	assert.False(t, ok)
}
