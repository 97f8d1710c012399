package services

import (
	"math"

	"invoice-builder/internal/models"
)

// CalculateTotals derives subtotal, tax and total from the item list.
// Tax is truncated toward negative infinity, never rounded.
func CalculateTotals(items []models.InvoiceItem, taxRate float64) models.Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Amount()
	}

	tax := math.Floor(subtotal * taxRate / 100)

	return models.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
