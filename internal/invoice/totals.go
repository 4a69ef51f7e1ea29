package invoice

import (
	"math"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

// RecalculateTotals derives the subtotal and total amount from a line item
// sequence and a tax amount. A line item contributes its stated total when it
// has one, otherwise quantity*unitPrice when both are present, otherwise
// nothing. A nil tax amount counts as zero. Both results are rounded to two
// decimal places.
func RecalculateTotals(items []entity.LineItem, taxAmount *float64) (subTotal, totalAmount float64) {
	for _, item := range items {
		switch {
		case item.Total != nil:
			subTotal += *item.Total
		case item.Quantity != nil && item.UnitPrice != nil:
			subTotal += *item.Quantity * *item.UnitPrice
		}
	}
	subTotal = round2(subTotal)

	tax := 0.0
	if taxAmount != nil {
		tax = *taxAmount
	}
	totalAmount = round2(subTotal + tax)
	return subTotal, totalAmount
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
