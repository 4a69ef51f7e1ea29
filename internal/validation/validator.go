// Package validation checks the numeric and structural consistency of
// extracted invoice data. Validation is deterministic and pure: the same
// input always yields the same ordered error list, and nothing is mutated.
package validation

import (
	"fmt"
	"math"
	"regexp"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

// Tolerance is the maximum absolute difference between two currency amounts
// still considered equal.
const Tolerance = 0.01

// toleranceEpsilon absorbs float64 representation error in the tolerance
// comparison: a nominal difference of exactly 0.01 (e.g. 30.01 - 30) comes out
// a hair above the 0.01 literal and must not be flagged.
const toleranceEpsilon = 1e-9

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func exceedsTolerance(a, b float64) bool {
	return math.Abs(a-b) > Tolerance+toleranceEpsilon
}

// Result is the outcome of validating one extracted data record.
type Result struct {
	IsValid bool
	Errors  []entity.ValidationError
}

// Validate applies all consistency rules in order and collects every
// violation; it never stops at the first error. A nil input short-circuits
// with a single error.
func Validate(data *entity.ExtractedInvoiceData) Result {
	if data == nil {
		return Result{
			IsValid: false,
			Errors: []entity.ValidationError{
				{Field: entity.FieldGeneral, Message: "No data extracted."},
			},
		}
	}

	var errs []entity.ValidationError
	fail := func(field entity.FieldID, format string, args ...interface{}) {
		errs = append(errs, entity.ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Presence of mandatory fields. A total amount of exactly 0 counts as
	// present, so only nil is missing there.
	if isBlank(data.VendorName) {
		fail(entity.FieldVendorName, "Vendor Name is missing.")
	}
	if isBlank(data.InvoiceNumber) {
		fail(entity.FieldInvoiceNumber, "Invoice Number is missing.")
	}
	if isBlank(data.InvoiceDate) {
		fail(entity.FieldInvoiceDate, "Invoice Date is missing.")
	}
	if data.TotalAmount == nil {
		fail(entity.FieldTotalAmount, "Total Amount is missing.")
	}

	// Line item arithmetic. Stated totals are the source of truth for the
	// accumulated subtotal; the quantity*unitPrice cross-check only reports.
	if len(data.LineItems) > 0 {
		calculatedSubTotal := 0.0
		for i, item := range data.LineItems {
			switch {
			case item.Quantity != nil && item.UnitPrice != nil && item.Total != nil:
				lineTotal := *item.Quantity * *item.UnitPrice
				if exceedsTolerance(lineTotal, *item.Total) {
					fail(entity.FieldLineItems,
						"Line item %d ('%s'): Calculated total (%.2f) does not match stated total (%.2f).",
						i+1, describe(item), lineTotal, *item.Total)
				}
				calculatedSubTotal += *item.Total
			case item.Total != nil:
				calculatedSubTotal += *item.Total
			default:
				fail(entity.FieldLineItems,
					"Line item %d ('%s') has missing quantity, unit price, or total.",
					i+1, describe(item))
			}
		}

		if data.SubTotal != nil && exceedsTolerance(calculatedSubTotal, *data.SubTotal) {
			fail(entity.FieldSubTotal,
				"Calculated subtotal from line items (%.2f) does not match stated subtotal (%.2f).",
				calculatedSubTotal, *data.SubTotal)
		}
	}

	// Overall total: subtotal + tax must match; a missing tax amount is
	// assumed to be zero for the comparison.
	if data.SubTotal != nil && data.TaxAmount != nil && data.TotalAmount != nil {
		calculatedTotal := *data.SubTotal + *data.TaxAmount
		if exceedsTolerance(calculatedTotal, *data.TotalAmount) {
			fail(entity.FieldTotalAmount,
				"Subtotal (%.2f) + Tax (%.2f) = %.2f, which does not match stated Total Amount (%.2f).",
				*data.SubTotal, *data.TaxAmount, calculatedTotal, *data.TotalAmount)
		}
	} else if data.SubTotal != nil && data.TotalAmount != nil && data.TaxAmount == nil {
		if exceedsTolerance(*data.SubTotal, *data.TotalAmount) {
			fail(entity.FieldTotalAmount,
				"Subtotal (%.2f) does not match stated Total Amount (%.2f) when tax is not specified.",
				*data.SubTotal, *data.TotalAmount)
		}
	}

	if !isBlank(data.InvoiceDate) && !datePattern.MatchString(*data.InvoiceDate) {
		fail(entity.FieldInvoiceDate, "Invoice Date format is invalid. Expected YYYY-MM-DD.")
	}
	if !isBlank(data.DueDate) && !datePattern.MatchString(*data.DueDate) {
		fail(entity.FieldDueDate, "Due Date format is invalid. Expected YYYY-MM-DD.")
	}

	return Result{IsValid: len(errs) == 0, Errors: errs}
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

func describe(item entity.LineItem) string {
	if isBlank(item.Description) {
		return "N/A"
	}
	return *item.Description
}
