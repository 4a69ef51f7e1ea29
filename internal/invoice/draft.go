package invoice

import (
	"fmt"
	"time"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

// ReviewDraft is an edit session over extracted data during human review.
// The draft owns a private deep copy; the record is only touched when the
// finished draft is handed to Manager.Save. Every edit that can change an
// amount immediately recomputes the derived totals, so the draft is always
// arithmetically self-consistent on the fields it derives.
type ReviewDraft struct {
	data *entity.ExtractedInvoiceData
}

// NewReviewDraft starts an edit session from a snapshot of the given data.
// A nil input yields an empty draft, which lets review start even on records
// whose extraction failed outright.
func NewReviewDraft(data *entity.ExtractedInvoiceData) *ReviewDraft {
	d := data.Clone()
	if d == nil {
		d = &entity.ExtractedInvoiceData{}
	}
	return &ReviewDraft{data: d}
}

// Data returns a deep copy of the draft's current state.
func (r *ReviewDraft) Data() *entity.ExtractedInvoiceData {
	return r.data.Clone()
}

func (r *ReviewDraft) SetVendorName(v *string)    { r.data.VendorName = v }
func (r *ReviewDraft) SetInvoiceNumber(v *string) { r.data.InvoiceNumber = v }
func (r *ReviewDraft) SetInvoiceDate(v *string)   { r.data.InvoiceDate = v }
func (r *ReviewDraft) SetDueDate(v *string)       { r.data.DueDate = v }
func (r *ReviewDraft) SetCurrency(v *string)      { r.data.Currency = v }
func (r *ReviewDraft) SetPaymentTerms(v *string)  { r.data.PaymentTerms = v }
func (r *ReviewDraft) SetPONumber(v *string)      { r.data.PONumber = v }
func (r *ReviewDraft) SetNotes(v *string)         { r.data.Notes = v }

// SetTaxAmount updates the tax amount and recomputes the overall total.
func (r *ReviewDraft) SetTaxAmount(v *float64) {
	r.data.TaxAmount = v
	r.refreshTotals()
}

// SetLineItemDescription updates a line item's description.
func (r *ReviewDraft) SetLineItemDescription(index int, v *string) error {
	if index < 0 || index >= len(r.data.LineItems) {
		return ErrLineItemOutOfRange
	}
	r.data.LineItems[index].Description = v
	return nil
}

// SetLineItemQuantity updates a line item's quantity. When both quantity and
// unit price are known the item's total is recomputed from them.
func (r *ReviewDraft) SetLineItemQuantity(index int, v *float64) error {
	if index < 0 || index >= len(r.data.LineItems) {
		return ErrLineItemOutOfRange
	}
	r.data.LineItems[index].Quantity = v
	r.recomputeItem(index)
	r.refreshTotals()
	return nil
}

// SetLineItemUnitPrice updates a line item's unit price. When both quantity
// and unit price are known the item's total is recomputed from them.
func (r *ReviewDraft) SetLineItemUnitPrice(index int, v *float64) error {
	if index < 0 || index >= len(r.data.LineItems) {
		return ErrLineItemOutOfRange
	}
	r.data.LineItems[index].UnitPrice = v
	r.recomputeItem(index)
	r.refreshTotals()
	return nil
}

// SetLineItemTotal overrides a line item's stated total directly.
func (r *ReviewDraft) SetLineItemTotal(index int, v *float64) error {
	if index < 0 || index >= len(r.data.LineItems) {
		return ErrLineItemOutOfRange
	}
	r.data.LineItems[index].Total = v
	r.refreshTotals()
	return nil
}

// AddLineItem appends an empty line item and returns its synthesized id. The
// "item-new" prefix keeps draft-added ids out of the namespace used for ids
// synthesized at extraction time.
func (r *ReviewDraft) AddLineItem() string {
	id := fmt.Sprintf("item-new-%d-%d", len(r.data.LineItems)+1, time.Now().UnixNano())
	r.data.LineItems = append(r.data.LineItems, entity.LineItem{ID: id})
	r.refreshTotals()
	return id
}

// RemoveLineItem deletes the line item at index and recomputes the totals.
func (r *ReviewDraft) RemoveLineItem(index int) error {
	if index < 0 || index >= len(r.data.LineItems) {
		return ErrLineItemOutOfRange
	}
	r.data.LineItems = append(r.data.LineItems[:index], r.data.LineItems[index+1:]...)
	r.refreshTotals()
	return nil
}

func (r *ReviewDraft) recomputeItem(index int) {
	item := &r.data.LineItems[index]
	if item.Quantity != nil && item.UnitPrice != nil {
		item.Total = entity.Float(round2(*item.Quantity * *item.UnitPrice))
	}
}

func (r *ReviewDraft) refreshTotals() {
	sub, total := RecalculateTotals(r.data.LineItems, r.data.TaxAmount)
	r.data.SubTotal = entity.Float(sub)
	r.data.TotalAmount = entity.Float(total)
}
