package entity

import "time"

// LineItem represents a single item or service listed on an invoice.
// All value fields are nullable: extraction may fail to read any of them.
// The quantity*unitPrice == total invariant is checked by the validation
// engine, not enforced here; violations are reported, never rejected.
type LineItem struct {
	ID          string   `json:"id"`
	Description *string  `json:"description"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
	Total       *float64 `json:"total"`
}

// Clone returns a deep copy of the line item.
func (li LineItem) Clone() LineItem {
	out := LineItem{ID: li.ID}
	out.Description = cloneString(li.Description)
	out.Quantity = cloneFloat(li.Quantity)
	out.UnitPrice = cloneFloat(li.UnitPrice)
	out.Total = cloneFloat(li.Total)
	return out
}

// ExtractedInvoiceData holds the structured fields read from an invoice
// document by the extraction collaborator. No field is mandatory at the type
// level; mandatoriness is a validation-time concern.
type ExtractedInvoiceData struct {
	VendorName    *string    `json:"vendorName"`
	InvoiceNumber *string    `json:"invoiceNumber"`
	InvoiceDate   *string    `json:"invoiceDate"` // YYYY-MM-DD
	DueDate       *string    `json:"dueDate"`     // YYYY-MM-DD
	Currency      *string    `json:"currency"`
	LineItems     []LineItem `json:"lineItems"`
	SubTotal      *float64   `json:"subTotal"`
	TaxAmount     *float64   `json:"taxAmount"`
	TotalAmount   *float64   `json:"totalAmount"`
	PaymentTerms  *string    `json:"paymentTerms"`
	PONumber      *string    `json:"poNumber"`
	Notes         *string    `json:"notes"`
}

// Clone returns a deep copy of the extracted data.
func (d *ExtractedInvoiceData) Clone() *ExtractedInvoiceData {
	if d == nil {
		return nil
	}
	out := &ExtractedInvoiceData{
		VendorName:    cloneString(d.VendorName),
		InvoiceNumber: cloneString(d.InvoiceNumber),
		InvoiceDate:   cloneString(d.InvoiceDate),
		DueDate:       cloneString(d.DueDate),
		Currency:      cloneString(d.Currency),
		SubTotal:      cloneFloat(d.SubTotal),
		TaxAmount:     cloneFloat(d.TaxAmount),
		TotalAmount:   cloneFloat(d.TotalAmount),
		PaymentTerms:  cloneString(d.PaymentTerms),
		PONumber:      cloneString(d.PONumber),
		Notes:         cloneString(d.Notes),
	}
	if d.LineItems != nil {
		out.LineItems = make([]LineItem, len(d.LineItems))
		for i, li := range d.LineItems {
			out.LineItems[i] = li.Clone()
		}
	}
	return out
}

// InvoiceRecord tracks one uploaded invoice document through its lifecycle.
// The collection manager exclusively owns the set of records; the pipeline
// mutates status/data/errors in place through the manager.
type InvoiceRecord struct {
	ID               string                `json:"id"`
	File             FileRef               `json:"-"` // excluded from serialization
	FileName         string                `json:"fileName"`
	MediaType        string                `json:"fileType"`
	FileSize         int64                 `json:"fileSize"`
	PreviewPath      string                `json:"previewPath,omitempty"`
	Status           Status                `json:"status"`
	ExtractedData    *ExtractedInvoiceData `json:"extractedData"`
	ValidationErrors []ValidationError     `json:"validationErrors"`
	ErrorMessage     string                `json:"errorMessage,omitempty"`
	UploadedAt       time.Time             `json:"uploadTimestamp"`
	ProcessedAt      *time.Time            `json:"processingTimestamp,omitempty"`
}

// Clone returns a deep copy of the record. The file reference is shared:
// file content is immutable once uploaded.
func (r *InvoiceRecord) Clone() *InvoiceRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.ExtractedData = r.ExtractedData.Clone()
	if r.ValidationErrors != nil {
		out.ValidationErrors = append([]ValidationError(nil), r.ValidationErrors...)
	}
	if r.ProcessedAt != nil {
		t := *r.ProcessedAt
		out.ProcessedAt = &t
	}
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// String returns a pointer to s, for building nullable fields in place.
func String(s string) *string { return &s }

// Float returns a pointer to f, for building nullable fields in place.
func Float(f float64) *float64 { return &f }
