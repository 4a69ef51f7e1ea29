package entity

// FieldID identifies the invoice field a validation error refers to, so the
// review surface can attach errors to inputs without substring matching.
type FieldID string

const (
	FieldGeneral       FieldID = "general"
	FieldVendorName    FieldID = "vendorName"
	FieldInvoiceNumber FieldID = "invoiceNumber"
	FieldInvoiceDate   FieldID = "invoiceDate"
	FieldDueDate       FieldID = "dueDate"
	FieldSubTotal      FieldID = "subTotal"
	FieldTotalAmount   FieldID = "totalAmount"
	FieldLineItems     FieldID = "lineItems"
)

// ValidationError is a single validation finding against extracted data.
type ValidationError struct {
	Field   FieldID `json:"field"`
	Message string  `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// Messages flattens validation errors to their human-readable messages,
// preserving order.
func Messages(errs []ValidationError) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}
