package invoice

import (
	"fmt"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

// ExtractionPrompt is the instruction shared by all extraction backends. It
// pins the JSON schema the model must return, which is exactly the wire shape
// of entity.ExtractedInvoiceData.
func ExtractionPrompt() string {
	return fmt.Sprintf(`You are an expert AI Invoice Processing System. Your task is to extract information from the provided invoice document (image or PDF page).
Analyze the document carefully and extract the following fields. Respond ONLY with a valid JSON object containing these fields.
The JSON object should conform to this structure:
{
  "vendorName": "string | null",
  "invoiceNumber": "string | null",
  "invoiceDate": "YYYY-MM-DD string | null",
  "dueDate": "YYYY-MM-DD string | null",
  "currency": "string (e.g. USD, EUR) | null",
  "lineItems": [
    { "id": "unique_string_identifier_for_item", "description": "string | null", "quantity": "number | null", "unitPrice": "number | null", "total": "number | null" }
  ],
  "subTotal": "number | null",
  "taxAmount": "number | null",
  "totalAmount": "number | null",
  "paymentTerms": "string | null",
  "poNumber": "string | null",
  "notes": "string | null"
}

Field descriptions:
- vendorName: The name of the vendor or supplier.
- invoiceNumber: The unique identifier for the invoice.
- invoiceDate: The date the invoice was issued.
- dueDate: The date the payment is due.
- currency: The currency of the invoice amounts (e.g., USD, EUR, GBP).
- lineItems: An array of items or services listed on the invoice. Each item should be an object.
- subTotal: The total amount before taxes.
- taxAmount: The total tax amount.
- totalAmount: The final total amount including all taxes and charges.
- paymentTerms: Payment terms for the invoice (e.g., Net 30, Due on Receipt).
- poNumber: Purchase Order number, if available.
- notes: Any additional notes or comments on the invoice.

Important Rules:
- If a field is not found or not applicable, use null for its value. For lineItems, if none are found, provide an empty array [].
- Dates should be in YYYY-MM-DD format. If the year is ambiguous, assume the current year or the most recent sensible year.
- For line items, each item MUST have a unique 'id' field (you can generate a simple UUID or counter for this).
- Numbers should be parsed as numeric types, not strings. Ensure amounts are numbers (e.g., 123.45, not "$123.45").
- If currency is not explicitly stated, try to infer it or use "%s" as a default if amounts are present. If no amounts, use null for currency.
- Extract all line items visible. If a line item is missing a quantity, unit price, or total, use null for that specific sub-field. Try to calculate total if quantity and unit price are present.
- Ensure the entire response is a single, valid JSON object. Do not include any text before or after the JSON object.`, entity.DefaultCurrency)
}
