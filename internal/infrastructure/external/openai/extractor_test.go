package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtractionResponse_PlainJSON(t *testing.T) {
	data, err := parseExtractionResponse(`{"vendorName":"Acme Corp","lineItems":[{"id":"li-1","total":100}]}`)

	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", *data.VendorName)
	require.Len(t, data.LineItems, 1)
	assert.Equal(t, 100.0, *data.LineItems[0].Total)
}

func TestParseExtractionResponse_StripsCodeFence(t *testing.T) {
	data, err := parseExtractionResponse("```json\n{\"invoiceNumber\":\"INV-1\"}\n```")

	require.NoError(t, err)
	assert.Equal(t, "INV-1", *data.InvoiceNumber)
}

func TestParseExtractionResponse_NullFieldsAndMissingIDs(t *testing.T) {
	data, err := parseExtractionResponse(`{"vendorName":null,"lineItems":[{"description":"Product A"}]}`)

	require.NoError(t, err)
	assert.Nil(t, data.VendorName)
	require.Len(t, data.LineItems, 1)
	assert.NotEmpty(t, data.LineItems[0].ID, "items without an id get one synthesized")
}

func TestParseExtractionResponse_NoLineItemsBecomesEmptySlice(t *testing.T) {
	data, err := parseExtractionResponse(`{"vendorName":"Acme Corp"}`)

	require.NoError(t, err)
	assert.NotNil(t, data.LineItems)
	assert.Empty(t, data.LineItems)
}

func TestParseExtractionResponse_Malformed(t *testing.T) {
	_, err := parseExtractionResponse("the invoice looks fine to me")

	assert.Error(t, err)
}
