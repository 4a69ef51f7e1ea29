package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

func TestExcelReporter_WriteReport(t *testing.T) {
	records := []*entity.InvoiceRecord{
		{
			ID:        "rec-1",
			FileName:  "acme.pdf",
			Status:    entity.StatusCompleted,
			ExtractedData: &entity.ExtractedInvoiceData{
				VendorName:    entity.String("Acme Corp"),
				InvoiceNumber: entity.String("INV-2024-001"),
				InvoiceDate:   entity.String("2024-10-26"),
				Currency:      entity.String("USD"),
				SubTotal:      entity.Float(250),
				TaxAmount:     entity.Float(25),
				TotalAmount:   entity.Float(275),
			},
			UploadedAt: time.Date(2024, 10, 27, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:           "rec-2",
			FileName:     "broken.png",
			Status:       entity.StatusError,
			ErrorMessage: "File not found or empty for processing.",
			UploadedAt:   time.Date(2024, 10, 27, 10, 0, 0, 0, time.UTC),
		},
	}

	buf, err := NewExcelReporter(zap.NewNop()).WriteReport(records)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue("Invoices", cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "File Name", get("A1"))
	assert.Equal(t, "acme.pdf", get("A2"))
	assert.Equal(t, "COMPLETED", get("B2"))
	assert.Equal(t, "Acme Corp", get("C2"))
	assert.Equal(t, "275", get("J2"))
	assert.Equal(t, "broken.png", get("A3"))
	assert.Equal(t, "File not found or empty for processing.", get("K3"))
	assert.Empty(t, get("C3"), "no extracted data leaves vendor blank")
}

func TestExcelReporter_EmptyCollection(t *testing.T) {
	buf, err := NewExcelReporter(zap.NewNop()).WriteReport(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
