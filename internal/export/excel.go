// Package export renders the invoice collection as a downloadable Excel
// report.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hereandnowai/invoice-processor/internal/domain/entity"
)

const sheetName = "Invoices"

var headers = []string{
	"File Name", "Status", "Vendor", "Invoice #", "Invoice Date", "Due Date",
	"Currency", "Subtotal", "Tax", "Total", "Issues", "Uploaded At",
}

// ExcelReporter writes invoice records into a spreadsheet, one row per
// record, in the order given.
type ExcelReporter struct {
	logger *zap.Logger
}

func NewExcelReporter(logger *zap.Logger) *ExcelReporter {
	return &ExcelReporter{logger: logger}
}

// WriteReport builds the workbook in memory.
func (r *ExcelReporter) WriteReport(records []*entity.InvoiceRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	for col, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		r.setCell(f, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	_ = f.SetColWidth(sheetName, "A", "A", 32)
	_ = f.SetColWidth(sheetName, "C", "C", 24)
	_ = f.SetColWidth(sheetName, "L", "L", 22)

	for i, rec := range records {
		row := i + 2
		values := rowValues(rec)
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			r.setCell(f, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	r.logger.Info("export generated", zap.Int("records", len(records)))
	return buf, nil
}

func rowValues(rec *entity.InvoiceRecord) []interface{} {
	values := []interface{}{
		rec.FileName,
		string(rec.Status),
		"", "", "", "", "",
		nil, nil, nil,
		issues(rec),
		rec.UploadedAt.Format("2006-01-02 15:04:05"),
	}
	data := rec.ExtractedData
	if data == nil {
		return values
	}
	if data.VendorName != nil {
		values[2] = *data.VendorName
	}
	if data.InvoiceNumber != nil {
		values[3] = *data.InvoiceNumber
	}
	if data.InvoiceDate != nil {
		values[4] = *data.InvoiceDate
	}
	if data.DueDate != nil {
		values[5] = *data.DueDate
	}
	if data.Currency != nil {
		values[6] = *data.Currency
	}
	if data.SubTotal != nil {
		values[7] = *data.SubTotal
	}
	if data.TaxAmount != nil {
		values[8] = *data.TaxAmount
	}
	if data.TotalAmount != nil {
		values[9] = *data.TotalAmount
	}
	return values
}

func issues(rec *entity.InvoiceRecord) string {
	if rec.ErrorMessage != "" {
		return rec.ErrorMessage
	}
	if n := len(rec.ValidationErrors); n > 0 {
		return fmt.Sprintf("%d validation issue(s)", n)
	}
	return ""
}

func (r *ExcelReporter) setCell(f *excelize.File, cell string, value interface{}) {
	if value == nil {
		return
	}
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		r.logger.Warn("cell not written", zap.String("cell", cell), zap.Error(err))
	}
}
