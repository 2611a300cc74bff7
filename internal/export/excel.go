package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"invoice-extractor/internal/models"
)

const (
	invoiceSheet  = "Invoices"
	lineItemSheet = "Line Items"
)

// WriteWorkbook writes both tables into one XLSX file: an "Invoices" sheet
// and a "Line Items" sheet.
func (w *Writer) WriteWorkbook(path string, records []models.InvoiceRecord, items []models.LineItemRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(lineItemSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	invoiceRows := make([][]string, 0, len(records))
	for _, rec := range records {
		invoiceRows = append(invoiceRows, rec.Row())
	}
	if err := w.fillSheet(f, invoiceSheet, models.InvoiceColumns, invoiceRows); err != nil {
		return err
	}

	itemRows := make([][]string, 0, len(items))
	for _, it := range items {
		itemRows = append(itemRows, it.Row())
	}
	if err := w.fillSheet(f, lineItemSheet, models.LineItemColumns, itemRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.logger.Info("Workbook written",
		zap.String("path", path),
		zap.Int("invoices", len(records)),
		zap.Int("line_items", len(items)))
	return nil
}

func (w *Writer) fillSheet(f *excelize.File, sheet string, header []string, rows [][]string) error {
	if err := w.setRow(f, sheet, 1, header); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("header extent: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("apply header style on %s: %w", sheet, err)
	}
	for i, row := range rows {
		if err := w.setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("cell name for row %d: %w", rowNum, err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("set row %d on %s: %w", rowNum, sheet, err)
	}
	return nil
}
