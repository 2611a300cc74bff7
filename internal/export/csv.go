// Package export renders parsed invoice records to tabular files. Column
// order mirrors the canonical schema exactly; an export with zero records
// still writes its header row.
package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"go.uber.org/zap"

	"invoice-extractor/internal/models"
)

// Writer renders invoice and line-item tables to disk.
type Writer struct {
	logger *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

// WriteInvoiceCSV writes invoice records to path, header first.
func (w *Writer) WriteInvoiceCSV(path string, records []models.InvoiceRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rec.Row())
	}
	return w.writeCSV(path, models.InvoiceColumns, rows)
}

// WriteLineItemsCSV writes line-item records to path, header first.
func (w *Writer) WriteLineItemsCSV(path string, items []models.LineItemRecord) error {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, it.Row())
	}
	return w.writeCSV(path, models.LineItemColumns, rows)
}

func (w *Writer) writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	w.logger.Info("CSV written", zap.String("path", path), zap.Int("rows", len(rows)))
	return nil
}
