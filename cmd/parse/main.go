// Command parse runs a one-shot extraction over a single PDF and writes the
// invoice CSV, line-item CSV and combined workbook next to the output dir.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"invoice-extractor/internal/export"
	"invoice-extractor/internal/llm"
	"invoice-extractor/internal/models"
	"invoice-extractor/internal/pipeline"
	"invoice-extractor/pkg/utils"
)

func main() {
	pdfPath := flag.String("pdf", "", "path to the invoice PDF (required)")
	provider := flag.String("provider", "", "LLM provider: google or openai (empty = pattern matching only)")
	model := flag.String("model", "", "override the provider's default model")
	outDir := flag.String("out", "output", "directory for CSV/XLSX output")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall parse timeout")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *pdfPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = gotenv.Load()

	level := "info"
	if *verbose {
		level = "debug"
	}
	logger, err := utils.NewLogger(utils.LoggerConfig{Level: level, OutputPath: "stderr", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var opts pipeline.Options
	if *provider != "" {
		opts.LLM = &llm.Config{
			Provider: *provider,
			APIKey:   apiKeyFor(*provider),
			Model:    *model,
			Timeout:  *timeout,
		}
	}

	parser, err := pipeline.NewParser(opts, logger)
	if err != nil {
		logger.Fatal("Failed to initialize parser", zap.Error(err))
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := parser.Parse(ctx, *pdfPath)
	if err != nil {
		logger.Fatal("Parse failed", zap.Error(err))
	}

	base := strings.TrimSuffix(filepath.Base(*pdfPath), filepath.Ext(*pdfPath))
	invoiceCSV := filepath.Join(*outDir, base+"_invoices.csv")
	itemsCSV := filepath.Join(*outDir, base+"_line_items.csv")
	workbook := filepath.Join(*outDir, base+".xlsx")

	writer := export.NewWriter(logger)
	records := []models.InvoiceRecord{res.Invoice}
	if err := writer.WriteInvoiceCSV(invoiceCSV, records); err != nil {
		logger.Fatal("Failed to write invoice CSV", zap.Error(err))
	}
	if err := writer.WriteLineItemsCSV(itemsCSV, res.LineItems); err != nil {
		logger.Fatal("Failed to write line items CSV", zap.Error(err))
	}
	if err := writer.WriteWorkbook(workbook, records, res.LineItems); err != nil {
		logger.Fatal("Failed to write workbook", zap.Error(err))
	}

	fmt.Printf("Serial:         %s\n", res.Serial)
	fmt.Printf("Text method:    %s\n", res.TextMethod)
	fmt.Printf("Document:       %s %s\n", res.Invoice.DocumentType, res.Invoice.DocumentNumber)
	fmt.Printf("Total value:    %.2f\n", res.Invoice.TotalInvoiceValue)
	fmt.Printf("Line items:     %d\n", len(res.LineItems))
	fmt.Printf("Invoice CSV:    %s\n", invoiceCSV)
	fmt.Printf("Line items CSV: %s\n", itemsCSV)
	fmt.Printf("Workbook:       %s\n", workbook)
}

func apiKeyFor(provider string) string {
	if provider == "openai" {
		return os.Getenv("OPENAI_API_KEY")
	}
	return os.Getenv("GOOGLE_API_KEY")
}
