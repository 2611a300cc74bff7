// Package pipeline coordinates text acquisition, extraction strategies and
// normalization into a single Parse entry point. Runtime failures inside a
// parse degrade the output instead of failing it: the only error Parse's
// constructor path surfaces is a bad LLM configuration.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoice-extractor/internal/extract"
	"invoice-extractor/internal/llm"
	"invoice-extractor/internal/models"
	"invoice-extractor/internal/normalize"
	"invoice-extractor/internal/textract"
	"invoice-extractor/pkg/utils"
)

// Remark templates recorded on the invoice to mark provenance.
const (
	remarkTextFailure    = "Failed to extract text from PDF"
	remarkLLMSuccessFmt  = "Extracted with %s LLM"
	remarkLLMFallbackFmt = "Extracted with fallback method due to %s API failure"
)

// Result is one parsed document: the invoice record, its line items, and the
// acquisition metadata for diagnostics.
type Result struct {
	Invoice    models.InvoiceRecord
	LineItems  []models.LineItemRecord
	Serial     string
	Text       string
	TextMethod textract.Method
}

// Options selects the parser's extraction mode. A nil LLM runs the pattern
// strategy alone; otherwise the LLM strategy runs first with the pattern
// strategy as fallback.
type Options struct {
	LLM *llm.Config
}

type textAcquirer interface {
	Acquire(ctx context.Context, path string) textract.Result
}

// Parser turns a PDF path into canonical records.
type Parser struct {
	acquirer     textAcquirer
	pattern      extract.Strategy
	llm          extract.Strategy
	providerName string
	newSerial    func() string
	logger       *zap.Logger
}

// NewParser builds a parser. LLM configuration problems surface here, before
// any document is touched; nothing later returns an error.
func NewParser(opts Options, logger *zap.Logger) (*Parser, error) {
	p := &Parser{
		acquirer:  textract.NewAcquirer(logger),
		pattern:   extract.NewPatternStrategy(logger),
		newSerial: uuid.NewString,
		logger:    logger,
	}
	if opts.LLM != nil {
		provider, err := llm.NewProvider(*opts.LLM, logger)
		if err != nil {
			return nil, err
		}
		p.llm = llm.NewStrategy(provider, logger)
		p.providerName = provider.Name()
	}
	return p, nil
}

// Parse extracts one document. The returned error is always nil today; the
// signature keeps room for context cancellation handling at call sites.
func (p *Parser) Parse(ctx context.Context, pdfPath string) (*Result, error) {
	serial := p.newSerial()
	log := p.logger.With(zap.String("pdf_path", pdfPath), zap.String("serial", serial))

	acquired := p.acquirer.Acquire(ctx, pdfPath)
	if acquired.Method == textract.MethodNone {
		log.Warn("Text acquisition failed, emitting minimal record")
		invoice := models.NewInvoiceRecord(serial)
		invoice.Remarks = remarkTextFailure
		return &Result{
			Invoice:    invoice,
			LineItems:  []models.LineItemRecord{},
			Serial:     serial,
			TextMethod: textract.MethodNone,
		}, nil
	}
	log.Info("Text acquired",
		zap.String("method", acquired.Method.String()),
		zap.Int("chars", len(acquired.Text)))

	if p.llm != nil {
		raw, err := p.llm.Extract(ctx, acquired.Text)
		if err == nil {
			invoice := normalize.Invoice(serial, raw.InvoiceData)
			invoice.Remarks = remarkWith(remarkLLMSuccessFmt, p.providerName)
			items := normalize.LineItems(serial, invoice.DocumentNumber, raw.LineItems)
			return p.result(invoice, items, serial, acquired), nil
		}
		log.Warn("LLM extraction failed, falling back to pattern strategy", zap.Error(err))
		invoice, items := p.runPattern(ctx, serial, acquired.Text)
		invoice.Remarks = remarkWith(remarkLLMFallbackFmt, p.providerName)
		return p.result(invoice, items, serial, acquired), nil
	}

	invoice, items := p.runPattern(ctx, serial, acquired.Text)
	return p.result(invoice, items, serial, acquired), nil
}

func (p *Parser) runPattern(ctx context.Context, serial, text string) (models.InvoiceRecord, []models.LineItemRecord) {
	// The pattern strategy never errors.
	raw, _ := p.pattern.Extract(ctx, text)
	invoice := normalize.Invoice(serial, raw.InvoiceData)
	items := normalize.LineItems(serial, invoice.DocumentNumber, raw.LineItems)
	return invoice, items
}

func (p *Parser) result(invoice models.InvoiceRecord, items []models.LineItemRecord, serial string, acquired textract.Result) *Result {
	p.auditGSTINs(serial, invoice)
	return &Result{
		Invoice:    invoice,
		LineItems:  items,
		Serial:     serial,
		Text:       acquired.Text,
		TextMethod: acquired.Method,
	}
}

// auditGSTINs logs extracted registration numbers that do not hold the GSTIN
// shape. Extraction keeps the raw value either way; the warning is the only
// signal a mis-read produces.
func (p *Parser) auditGSTINs(serial string, invoice models.InvoiceRecord) {
	checks := []struct {
		role  string
		gstin string
	}{
		{"supplier", invoice.SupplierGSTIN},
		{"buyer", invoice.BuyerGSTIN},
		{"consignee", invoice.ConsigneeGSTIN},
	}
	for _, c := range checks {
		if c.gstin == "" {
			continue
		}
		if err := utils.ValidateGSTIN(c.gstin); err != nil {
			p.logger.Warn("Extracted GSTIN failed shape check",
				zap.String("serial", serial),
				zap.String("role", c.role),
				zap.String("gstin", c.gstin))
		}
	}
}

// remarkWith renders a remark template with the provider name capitalized the
// way the output schema expects ("google" -> "Google").
func remarkWith(format, provider string) string {
	if provider != "" {
		provider = strings.ToUpper(provider[:1]) + provider[1:]
	}
	return fmt.Sprintf(format, provider)
}
