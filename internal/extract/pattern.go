package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// PatternStrategy extracts invoice fields with ordered regex ladders and
// positional heuristics. It never fails: every field independently degrades
// to its default, and an all-default result with empty remarks is the only
// "soft failure" signal callers get.
type PatternStrategy struct {
	logger *zap.Logger
}

// NewPatternStrategy creates the regex-driven extraction strategy.
func NewPatternStrategy(logger *zap.Logger) *PatternStrategy {
	return &PatternStrategy{logger: logger}
}

// Name implements Strategy.
func (s *PatternStrategy) Name() string { return "pattern" }

// Extract implements Strategy. The returned error is always nil.
func (s *PatternStrategy) Extract(ctx context.Context, text string) (*RawResult, error) {
	invoiceNumber := firstMatch(invoiceNumberPatterns, text)

	supplierName := s.extractEntityName(text, []string{"Supplier", "Seller", "From", "Sold by"})
	if supplierName == "" {
		supplierName = s.companyNameFromHeader(text)
	}
	buyerName := s.extractEntityName(text, []string{"Buyer", "Bill to", "Customer", "Billed to", "Receiver"})
	if buyerName == "" {
		buyerName = firstMatch([]fieldPattern{legalNamePattern}, text)
	}
	consigneeName := s.extractEntityName(text, []string{"Consignee", "Ship to", "Delivered to"})

	supplierGSTIN := s.extractGSTIN(text, []string{"Supplier", "Seller", "From"}, 1)
	buyerGSTIN := s.extractGSTIN(text, []string{"Buyer", "Customer", "Bill to"}, 2)
	consigneeGSTIN := s.extractGSTIN(text, []string{"Consignee", "Ship to"}, 3)

	supplierAddress := s.extractAddress(text, supplierName)
	buyerAddress := s.extractAddress(text, buyerName)
	consigneeAddress := s.extractAddress(text, consigneeName)

	// Consignee details default to the buyer's when absent.
	if consigneeName == "" {
		consigneeName = buyerName
	}
	if consigneeGSTIN == "" {
		consigneeGSTIN = buyerGSTIN
	}
	if consigneeAddress == "" {
		consigneeAddress = buyerAddress
	}

	data := map[string]any{
		"Document Type":       s.extractDocumentType(text),
		"Invoice Number":      invoiceNumber,
		"Invoice Date":        firstMatch(datePatterns, text),
		"Supplier Name":       supplierName,
		"Supplier GSTIN":      supplierGSTIN,
		"Supplier Address":    supplierAddress,
		"Buyer Name":          buyerName,
		"Buyer GSTIN":         buyerGSTIN,
		"Buyer Address":       buyerAddress,
		"Consignee Name":      consigneeName,
		"Consignee GSTIN":     consigneeGSTIN,
		"Consignee Address":   consigneeAddress,
		"Total Quantity":      matchAmount(totalQuantityRe, text),
		"Taxable Value":       matchAmount(taxableValueRe, text),
		"CGST Amount":         matchAmount(cgstRe, text),
		"SGST Amount":         matchAmount(sgstRe, text),
		"IGST Amount":         matchAmount(igstRe, text),
		"CESS Amount":         matchAmount(cessRe, text),
		"Total Invoice Value": s.extractTotalInvoiceValue(text),
		"IRN No":              firstSubmatch(irnRe, text),
		"E-Way Bill No":       firstSubmatch(ewayRe, text),
		"Amount in Words":     s.extractAmountInWords(text),
	}

	items := s.extractLineItems(text, invoiceNumber)

	s.logger.Debug("Pattern extraction finished",
		zap.String("invoice_number", invoiceNumber),
		zap.Int("line_items", len(items)))

	return &RawResult{InvoiceData: data, LineItems: items}, nil
}

func (s *PatternStrategy) extractDocumentType(text string) string {
	lower := strings.ToLower(text)
	for _, dt := range documentTypes {
		if strings.Contains(lower, strings.ToLower(dt)) {
			return dt
		}
	}
	return "Tax Invoice"
}

// extractTotalInvoiceValue prefers totals with an explicit decimal part and
// only then falls back to bare integer amounts.
func (s *PatternStrategy) extractTotalInvoiceValue(text string) float64 {
	for _, ladder := range [][]fieldPattern{totalValuePatterns, totalValuePatternsNoDecimal} {
		for _, p := range ladder {
			if m := p.re.FindStringSubmatch(text); len(m) > 1 {
				if v := parseAmountString(m[1]); v > 0 {
					return v
				}
			}
		}
	}
	return 0.0
}

func (s *PatternStrategy) extractAmountInWords(text string) string {
	words := firstMatch(amountInWordsPatterns, text)
	if words == "" {
		return ""
	}
	if !strings.Contains(strings.ToLower(words), "only") {
		words += " Only"
	}
	return words
}

// companyNameFromHeader scans the first lines of the document for something
// that looks like a registered company name. The supplier usually prints its
// own name at the top, before any labelled sections.
func (s *PatternStrategy) companyNameFromHeader(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.Contains(strings.ToLower(line), "invoice") {
			continue
		}
		upper := strings.ToUpper(line)
		if line == upper || containsAny(upper, []string{"PRIVATE", "LIMITED", "PVT", "LTD"}) {
			return line
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
