// Package extract defines the field-extraction strategy contract and the
// pattern-matching implementation that turns acquired invoice text into a raw
// field map plus raw line items. Raw maps use the source-label vocabulary; the
// normalize package owns the translation to the canonical schema.
package extract

import "context"

// RawResult carries strategy output before normalization. Keys are raw field
// labels as they appear on invoices (e.g. "Invoice Number", "Supplier GSTIN").
type RawResult struct {
	InvoiceData map[string]any
	LineItems   []map[string]any
}

// Strategy is the capability interface both extraction variants implement.
// Implementations must not panic across this boundary; the pattern variant
// never returns an error, the LLM variant returns its tagged error kinds.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, text string) (*RawResult, error)
}
