package llm

const promptHeader = `
Extract structured data from this invoice text. Return ONLY a valid JSON with two fields:
1. "invoice_data": object with these fields: Document Type, Invoice Number, Invoice Date, Supplier Name, Supplier GSTIN, Supplier Address, Buyer Name, Buyer GSTIN, Buyer Address, Total Invoice Value
2. "line_items": array of line items with fields: Line Number, Item/SKU Code, Item Description, Quantity, Unit Price, Tax Rate, Line Total Value

INVOICE TEXT:
`

const promptFooter = `

IMPORTANT: Return ONLY valid JSON without any explanation or markdown. Format:
{"invoice_data": {...}, "line_items": [...]}
`

// BuildPrompt wraps the invoice text in the fixed extraction instructions.
// Text beyond maxChars is cut from the tail; invoices front-load the header
// fields, so the tail is the cheapest part to lose.
func BuildPrompt(text string, maxChars int) string {
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return promptHeader + text + promptFooter
}
