package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleInvoiceText = `ACME TRADERS PVT LTD
Tax Invoice
Invoice No: INV-001
Invoice Date: 15/04/2024

Supplier: ACME TRADERS PVT LTD
GSTIN: 29AAACA1234F1Z5
Address: 12 Industrial Estate Phase II Chennai 600032

Buyer: GLOBEX RETAIL LIMITED
GSTIN: 07AABCG9876K1ZC
Address: 4 Ring Road New Delhi 110001

S.No  Item Code  Description  Qty  Rate  Amount
SKU123  Widget  85044090  10 PCS  500.00  5%  5250.00
Total Quantity: 10
Sub Total: 5000.00
IGST: 250.00
Total Invoice Value: 5250.00
Amount in Words: Five Thousand Two Hundred Fifty Rupees Only
IRN: ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12
E-Way Bill No: 123456789012
`

func TestPatternExtractFullInvoice(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	res, err := s.Extract(context.Background(), sampleInvoiceText)
	require.NoError(t, err)
	require.NotNil(t, res)

	data := res.InvoiceData
	assert.Equal(t, "Tax Invoice", data["Document Type"])
	assert.Equal(t, "INV-001", data["Invoice Number"])
	assert.Equal(t, "15/04/2024", data["Invoice Date"])
	assert.Equal(t, "ACME TRADERS PVT LTD", data["Supplier Name"])
	assert.Equal(t, "29AAACA1234F1Z5", data["Supplier GSTIN"])
	assert.Equal(t, "12 Industrial Estate Phase II Chennai 600032", data["Supplier Address"])
	assert.Equal(t, "GLOBEX RETAIL LIMITED", data["Buyer Name"])
	assert.Equal(t, "07AABCG9876K1ZC", data["Buyer GSTIN"])
	assert.Equal(t, "4 Ring Road New Delhi 110001", data["Buyer Address"])

	// No consignee block: buyer details carry over.
	assert.Equal(t, "GLOBEX RETAIL LIMITED", data["Consignee Name"])
	assert.Equal(t, "07AABCG9876K1ZC", data["Consignee GSTIN"])
	assert.Equal(t, "4 Ring Road New Delhi 110001", data["Consignee Address"])

	assert.Equal(t, 10.0, data["Total Quantity"])
	assert.Equal(t, 5000.0, data["Taxable Value"])
	assert.Equal(t, 0.0, data["CGST Amount"])
	assert.Equal(t, 0.0, data["SGST Amount"])
	assert.Equal(t, 250.0, data["IGST Amount"])
	assert.Equal(t, 5250.0, data["Total Invoice Value"])
	assert.Equal(t, "ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12cd34ef56ab12", data["IRN No"])
	assert.Equal(t, "123456789012", data["E-Way Bill No"])
	assert.Equal(t, "Five Thousand Two Hundred Fifty Rupees Only", data["Amount in Words"])

	require.Len(t, res.LineItems, 1)
	item := res.LineItems[0]
	assert.Equal(t, "INV-001", item["Invoice Number"])
	assert.Equal(t, 1, item["Line Number"])
	assert.Equal(t, "SKU123", item["Item/SKU Code"])
	assert.Equal(t, "Widget", item["Item Description"])
	assert.Equal(t, "85044090", item["HSN Code"])
	assert.Equal(t, 10.0, item["Quantity"])
	assert.Equal(t, "PCS", item["UOM"])
	assert.Equal(t, 500.0, item["Unit Price"])
	assert.Equal(t, "GST_5", item["Tax Rate"])
	assert.Equal(t, "5%", item["IGST Rate"])
	assert.Equal(t, 250.0, item["IGST Amount"])
	assert.Equal(t, 5250.0, item["Line Total Value"])
}

func TestPatternExtractSparseTableRow(t *testing.T) {
	text := `Invoice No: INV-001
GSTIN: 29AAACA1234F1Z5
GSTIN: 07AABCG9876K1ZC
Item Code  Description  Qty  Rate  Amount
SKU123  Widget  10  500.00  5%  5250.00
Total Invoice Value: Rs. 5000.00
`
	s := NewPatternStrategy(zap.NewNop())

	res, err := s.Extract(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "INV-001", res.InvoiceData["Invoice Number"])
	assert.Equal(t, 5000.0, res.InvoiceData["Total Invoice Value"])
	assert.Equal(t, "29AAACA1234F1Z5", res.InvoiceData["Supplier GSTIN"])
	assert.Equal(t, "07AABCG9876K1ZC", res.InvoiceData["Buyer GSTIN"])

	// A row without an HSN column still yields quantity and price.
	require.Len(t, res.LineItems, 1)
	assert.Equal(t, "SKU123", res.LineItems[0]["Item/SKU Code"])
	assert.Equal(t, 10.0, res.LineItems[0]["Quantity"])
	assert.Equal(t, 500.0, res.LineItems[0]["Unit Price"])
	assert.Equal(t, "GST_5", res.LineItems[0]["Tax Rate"])
}

func TestPatternExtractNeverErrors(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	for _, text := range []string{"", "no invoice fields here at all", "12345"} {
		res, err := s.Extract(context.Background(), text)
		require.NoError(t, err)
		require.NotNil(t, res)
	}
}

func TestPatternExtractDefaultsOnEmptyText(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	res, err := s.Extract(context.Background(), "")
	require.NoError(t, err)

	data := res.InvoiceData
	assert.Equal(t, "Tax Invoice", data["Document Type"])
	assert.Equal(t, "", data["Invoice Number"])
	assert.Equal(t, 0.0, data["Total Invoice Value"])
	assert.Empty(t, res.LineItems)
}

func TestExtractAddressKeepsEmbeddedStateWord(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	// "Estate" must not be cut at the embedded "state"; the capture runs to
	// the next identifier label instead.
	text := `Supplier: ACME TRADERS PVT LTD
Address: 12 Industrial Estate Phase II Chennai 600032
Phone: 044-1234567
`
	got := s.extractAddress(text, "ACME TRADERS PVT LTD")
	assert.Equal(t, "12 Industrial Estate Phase II Chennai 600032", got)
}

func TestExtractAmountInWordsAppendsOnly(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	got := s.extractAmountInWords("Amount in Words: Twelve Thousand\n")
	assert.Equal(t, "Twelve Thousand Only", got)

	got = s.extractAmountInWords("Amount in Words: Twelve Thousand Only\n")
	assert.Equal(t, "Twelve Thousand Only", got)
}

func TestExtractTotalPrefersDecimalAmounts(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	// A decimal grand total beats an earlier bare integer total.
	text := "Total: 9999\nGrand Total: 5250.50\n"
	assert.Equal(t, 5250.50, s.extractTotalInvoiceValue(text))
}

func TestParseAmountString(t *testing.T) {
	assert.Equal(t, 1234.5, parseAmountString("₹1,234.50"))
	assert.Equal(t, 1234.5, parseAmountString("1234.50"))
	assert.Equal(t, 0.0, parseAmountString("abc"))
	assert.Equal(t, 0.0, parseAmountString(""))
}
