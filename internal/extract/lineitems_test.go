package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractLineItemsDegradedColumns(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	text := `Item Code  Description  Qty  Rate
SKU999  Gadget  5  200.00
Total: 1000.00
`
	items := s.extractLineItems(text, "INV-9")
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "INV-9", item["Invoice Number"])
	assert.Equal(t, "SKU999", item["Item/SKU Code"])
	assert.Equal(t, "Gadget", item["Item Description"])
	assert.Equal(t, 5.0, item["Quantity"])
	assert.Equal(t, 200.0, item["Unit Price"])
	assert.Equal(t, "", item["Tax Rate"])
	assert.Equal(t, 0.0, item["Line Total Value"])
}

func TestExtractLineItemsMultipleRows(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	text := `S.No  Item Code  Description  Qty  Rate  Amount
AAA111  Bolt Pack  73181500  20 PCS  50.00  18%  1180.00
BBB222  Nut Pack  73181600  40 PCS  25.00  18%  1180.00
Total  2360.00
`
	items := s.extractLineItems(text, "INV-2")
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0]["Line Number"])
	assert.Equal(t, 2, items[1]["Line Number"])
	assert.Equal(t, "AAA111", items[0]["Item/SKU Code"])
	assert.Equal(t, "BBB222", items[1]["Item/SKU Code"])
	assert.Equal(t, "GST_18", items[0]["Tax Rate"])
	assert.Equal(t, 1180.0, items[0]["Line Total Value"])
}

func TestExtractLineItemsKeepsKeywordDescriptions(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	// "Aerated" contains "rate"; only a keyword at line end marks a header.
	text := `Item Code  Description  Qty  Rate
SKU1  Aerated Drinks  5  100.00
Total: 500.00
`
	items := s.extractLineItems(text, "INV-6")
	require.Len(t, items, 1)
	assert.Equal(t, "SKU1", items[0]["Item/SKU Code"])
	assert.Equal(t, "Aerated Drinks", items[0]["Item Description"])
	assert.Equal(t, 5.0, items[0]["Quantity"])
	assert.Equal(t, 100.0, items[0]["Unit Price"])
}

func TestExtractLineItemsUppercaseTotalEndsTable(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	text := `Item Code  Description  Qty  Rate
SKU1  Widget  5  100.00
TOTAL IN WORDS: Five Hundred Only
Bank: HDFC 5550001112223
`
	items := s.extractLineItems(text, "INV-7")
	require.Len(t, items, 1)
	assert.Equal(t, "SKU1", items[0]["Item/SKU Code"])
	assert.Equal(t, 5.0, items[0]["Quantity"])
}

func TestExtractLineItemsSecondChance(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	// No tabular region at all; loose SKU-shaped tokens still yield items.
	text := "shipment contains ABC_123 under 85044090 packed as 40 PCS"
	items := s.extractLineItems(text, "INV-3")
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "ABC_123", item["Item/SKU Code"])
	assert.Equal(t, "85044090", item["HSN Code"])
	assert.Equal(t, 40.0, item["Quantity"])
	assert.Equal(t, "PCS", item["UOM"])
	assert.Equal(t, "GST_5", item["Tax Rate"])
	assert.Equal(t, "5.00%", item["IGST Rate"])
}

func TestExtractLineItemsSecondChanceCap(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	text := "AA_1 BB_2 CC_3 DD_4 EE_5 FF_6 GG_7"
	items := s.extractLineItems(text, "INV-4")
	assert.Len(t, items, 5)
}

func TestExtractLineItemsNone(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())
	assert.Empty(t, s.extractLineItems("plain paragraph of prose", "INV-5"))
}

func TestTaxRateLabel(t *testing.T) {
	rate, label, ok := taxRateFromLine("taxed at 12%")
	require.True(t, ok)
	assert.Equal(t, 12.0, rate)
	assert.Equal(t, "GST_12", label)

	rate, label, ok = taxRateFromLine("taxed at 12.5%")
	require.True(t, ok)
	assert.Equal(t, 12.5, rate)
	assert.Equal(t, "GST_12.5", label)

	_, _, ok = taxRateFromLine("no percentage here")
	assert.False(t, ok)
}
