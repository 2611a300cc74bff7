// Package normalize translates raw strategy output into the canonical record
// schema. The contract: records come back fully populated no matter how
// sparse or messy the raw maps are, with numeric fields coerced to floats and
// everything else to strings.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"invoice-extractor/internal/models"
)

var currencyRe = regexp.MustCompile(`[₹$,]`)

// ParseAmount coerces a raw value to a float64 amount. Strings are cleaned of
// currency symbols and separators first; anything unparseable maps to 0.0.
func ParseAmount(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0.0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		cleaned := strings.TrimSpace(currencyRe.ReplaceAllString(n, ""))
		if cleaned == "" {
			return 0.0
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0.0
		}
		return f
	default:
		return 0.0
	}
}

// asString coerces a raw value to its string form. Whole-number floats drop
// the fractional part so JSON numbers round-trip as "5", not "5.000000".
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case bool:
		if s {
			return "Yes"
		}
		return "No"
	default:
		return fmt.Sprintf("%v", s)
	}
}

// pick returns the first present, non-empty raw value among the given keys.
// Raw maps use whichever label vocabulary their strategy emitted, so most
// fields carry an alias list.
func pick(raw map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func pickString(raw map[string]any, keys ...string) string {
	if v, ok := pick(raw, keys...); ok {
		return asString(v)
	}
	return ""
}

func pickAmount(raw map[string]any, keys ...string) float64 {
	if v, ok := pick(raw, keys...); ok {
		return ParseAmount(v)
	}
	return 0.0
}

// Invoice builds the canonical invoice record from a raw field map. A raw
// "error" entry short-circuits: the defaults come back with the failure noted
// in the remarks, and no field mapping is attempted.
func Invoice(serial string, raw map[string]any) models.InvoiceRecord {
	rec := models.NewInvoiceRecord(serial)
	if raw == nil {
		return rec
	}
	if errVal, ok := raw["error"]; ok {
		rec.Remarks = "Error in LLM extraction: " + asString(errVal)
		return rec
	}

	if dt := pickString(raw, "Document Type"); dt != "" {
		rec.DocumentType = dt
	}
	rec.DocumentNumber = pickString(raw, "Invoice Number", "Invoice/Document Number", "Document Number")
	rec.DocumentDate = pickString(raw, "Invoice Date", "Invoice/Document Date", "Document Date")
	rec.SupplierName = pickString(raw, "Supplier Name")
	rec.SupplierGSTIN = pickString(raw, "Supplier GSTIN")
	rec.SupplierAddress = pickString(raw, "Supplier Address")
	rec.BuyerName = pickString(raw, "Buyer Name")
	rec.BuyerGSTIN = pickString(raw, "Buyer GSTIN")
	rec.BuyerAddress = pickString(raw, "Buyer Address")
	rec.ConsigneeName = pickString(raw, "Consignee Name")
	rec.ConsigneeGSTIN = pickString(raw, "Consignee GSTIN")
	rec.ConsigneeAddress = pickString(raw, "Consignee Address")
	rec.PONumber = pickString(raw, "PO Number")
	rec.SONumber = pickString(raw, "SO Number")
	rec.STRNumber = pickString(raw, "STR Number")
	rec.BoxCount = pickString(raw, "Box Count")
	rec.TotalQuantity = pickAmount(raw, "Total Quantity")
	rec.TaxableValue = pickAmount(raw, "Taxable Value", "Subtotal/Taxable Value")
	rec.CGSTAmount = pickAmount(raw, "CGST Amount")
	rec.SGSTAmount = pickAmount(raw, "SGST Amount")
	rec.IGSTAmount = pickAmount(raw, "IGST Amount")
	rec.CESSAmount = pickAmount(raw, "CESS Amount")
	rec.AdditionalCharges = pickAmount(raw, "Additional Charges", "Additional Charges / Round Off")
	rec.TotalInvoiceValue = pickAmount(raw, "Total Invoice Value")
	if rc := pickString(raw, "Reverse Charge"); rc != "" {
		rec.ReverseCharge = rc
	}
	rec.IRNNumber = pickString(raw, "IRN No", "IRN")
	rec.EWayBillNumber = pickString(raw, "E-Way Bill No", "E-Way Bill Number")
	rec.AmountInWords = pickString(raw, "Amount in Words")
	rec.Remarks = pickString(raw, "Additional Remarks")

	// Consignee details default to the buyer's.
	if rec.ConsigneeName == "" {
		rec.ConsigneeName = rec.BuyerName
	}
	if rec.ConsigneeGSTIN == "" {
		rec.ConsigneeGSTIN = rec.BuyerGSTIN
	}
	if rec.ConsigneeAddress == "" {
		rec.ConsigneeAddress = rec.BuyerAddress
	}
	return rec
}

// LineItems builds canonical line items from raw item maps. Items are
// renumbered sequentially from 1 in input order: raw line numbers from the
// source are untrusted and frequently duplicated.
func LineItems(serial, invoiceNumber string, raw []map[string]any) []models.LineItemRecord {
	items := make([]models.LineItemRecord, 0, len(raw))
	for i, rawItem := range raw {
		item := models.NewLineItem(serial, invoiceNumber, i+1)
		if rawItem == nil {
			items = append(items, item)
			continue
		}
		if num := pickString(rawItem, "Invoice Number"); num != "" {
			item.InvoiceNumber = num
		}
		item.POIdentifier = pickString(rawItem, "PO Identifier")
		item.SKUCode = pickString(rawItem, "Item/SKU Code", "SKU Code", "Item Code")
		item.Description = pickString(rawItem, "Item Description", "Description")
		item.HSNCode = pickString(rawItem, "HSN Code")
		item.Quantity = pickAmount(rawItem, "Quantity")
		item.UOM = pickString(rawItem, "UOM")
		item.UnitPrice = pickAmount(rawItem, "Unit Price")
		item.Discount = pickAmount(rawItem, "Discount")
		item.TaxRate = pickString(rawItem, "Tax Rate")
		item.CGSTRate = pickString(rawItem, "CGST Rate")
		item.SGSTRate = pickString(rawItem, "SGST Rate")
		item.IGSTRate = pickString(rawItem, "IGST Rate")
		item.CGSTAmount = pickAmount(rawItem, "CGST Amount")
		item.SGSTAmount = pickAmount(rawItem, "SGST Amount")
		item.IGSTAmount = pickAmount(rawItem, "IGST Amount")
		item.LineTotalValue = pickAmount(rawItem, "Line Total Value")
		items = append(items, item)
	}
	return items
}
