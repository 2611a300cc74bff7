package models

import "strconv"

// InvoiceRecord is the canonical invoice-level output schema. Every field is
// always populated: missing data is "" or 0.0, never a nil or a raw currency
// string, so downstream tabular writers can rely on a fixed shape regardless
// of which extraction strategy produced the data.
type InvoiceRecord struct {
	SerialNumber      string
	DocumentType      string // "Tax Invoice" | "Delivery Challan" | "Stock Transfer"
	DocumentNumber    string
	DocumentDate      string // preserved as found, not normalized
	SupplierName      string
	SupplierGSTIN     string
	SupplierAddress   string
	BuyerName         string
	BuyerGSTIN        string
	BuyerAddress      string
	ConsigneeName     string
	ConsigneeGSTIN    string
	ConsigneeAddress  string
	PONumber          string
	SONumber          string
	STRNumber         string
	BoxCount          string
	TotalQuantity     float64
	TaxableValue      float64
	CGSTAmount        float64
	SGSTAmount        float64
	IGSTAmount        float64
	CESSAmount        float64
	AdditionalCharges float64
	TotalInvoiceValue float64
	ReverseCharge     string
	IRNNumber         string // 64 hex chars when present
	EWayBillNumber    string
	AmountInWords     string
	Remarks           string // diagnostic/provenance text
}

// LineItemRecord is the canonical item-level output schema, one per invoice
// line, ordered by a 1-based line number unique within the document.
type LineItemRecord struct {
	InvoiceSerialNumber string
	InvoiceNumber       string
	LineNumber          int
	POIdentifier        string
	SKUCode             string
	Description         string
	HSNCode             string
	Quantity            float64
	UOM                 string
	UnitPrice           float64
	Discount            float64
	TaxRate             string // label, e.g. "GST_5"
	CGSTRate            string // percentage label, e.g. "2.5%"
	SGSTRate            string
	IGSTRate            string
	CGSTAmount          float64
	SGSTAmount          float64
	IGSTAmount          float64
	LineTotalValue      float64
}

// NewInvoiceRecord returns a fully-defaulted record for the given serial number.
func NewInvoiceRecord(serial string) InvoiceRecord {
	return InvoiceRecord{
		SerialNumber:  serial,
		DocumentType:  "Tax Invoice",
		ReverseCharge: "No",
	}
}

// NewLineItem returns a fully-defaulted line item bound to its parent invoice.
func NewLineItem(serial, invoiceNumber string, line int) LineItemRecord {
	return LineItemRecord{
		InvoiceSerialNumber: serial,
		InvoiceNumber:       invoiceNumber,
		LineNumber:          line,
	}
}

// InvoiceColumns is the fixed column order for invoice-level tabular output.
var InvoiceColumns = []string{
	"Serial Number",
	"Document Type",
	"Invoice/Document Number",
	"Invoice/Document Date",
	"Supplier Name",
	"Supplier GSTIN",
	"Supplier Address",
	"Buyer Name",
	"Buyer GSTIN",
	"Buyer Address",
	"Consignee Name",
	"Consignee GSTIN",
	"Consignee Address",
	"PO Number",
	"SO Number",
	"STR Number",
	"Box Count",
	"Total Quantity",
	"Subtotal/Taxable Value",
	"CGST Amount",
	"SGST Amount",
	"IGST Amount",
	"CESS Amount",
	"Additional Charges / Round Off",
	"Total Invoice Value",
	"Reverse Charge",
	"IRN No",
	"E-Way Bill No",
	"Amount in Words",
	"Additional Remarks",
}

// LineItemColumns is the fixed column order for item-level tabular output.
var LineItemColumns = []string{
	"Invoice Serial Number",
	"Invoice Number",
	"Line #",
	"PO Identifier",
	"Item/SKU Code",
	"Item Description",
	"HSN Code",
	"Quantity",
	"UOM",
	"Unit Price",
	"Discount",
	"Tax Rate",
	"CGST Rate",
	"SGST Rate",
	"IGST Rate",
	"CGST Amount",
	"SGST Amount",
	"IGST Amount",
	"Line Total Value",
}

// Row renders the record in InvoiceColumns order.
func (r InvoiceRecord) Row() []string {
	return []string{
		r.SerialNumber,
		r.DocumentType,
		r.DocumentNumber,
		r.DocumentDate,
		r.SupplierName,
		r.SupplierGSTIN,
		r.SupplierAddress,
		r.BuyerName,
		r.BuyerGSTIN,
		r.BuyerAddress,
		r.ConsigneeName,
		r.ConsigneeGSTIN,
		r.ConsigneeAddress,
		r.PONumber,
		r.SONumber,
		r.STRNumber,
		r.BoxCount,
		formatAmount(r.TotalQuantity),
		formatAmount(r.TaxableValue),
		formatAmount(r.CGSTAmount),
		formatAmount(r.SGSTAmount),
		formatAmount(r.IGSTAmount),
		formatAmount(r.CESSAmount),
		formatAmount(r.AdditionalCharges),
		formatAmount(r.TotalInvoiceValue),
		r.ReverseCharge,
		r.IRNNumber,
		r.EWayBillNumber,
		r.AmountInWords,
		r.Remarks,
	}
}

// Row renders the line item in LineItemColumns order.
func (it LineItemRecord) Row() []string {
	return []string{
		it.InvoiceSerialNumber,
		it.InvoiceNumber,
		strconv.Itoa(it.LineNumber),
		it.POIdentifier,
		it.SKUCode,
		it.Description,
		it.HSNCode,
		formatAmount(it.Quantity),
		it.UOM,
		formatAmount(it.UnitPrice),
		formatAmount(it.Discount),
		it.TaxRate,
		it.CGSTRate,
		it.SGSTRate,
		it.IGSTRate,
		formatAmount(it.CGSTAmount),
		formatAmount(it.SGSTAmount),
		formatAmount(it.IGSTAmount),
		formatAmount(it.LineTotalValue),
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
