package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	tableHeaderRe = regexp.MustCompile(`(?i)S\.?No\.?|Sr\.?\s*No\.?|Item Code|HSN|Description|Qty|Rate|Amount`)
	// headerLineRe anchors the keyword at line end so item rows whose
	// description merely contains one ("Aerated", "Hardware") are not
	// mistaken for the header.
	headerLineRe  = regexp.MustCompile(`(?i)(?:S\.?No\.?|Sr\.?\s*No\.?|Item Code|HSN|Description|Qty|Rate|Amount)\s*$`)
	tableEndRe    = regexp.MustCompile(`(?i)Total`)
	itemDetailsRe = regexp.MustCompile(`(?i)Item\s*Details`)
	columnSplitRe = regexp.MustCompile(`\s{2,}`)
	percentRe     = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)
	lineTotalRe   = regexp.MustCompile(`(\d+(?:,\d+)*(?:\.\d+)?)$`)
	digitsOnlyRe  = regexp.MustCompile(`[^\d.]`)
	leadDigitRe   = regexp.MustCompile(`^\d+`)

	// Second-chance patterns for when no tabular region parses.
	skuTokenRe = regexp.MustCompile(`([A-Z0-9]+_[A-Z0-9]+)`)
	hsnTokenRe = regexp.MustCompile(`(\d{8})`)
	qtyTokenRe = regexp.MustCompile(`(\d+)\s*(?:PCS|EA|NOS)`)
)

// extractLineItems locates the tabular item region (header row through the
// first following "Total") and parses each row positionally, splitting on
// runs of two or more spaces. Rows with seven or more columns get the rich
// mapping; shorter rows a degraded one. When no rows parse at all, a
// second-chance scan over SKU/HSN/quantity tokens produces up to five
// skeletal items.
func (s *PatternStrategy) extractLineItems(text, invoiceNumber string) []map[string]any {
	tableText := s.locateItemTable(text)
	if tableText == "" {
		return s.secondChanceItems(text, invoiceNumber)
	}

	var items []map[string]any
	lineNo := 0
	for _, line := range strings.Split(tableText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || headerLineRe.MatchString(line) {
			continue
		}
		parts := columnSplitRe.Split(line, -1)
		if len(parts) < 3 {
			continue
		}
		lineNo++
		item := newRawItem(invoiceNumber, lineNo)

		if len(parts) >= 7 {
			item["Item/SKU Code"] = parts[0]
			item["Item Description"] = parts[1]
			if leadDigitRe.MatchString(parts[2]) {
				item["HSN Code"] = parts[2]
			}
			item["Quantity"] = numericPart(parts[3])
			item["UOM"] = "PCS"
			item["Unit Price"] = numericPart(parts[4])

			if rate, label, ok := taxRateFromLine(line); ok {
				item["Tax Rate"] = label
				item["IGST Rate"] = strconv.FormatFloat(rate, 'f', -1, 64) + "%"
				qty := item["Quantity"].(float64)
				price := item["Unit Price"].(float64)
				if qty > 0 && price > 0 {
					subtotal := qty * price
					igst := round2(subtotal * rate / 100)
					item["IGST Amount"] = igst
					item["Line Total Value"] = subtotal + igst
				}
			}
			if m := lineTotalRe.FindStringSubmatch(line); len(m) > 1 {
				if v := parseAmountString(m[1]); v > 0 {
					item["Line Total Value"] = v
				}
			}
		} else {
			item["Item/SKU Code"] = parts[0]
			if len(parts) > 1 {
				item["Item Description"] = parts[1]
			}
			if len(parts) > 2 {
				item["Quantity"] = numericPart(parts[2])
			}
			if len(parts) > 3 {
				item["Unit Price"] = numericPart(parts[3])
			}
			if rate, label, ok := taxRateFromLine(line); ok {
				item["Tax Rate"] = label
				item["IGST Rate"] = strconv.FormatFloat(rate, 'f', -1, 64) + "%"
			}
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return s.secondChanceItems(text, invoiceNumber)
	}
	return items
}

// locateItemTable returns the text between the table header and the first
// "Total" (any case) that follows it, or "" when no header is found.
func (s *PatternStrategy) locateItemTable(text string) string {
	loc := tableHeaderRe.FindStringIndex(text)
	if loc == nil {
		loc = itemDetailsRe.FindStringIndex(text)
	}
	if loc == nil {
		return ""
	}
	start := loc[0]
	end := tableEndRe.FindStringIndex(text[start:])
	if end == nil {
		return text[start:]
	}
	return text[start : start+end[0]]
}

// secondChanceItems builds skeletal items from loose SKU-shaped tokens when
// the tabular pass found nothing. Capped at five to bound false positives.
func (s *PatternStrategy) secondChanceItems(text, invoiceNumber string) []map[string]any {
	skus := skuTokenRe.FindAllString(text, -1)
	if len(skus) == 0 {
		return nil
	}
	if len(skus) > 5 {
		skus = skus[:5]
	}
	hsns := hsnTokenRe.FindAllString(text, -1)
	qtys := qtyTokenRe.FindAllStringSubmatch(text, -1)

	var items []map[string]any
	for i, sku := range skus {
		item := newRawItem(invoiceNumber, i+1)
		item["Item/SKU Code"] = sku
		if i < len(hsns) {
			item["HSN Code"] = hsns[i]
		}
		if i < len(qtys) {
			item["Quantity"] = parseAmountString(qtys[i][1])
		}
		item["UOM"] = "PCS"
		item["Tax Rate"] = "GST_5"
		item["IGST Rate"] = "5.00%"
		items = append(items, item)
	}
	return items
}

func newRawItem(invoiceNumber string, lineNo int) map[string]any {
	return map[string]any{
		"Invoice Number":   invoiceNumber,
		"Line Number":      lineNo,
		"PO Identifier":    "",
		"Item/SKU Code":    "",
		"Item Description": "",
		"HSN Code":         "",
		"Quantity":         0.0,
		"UOM":              "",
		"Unit Price":       0.0,
		"Discount":         0.0,
		"Tax Rate":         "",
		"CGST Rate":        "",
		"SGST Rate":        "",
		"IGST Rate":        "",
		"CGST Amount":      0.0,
		"SGST Amount":      0.0,
		"IGST Amount":      0.0,
		"Line Total Value": 0.0,
	}
}

// taxRateFromLine finds a percentage token and renders the GST_<n> label,
// dropping the fractional part when the rate is a whole number.
func taxRateFromLine(line string) (float64, string, bool) {
	m := percentRe.FindStringSubmatch(line)
	if len(m) < 2 {
		return 0, "", false
	}
	rate, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, "", false
	}
	label := "GST_" + strconv.FormatFloat(rate, 'f', -1, 64)
	return rate, label, true
}

func numericPart(s string) float64 {
	cleaned := digitsOnlyRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0.0
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
