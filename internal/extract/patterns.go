package extract

import (
	"regexp"
	"strings"
)

// fieldPattern is one rung of an ordered pattern ladder. The first rung that
// matches wins; later rungs are intentionally broader fallbacks, so ordering
// is a tunable, not an accident.
type fieldPattern struct {
	name string
	re   *regexp.Regexp
}

var invoiceNumberPatterns = []fieldPattern{
	{"document-no", regexp.MustCompile(`(?i)Document\s*No\s*:?\s*([A-Za-z0-9/\-_]+)`)},
	{"invoice-no", regexp.MustCompile(`(?i)Invoice\s*No\.?\s*:?\s*([A-Za-z0-9/\-_]+)`)},
	{"invoice-number", regexp.MustCompile(`(?i)Invoice\s*Number\s*:?\s*([A-Za-z0-9/\-_]+)`)},
	{"bill-no", regexp.MustCompile(`(?i)Bill\s*No\.?\s*:?\s*([A-Za-z0-9/\-_]+)`)},
	{"mensa-format", regexp.MustCompile(`(Mensa/[A-Z]{2}/[A-Z]{3}/\d+)`)},
}

var datePatterns = []fieldPattern{
	{"invoice-date-numeric", regexp.MustCompile(`(?i)Invoice\s*Date\s*:\s*(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`)},
	{"date-numeric", regexp.MustCompile(`(?i)Date\s*:\s*(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`)},
	{"date-monthname", regexp.MustCompile(`(?i)Date\s*:\s*(\d{1,2}[A-Za-z]{3}\d{2,4})`)},
	{"invoice-date-monthname", regexp.MustCompile(`(?i)Invoice\s*Date\s*:?\s*(\d{1,2}[A-Za-z]{3}\d{2,4})`)},
	{"date-of-supply", regexp.MustCompile(`(?i)Date\s*of\s*Supply\s*:\s*(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`)},
	{"bare-date", regexp.MustCompile(`(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4})`)},
}

// totalValuePatterns are run in two passes: first requiring a decimal part,
// then without, so an explicit paise amount beats a bare rupee figure.
var totalValuePatterns = []fieldPattern{
	{"total-invoice-value", regexp.MustCompile(`(?i)Total\s*Invoice\s*Value\s*(?:in\s*INR)?\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*\.\d+)`)},
	{"grand-total", regexp.MustCompile(`(?i)Grand\s*Total\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*\.\d+)`)},
	{"total-amount", regexp.MustCompile(`(?i)Total\s*Amount\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*\.\d+)`)},
	{"total-value", regexp.MustCompile(`(?i)Total\s*Value\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*\.\d+)`)},
	{"bare-total", regexp.MustCompile(`(?i)Total\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*\.\d+)`)},
}

var totalValuePatternsNoDecimal = []fieldPattern{
	{"total-invoice-value", regexp.MustCompile(`(?i)Total\s*Invoice\s*Value\s*(?:in\s*INR)?\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*)`)},
	{"grand-total", regexp.MustCompile(`(?i)Grand\s*Total\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*)`)},
	{"total-amount", regexp.MustCompile(`(?i)Total\s*Amount\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*)`)},
	{"total-value", regexp.MustCompile(`(?i)Total\s*Value\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*)`)},
	{"bare-total", regexp.MustCompile(`(?i)Total\s*:?\s*(?:₹|Rs\.?)?\s*(\d[\d,.]*)`)},
}

var amountInWordsPatterns = []fieldPattern{
	{"amount-in-words", regexp.MustCompile(`(?i)Amount\s*in\s*Words\s*:\s*(.*?)(?:\n|$)`)},
	{"total-in-words", regexp.MustCompile(`(?i)Total\s*in\s*words\s*:\s*(.*?)(?:\n|$)`)},
	{"rupees-only", regexp.MustCompile(`(?i)(?:Rupees|Rs\.?)\s*(.*?)(?:Only)(?:\n|$)`)},
}

// Context-qualified numeric fields: the label alternation anchors where the
// amount is read from. (?:Rs|INR) tolerates a currency marker before digits.
var (
	totalQuantityRe = regexp.MustCompile(`(?i)Total\s*(?:Qty|Quantity)[^0-9]*(\d+(?:,\d+)*(?:\.\d+)?)`)
	taxableValueRe  = regexp.MustCompile(`(?i)(?:Sub\s*Total|Taxable\s*Value|Assessable\s*Value)[^0-9]*(\d+(?:,\d+)*(?:\.\d+)?)`)
	cgstRe          = regexp.MustCompile(`(?i)CGST[^0-9]*(\d+(?:,\d+)*(?:\.\d+)?)`)
	sgstRe          = regexp.MustCompile(`(?i)SGST[^0-9]*(\d+(?:,\d+)*(?:\.\d+)?)`)
	igstRe          = regexp.MustCompile(`(?i)IGST[^0-9]*(\d+(?:,\d+)*(?:\.\d+)?)`)
	cessRe          = regexp.MustCompile(`(?i)CESS[^0-9]*(\d+(?:,\d+)*(?:\.\d+)?)`)
)

var (
	irnRe  = regexp.MustCompile(`IRN\s*:?\s*([a-fA-F0-9]{64})`)
	ewayRe = regexp.MustCompile(`(?i)e[-\s]?way\s*bill\s*no\.?:?\s*(\d+)`)
)

// documentTypes are matched case-insensitively anywhere in the text; the
// first listed type found wins, defaulting to "Tax Invoice".
var documentTypes = []string{"Tax Invoice", "Delivery Challan", "Stock Transfer"}

var whitespaceRe = regexp.MustCompile(`\s+`)

// firstMatch walks a pattern ladder and returns the first capture group of
// the first rung that matches, or "".
func firstMatch(ladder []fieldPattern, text string) string {
	for _, p := range ladder {
		if m := p.re.FindStringSubmatch(text); len(m) > 1 {
			return collapseWhitespace(m[1])
		}
	}
	return ""
}

func collapseWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
