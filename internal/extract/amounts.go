package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// parseAmountString coerces a currency-ish token to a float. Commas, rupee
// signs and stray whitespace are stripped; anything still unparseable maps
// to 0.0 so field extraction never aborts.
func parseAmountString(raw string) float64 {
	cleaned := strings.NewReplacer(",", "", "₹", "", "$", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0.0
	}
	return v
}

// matchAmount extracts the first capture group of re as an amount.
func matchAmount(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0.0
	}
	return parseAmountString(m[1])
}

// firstSubmatch returns re's first capture group, or "".
func firstSubmatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
