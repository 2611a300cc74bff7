package extract

import (
	"regexp"
	"strings"
)

// legalNamePattern catches registered company names anywhere in the text.
var legalNamePattern = fieldPattern{
	name: "legal-name",
	re:   regexp.MustCompile(`([A-Z][A-Za-z0-9 .&'-]{2,60}(?:PRIVATE LIMITED|Private Limited|PVT\.? LTD\.?|Pvt\.? Ltd\.?|LIMITED|Limited|LLP))`),
}

var addressPatterns = []fieldPattern{
	{"labelled-address", regexp.MustCompile(`(?is)Address\s*:\s*(.{10,200}?)(?:\n\s*\n|GSTIN|PAN|Phone|Email|$)`)},
	{"road-street", regexp.MustCompile(`(?im)^(.{0,80}(?:Road|Street|Lane|Nagar|Marg|Layout|Cross|Main|Sector|Phase|Block).{0,120})$`)},
	{"place-pincode", regexp.MustCompile(`(?m)^(.{5,150}\b\d{6}\b.{0,30})$`)},
}

// identifier lines are never part of an address.
var nonAddressRe = regexp.MustCompile(`(?i)GSTIN|PAN\b|Invoice|Phone|Mobile|E-?mail|IRN|Date`)

// addressWindow bounds how far past the entity name the address scan reaches.
const addressWindow = 500

// extractEntityName returns the value printed after the first matching anchor
// label, stopping at the end of the line or at a following identifier label.
func (s *PatternStrategy) extractEntityName(text string, anchors []string) string {
	for _, anchor := range anchors {
		re, err := regexp.Compile(`(?is)` + regexp.QuoteMeta(anchor) + `\s*:?\s*\n?\s*(.+?)(?:\n|GSTIN|PAN|Address|$)`)
		if err != nil {
			continue
		}
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		name := collapseWhitespace(m[1])
		name = strings.Trim(name, ":,- ")
		if len(name) >= 3 && !nonAddressRe.MatchString(name) {
			return name
		}
	}
	return ""
}

// extractAddress scans the window of text following the entity's name for an
// address-shaped run. When no labelled or pattern-shaped address is found, it
// joins the first few free lines after the name that carry no identifier
// labels.
func (s *PatternStrategy) extractAddress(text, name string) string {
	if name == "" {
		return ""
	}
	start := indexFold(text, name)
	if start < 0 {
		return ""
	}
	start += len(name)
	end := start + addressWindow
	if end > len(text) {
		end = len(text)
	}
	window := text[start:end]

	for _, p := range addressPatterns {
		if m := p.re.FindStringSubmatch(window); len(m) > 1 {
			return collapseWhitespace(m[1])
		}
	}

	// Fallback: a handful of plain lines directly under the name.
	var parts []string
	for _, line := range strings.Split(window, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(parts) > 0 {
				break
			}
			continue
		}
		if nonAddressRe.MatchString(line) {
			break
		}
		parts = append(parts, line)
		if len(parts) == 5 {
			break
		}
	}
	return strings.Join(parts, ", ")
}
