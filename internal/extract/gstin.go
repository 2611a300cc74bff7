package extract

import (
	"regexp"
	"strings"
)

// gstinRe matches the fixed 15-character GSTIN shape: 2 digits, 5 letters,
// 4 digits, 1 letter, 1 alphanumeric, literal Z, 1 alphanumeric.
var gstinRe = regexp.MustCompile(`[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]`)

// anchorMaxDistance is the character-offset cutoff beyond which a GSTIN token
// is not credibly associated with a context anchor.
const anchorMaxDistance = 500

// extractGSTIN resolves a role's GSTIN in three passes:
//  1. a context-qualified pattern (anchor word followed by a GSTIN token),
//  2. the GSTIN token closest to the first anchor occurrence, within
//     anchorMaxDistance characters,
//  3. positional rank in document order (1st occurrence = supplier,
//     2nd = buyer, 3rd = consignee), only when enough occurrences exist.
//
// The positional pass was tuned against a single invoice layout and is a
// known-low-precision heuristic; the exact tie-breaks are preserved because
// downstream consumers depend on them.
func (s *PatternStrategy) extractGSTIN(text string, anchors []string, rank int) string {
	// Pass 1: anchor immediately qualifying a GSTIN.
	for _, anchor := range anchors {
		re, err := regexp.Compile(`(?is)` + regexp.QuoteMeta(anchor) + `.{0,80}?(` + gstinRe.String() + `)`)
		if err != nil {
			continue
		}
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return m[1]
		}
	}

	tokens := gstinRe.FindAllStringIndex(text, -1)
	if len(tokens) == 0 {
		return ""
	}

	// Pass 2: closest token to the first anchor hit, within the cutoff.
	for _, anchor := range anchors {
		anchorPos := indexFold(text, anchor)
		if anchorPos < 0 {
			continue
		}
		best := -1
		bestDist := anchorMaxDistance
		for _, tok := range tokens {
			dist := tok[0] - anchorPos
			if dist < 0 {
				dist = -dist
			}
			if dist < bestDist {
				bestDist = dist
				best = tok[0]
			}
		}
		if best >= 0 {
			return text[best : best+15]
		}
		break
	}

	// Pass 3: positional rank.
	if len(tokens) >= rank {
		tok := tokens[rank-1]
		return text[tok[0]:tok[1]]
	}
	return ""
}

// indexFold is a case-insensitive strings.Index.
func indexFold(s, substr string) int {
	return strings.Index(strings.ToLower(s), strings.ToLower(substr))
}
