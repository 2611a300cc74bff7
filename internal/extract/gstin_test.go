package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestExtractGSTINPositionalRank(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	// No anchors resolve; document order decides the role.
	text := `Registered parties:
29AAACA1234F1Z5
07AABCG9876K1ZC
33AAACC4321B2Z9
`
	anchors := []string{"Nowhere"}
	assert.Equal(t, "29AAACA1234F1Z5", s.extractGSTIN(text, anchors, 1))
	assert.Equal(t, "07AABCG9876K1ZC", s.extractGSTIN(text, anchors, 2))
	assert.Equal(t, "33AAACC4321B2Z9", s.extractGSTIN(text, anchors, 3))
}

func TestExtractGSTINConsigneeRequiresThirdOccurrence(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	text := "29AAACA1234F1Z5 somewhere 07AABCG9876K1ZC"
	assert.Equal(t, "", s.extractGSTIN(text, []string{"Consignee"}, 3))
}

func TestExtractGSTINAnchorQualified(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	text := `29AAACA1234F1Z5
Buyer GSTIN: 07AABCG9876K1ZC`
	assert.Equal(t, "07AABCG9876K1ZC", s.extractGSTIN(text, []string{"Buyer"}, 2))
}

func TestExtractGSTINAnchorProximity(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())

	// The anchor sits far past the qualifying window, so the nearest token
	// within the distance cutoff wins over document order.
	text := "07AABCG9876K1ZC " + pad(400) + " Consignee details follow " + pad(120) + " 33AAACC4321B2Z9"
	assert.Equal(t, "33AAACC4321B2Z9", s.extractGSTIN(text, []string{"Consignee"}, 1))
}

func TestExtractGSTINNoTokens(t *testing.T) {
	s := NewPatternStrategy(zap.NewNop())
	assert.Equal(t, "", s.extractGSTIN("no identifiers here", []string{"Supplier"}, 1))
}

func pad(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}
