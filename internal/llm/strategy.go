package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"invoice-extractor/internal/extract"
)

// envelopeSchema is the minimal shape contract on the model's output. Field
// contents stay loose on purpose; normalization owns per-field coercion.
const envelopeSchema = `{
	"type": "object",
	"required": ["invoice_data", "line_items"],
	"properties": {
		"invoice_data": {"type": "object"},
		"line_items": {"type": "array", "items": {"type": "object"}}
	}
}`

var envelope = jsonschema.MustCompileString("envelope.json", envelopeSchema)

var (
	fenceOpenRe  = regexp.MustCompile("^```json|^```")
	fenceCloseRe = regexp.MustCompile("```$")
)

// Strategy extracts invoice fields by prompting a completion provider and
// parsing its JSON reply. It satisfies extract.Strategy.
type Strategy struct {
	provider Provider
	logger   *zap.Logger
}

// NewStrategy wraps a provider in the strategy contract.
func NewStrategy(provider Provider, logger *zap.Logger) *Strategy {
	return &Strategy{provider: provider, logger: logger}
}

// Name implements extract.Strategy.
func (s *Strategy) Name() string { return "llm-" + s.provider.Name() }

// ProviderName exposes the underlying provider identifier for remarks.
func (s *Strategy) ProviderName() string { return s.provider.Name() }

// Extract implements extract.Strategy. Errors come back tagged: inspect with
// errors.As against the kinds in this package.
func (s *Strategy) Extract(ctx context.Context, text string) (*extract.RawResult, error) {
	prompt := BuildPrompt(text, s.provider.MaxPromptChars())

	reply, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleaned := stripFences(reply)
	s.logger.Debug("Parsing LLM reply",
		zap.String("provider", s.provider.Name()),
		zap.Int("reply_chars", len(cleaned)))

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, &MalformedResponseError{Reason: "failed to parse JSON: " + err.Error(), Raw: reply}
	}
	if err := envelope.Validate(doc); err != nil {
		return nil, &MalformedResponseError{Reason: "reply violates envelope schema: " + err.Error(), Raw: reply}
	}

	// Schema validation guarantees these assertions hold.
	root := doc.(map[string]any)
	invoiceData := root["invoice_data"].(map[string]any)
	rawItems := root["line_items"].([]any)

	items := make([]map[string]any, 0, len(rawItems))
	for _, it := range rawItems {
		items = append(items, it.(map[string]any))
	}
	return &extract.RawResult{InvoiceData: invoiceData, LineItems: items}, nil
}

// stripFences removes a leading/trailing markdown code fence if the model
// wrapped its JSON despite instructions.
func stripFences(reply string) string {
	cleaned := strings.TrimSpace(reply)
	cleaned = fenceOpenRe.ReplaceAllString(cleaned, "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
