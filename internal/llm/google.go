package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

const (
	googleDefaultBaseURL = "https://generativelanguage.googleapis.com/v1"
	googleDefaultModel   = "gemini-1.0-pro"
	googleMaxPromptChars = 10000
)

// googleProvider talks to the Gemini generateContent endpoint. The API key
// travels as a query parameter, not a header.
type googleProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func newGoogleProvider(cfg Config, logger *zap.Logger) *googleProvider {
	model := cfg.Model
	if model == "" {
		model = googleDefaultModel
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = googleDefaultBaseURL
	}
	return &googleProvider{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

func (p *googleProvider) Name() string        { return ProviderGoogle }
func (p *googleProvider) MaxPromptChars() int { return googleMaxPromptChars }

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *googleProvider) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.0,
			TopP:            0.8,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		p.baseURL, p.model, url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	p.logger.Debug("Calling Gemini API",
		zap.String("model", p.model),
		zap.Int("prompt_chars", len(prompt)))

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Status: resp.StatusCode, Body: string(body)}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &MalformedResponseError{Reason: "invalid JSON from Gemini: " + err.Error(), Raw: string(body)}
	}
	if len(parsed.Candidates) == 0 {
		return "", &MalformedResponseError{Reason: "unexpected API response format", Raw: string(body)}
	}
	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.Text != "" {
			return part.Text, nil
		}
	}
	return "", &MalformedResponseError{Reason: "unexpected API response format", Raw: string(body)}
}
