package llm

import (
	"context"
	"errors"
	"math"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	openaiDefaultModel   = "gpt-4"
	openaiMaxPromptChars = 8000
	openaiSystemPrompt   = "You are an expert at extracting structured data from invoice documents. Your task is to extract information and return it in a valid JSON format without any explanation or markdown."
)

type openaiProvider struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

func newOpenAIProvider(cfg Config, logger *zap.Logger) *openaiProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openaiDefaultModel
	}
	return &openaiProvider{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

func (p *openaiProvider) Name() string        { return ProviderOpenAI }
func (p *openaiProvider) MaxPromptChars() int { return openaiMaxPromptChars }

func (p *openaiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.logger.Debug("Calling OpenAI API",
		zap.String("model", p.model),
		zap.Int("prompt_chars", len(prompt)))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// Temperature carries omitempty, so an exact 0 would vanish from the
		// request; the smallest positive float keeps it pinned.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   4000,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &ProviderError{Status: apiErr.HTTPStatusCode, Body: apiErr.Message}
		}
		return "", &TransportError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "unexpected OpenAI response format"}
	}
	return resp.Choices[0].Message.Content, nil
}
