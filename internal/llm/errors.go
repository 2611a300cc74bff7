// Package llm provides the LLM-backed extraction strategy and its two
// provider adapters (Google Gemini and OpenAI). Provider failures are tagged
// with typed errors so the pipeline can distinguish a misconfigured client
// from a transient API failure.
package llm

import "fmt"

// ConfigError reports a configuration problem detected while constructing a
// provider. It is the only error kind that aborts a parse outright.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "llm config: " + e.Reason
}

// TransportError wraps a network-level failure: the request never produced an
// HTTP response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "llm transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError reports a non-200 response from the provider API. Body
// carries the raw response text for diagnostics.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider: API error: %d - %s", e.Status, e.Body)
}

// MalformedResponseError reports a 200 response whose payload could not be
// turned into the expected JSON envelope.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return "llm response: " + e.Reason
}
