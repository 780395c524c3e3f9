package driven

import "context"

// LLMService generates text from a prompt.
// This is an optional service - when nil, the query engine reports
// domain.ErrLLMUnavailable instead of answering.
//
// Implementations include:
//   - OpenAI (chat completions)
//   - Anthropic (messages)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// System is an instruction sent ahead of the prompt.
	// Providers with a system role send it there; others prepend it.
	System string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
