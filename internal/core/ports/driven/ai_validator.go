package driven

import "github.com/custodia-labs/studyrag/internal/core/domain"

// AIConfigValidator checks provider settings by contacting the provider.
type AIConfigValidator interface {
	// ValidateEmbedding pings the configured embedding provider.
	// Returns nil if the configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM pings the configured generative provider.
	// Returns nil if the configuration is valid or not configured.
	ValidateLLM(config *domain.LLMSettings) error
}
