// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/studyrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/studyrag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/studyrag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/studyrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/studyrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/resilience"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Providers holds the hardened model services built from settings.
type Providers struct {
	Embedding driven.EmbeddingService
	LLM       driven.LLMService // nil when no generative provider is configured.
	Warnings  []string          // Non-fatal issues found while building.
}

// Close releases all resources held by the providers.
func (p *Providers) Close() error {
	var errs []error
	if p.Embedding != nil {
		errs = append(errs, p.Embedding.Close())
	}
	if p.LLM != nil {
		errs = append(errs, p.LLM.Close())
	}
	return errors.Join(errs...)
}

// NewProviders builds both services and wraps them with timeout, retry,
// rate limit and breaker policies from settings. An unconfigured embedding
// provider is an error; an unconfigured LLM is a warning.
func NewProviders(settings *domain.AppSettings, opts ...resilience.Option) (*Providers, error) {
	embedding, err := CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if embedding == nil {
		return nil, fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}

	gen := settings.Generation
	p := &Providers{
		Embedding: resilience.WrapEmbedding(embedding, resilience.NewExecutor(resilience.Policy{
			Name:              "embedding/" + string(settings.Embedding.Provider),
			Timeout:           settings.Embedding.Timeout,
			MaxAttempts:       gen.MaxRetries + 1,
			RequestsPerSecond: gen.RequestsPerSecond,
		}, opts...)),
	}

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		p.Warnings = append(p.Warnings, fmt.Sprintf("LLM provider unusable: %v", err))
	case llm == nil:
		p.Warnings = append(p.Warnings, "no LLM provider configured; ask, quiz and summarize are unavailable")
	default:
		p.LLM = resilience.WrapLLM(llm, resilience.NewExecutor(resilience.Policy{
			Name:              "llm/" + string(settings.LLM.Provider),
			Timeout:           gen.Timeout,
			MaxAttempts:       gen.MaxRetries + 1,
			RequestsPerSecond: gen.RequestsPerSecond,
		}, opts...))
	}

	return p, nil
}

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings by building a service and pinging it.
type ConfigValidator struct {
	timeout time.Duration
}

// NewConfigValidator creates a validator. A zero timeout uses the default ping timeout.
func NewConfigValidator(timeout time.Duration) *ConfigValidator {
	if timeout <= 0 {
		timeout = pingTimeout
	}
	return &ConfigValidator{timeout: timeout}
}

// ValidateEmbedding pings the configured embedding provider.
func (v *ConfigValidator) ValidateEmbedding(settings *domain.EmbeddingSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return ValidateEmbeddingConfig(ctx, settings)
}

// ValidateLLM pings the configured generative provider.
func (v *ConfigValidator) ValidateLLM(settings *domain.LLMSettings) error {
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()
	return ValidateLLMConfig(ctx, settings)
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()

	if err := svc.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return nil
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		if settings != nil && settings.Provider == domain.AIProviderAnthropic {
			return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
		}
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
