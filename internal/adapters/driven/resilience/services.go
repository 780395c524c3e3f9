package resilience

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.LLMService       = (*LLMService)(nil)
)

// EmbeddingService decorates an embedding adapter with an Executor.
type EmbeddingService struct {
	inner driven.EmbeddingService
	exec  *Executor
}

// WrapEmbedding returns inner hardened by exec.
func WrapEmbedding(inner driven.EmbeddingService, exec *Executor) *EmbeddingService {
	return &EmbeddingService{inner: inner, exec: exec}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32
	err := s.exec.Do(ctx, func(ctx context.Context) error {
		v, err := s.inner.Embed(ctx, text)
		out = v
		return err
	})
	return out, err
}

// EmbedBatch generates embeddings for multiple texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var out [][]float32
	err := s.exec.Do(ctx, func(ctx context.Context) error {
		v, err := s.inner.EmbedBatch(ctx, texts)
		out = v
		return err
	})
	return out, err
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the name of the embedding model.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping is not retried.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close releases resources.
func (s *EmbeddingService) Close() error { return s.inner.Close() }

// LLMService decorates a generative adapter with an Executor.
type LLMService struct {
	inner driven.LLMService
	exec  *Executor
}

// WrapLLM returns inner hardened by exec.
func WrapLLM(inner driven.LLMService, exec *Executor) *LLMService {
	return &LLMService{inner: inner, exec: exec}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	var out string
	err := s.exec.Do(ctx, func(ctx context.Context) error {
		v, err := s.inner.Generate(ctx, prompt, opts)
		out = v
		return err
	})
	return out, err
}

// ModelName returns the name of the LLM model.
func (s *LLMService) ModelName() string { return s.inner.ModelName() }

// Ping is not retried.
func (s *LLMService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close releases resources.
func (s *LLMService) Close() error { return s.inner.Close() }
