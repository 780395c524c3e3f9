package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// StorageBackend selects the chunk repository implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite persists chunks in a local SQLite database.
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps chunks in process memory only.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageSQLite || b == StorageMemory
}

// EmbeddingSettings holds embedding provider configuration.
// Every chunk in an index must be embedded with the same provider and model.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Timeout bounds a single embedding request.
	Timeout time.Duration
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// GenerationSettings controls generative model calls.
type GenerationSettings struct {
	Temperature float64
	MaxTokens   int

	// Timeout bounds a single generation request.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt
	// for transient provider failures.
	MaxRetries int

	// RequestsPerSecond limits calls to the provider. Zero disables limiting.
	RequestsPerSecond float64
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	ChunkSize int
	Overlap   int

	// Measure is the length measure name ("characters" or "words").
	Measure string
}

// RetrievalSettings configures how many chunks feed each operation.
type RetrievalSettings struct {
	// TopK is the default number of chunks for retrieval and question answering.
	TopK int

	// QuizTopK caps the chunks used as quiz context.
	QuizTopK int

	// SummaryTopK caps the chunks used as summary context.
	SummaryTopK int

	// MaxContextChars caps the summary context size.
	MaxContextChars int

	// MinScore drops hits below this similarity. Zero disables the floor.
	MinScore float64
}

// StorageSettings configures persistence and the file lifecycle.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir holds the index database.
	DataDir string

	// InboxDir is watched for new files by the watch command.
	InboxDir string

	// RemoveSource deletes source files after a successful commit.
	RemoveSource bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Generation GenerationSettings
	Chunking   ChunkingSettings
	Retrieval  RetrievalSettings
	Storage    StorageSettings
}

// Hard limits that configuration cannot exceed.
const (
	MaxSummaryTopK   = 20
	MaxQuizQuestions = 20

	// MaxAskTopK bounds the chunks a question is answered from.
	MaxAskTopK = 4
	// MaxQuizTopK bounds the chunks a quiz is generated from.
	MaxQuizTopK = 3
)

// DefaultAppSettings returns settings with sensible defaults.
// Embedding defaults to local Ollama; the LLM is left unconfigured until
// a provider is chosen.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
			Timeout:  30 * time.Second,
		},
		LLM: LLMSettings{},
		Generation: GenerationSettings{
			Temperature:       0.7,
			MaxTokens:         1000,
			Timeout:           60 * time.Second,
			MaxRetries:        2,
			RequestsPerSecond: 2,
		},
		Chunking: ChunkingSettings{
			ChunkSize: 1000,
			Overlap:   200,
			Measure:   "characters",
		},
		Retrieval: RetrievalSettings{
			TopK:            4,
			QuizTopK:        3,
			SummaryTopK:     8,
			MaxContextChars: 12000,
		},
		Storage: StorageSettings{
			Backend:      StorageSQLite,
			RemoveSource: true,
		},
	}
}

// Validate checks settings that would otherwise fail deep inside a component.
func (s AppSettings) Validate() error {
	if s.Chunking.ChunkSize <= s.Chunking.Overlap {
		return fmt.Errorf("%w: chunk size %d must exceed overlap %d",
			ErrInvalidConfig, s.Chunking.ChunkSize, s.Chunking.Overlap)
	}
	if s.Retrieval.TopK <= 0 || s.Retrieval.QuizTopK <= 0 || s.Retrieval.SummaryTopK <= 0 {
		return fmt.Errorf("%w: retrieval limits must be positive", ErrInvalidConfig)
	}
	if s.Retrieval.QuizTopK > MaxQuizTopK {
		return fmt.Errorf("%w: quiz_top_k %d exceeds %d",
			ErrInvalidConfig, s.Retrieval.QuizTopK, MaxQuizTopK)
	}
	if s.Retrieval.SummaryTopK > MaxSummaryTopK {
		return fmt.Errorf("%w: summary_top_k %d exceeds %d",
			ErrInvalidConfig, s.Retrieval.SummaryTopK, MaxSummaryTopK)
	}
	if s.Generation.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, s.Storage.Backend)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
