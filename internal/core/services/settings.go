package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedTimeout  = "embedding.timeout"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"

	keyTemperature = "generation.temperature"
	keyMaxTokens   = "generation.max_tokens"
	keyGenTimeout  = "generation.timeout"
	keyMaxRetries  = "generation.max_retries"
	keyRateLimit   = "generation.requests_per_second"

	keyChunkSize = "chunking.chunk_size"
	keyOverlap   = "chunking.overlap"
	keyMeasure   = "chunking.measure"

	keyTopK            = "retrieval.top_k"
	keyQuizTopK        = "retrieval.quiz_top_k"
	keySummaryTopK     = "retrieval.summary_top_k"
	keyMaxContextChars = "retrieval.max_context_chars"
	keyMinScore        = "retrieval.min_score"

	keyBackend      = "storage.backend"
	keyDataDir      = "storage.data_dir"
	keyInboxDir     = "storage.inbox_dir"
	keyRemoveSource = "storage.remove_source"
)

// providerKeySuffix builds provider-scoped key names such as "openai.api_key".
const providerKeySuffix = ".api_key"

// setting is one key/value pair written by Save.
type setting struct {
	key   string
	value any
}

// SettingsService maps configuration keys onto domain.AppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil; provider validation is then skipped.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings with defaults applied.
// Unknown provider or backend names fall back to the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - adapters know their endpoint
			APIKey:   s.apiKey(keyEmbedAPIKey, embedProvider),
			Timeout:  s.getDuration(keyEmbedTimeout, defaults.Embedding.Timeout),
		},
		LLM: domain.LLMSettings{
			Provider: llmProvider,
			Model:    s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.apiKey(keyLLMAPIKey, llmProvider),
		},
		Generation: domain.GenerationSettings{
			Temperature:       s.getFloat(keyTemperature, defaults.Generation.Temperature),
			MaxTokens:         s.getInt(keyMaxTokens, defaults.Generation.MaxTokens),
			Timeout:           s.getDuration(keyGenTimeout, defaults.Generation.Timeout),
			MaxRetries:        s.getIntAllowZero(keyMaxRetries, defaults.Generation.MaxRetries),
			RequestsPerSecond: s.getFloat(keyRateLimit, defaults.Generation.RequestsPerSecond),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Chunking.ChunkSize),
			Overlap:   s.getIntAllowZero(keyOverlap, defaults.Chunking.Overlap),
			Measure:   s.getString(keyMeasure, defaults.Chunking.Measure),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:            s.getInt(keyTopK, defaults.Retrieval.TopK),
			QuizTopK:        s.getInt(keyQuizTopK, defaults.Retrieval.QuizTopK),
			SummaryTopK:     s.getInt(keySummaryTopK, defaults.Retrieval.SummaryTopK),
			MaxContextChars: s.getInt(keyMaxContextChars, defaults.Retrieval.MaxContextChars),
			MinScore:        s.getFloat(keyMinScore, defaults.Retrieval.MinScore),
		},
		Storage: domain.StorageSettings{
			Backend:      s.getBackend(defaults.Storage.Backend),
			DataDir:      s.getString(keyDataDir, defaults.Storage.DataDir),
			InboxDir:     s.getString(keyInboxDir, defaults.Storage.InboxDir),
			RemoveSource: s.getBool(keyRemoveSource, defaults.Storage.RemoveSource),
		},
	}

	return settings, nil
}

// Save persists application settings.
// API keys are only written when set, so a saved file never loses a key
// that came from elsewhere.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []setting{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedTimeout, settings.Embedding.Timeout.String()},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyTemperature, settings.Generation.Temperature},
		{keyMaxTokens, settings.Generation.MaxTokens},
		{keyGenTimeout, settings.Generation.Timeout.String()},
		{keyMaxRetries, settings.Generation.MaxRetries},
		{keyRateLimit, settings.Generation.RequestsPerSecond},
		{keyChunkSize, settings.Chunking.ChunkSize},
		{keyOverlap, settings.Chunking.Overlap},
		{keyMeasure, settings.Chunking.Measure},
		{keyTopK, settings.Retrieval.TopK},
		{keyQuizTopK, settings.Retrieval.QuizTopK},
		{keySummaryTopK, settings.Retrieval.SummaryTopK},
		{keyMaxContextChars, settings.Retrieval.MaxContextChars},
		{keyMinScore, settings.Retrieval.MinScore},
		{keyBackend, string(settings.Storage.Backend)},
		{keyDataDir, settings.Storage.DataDir},
		{keyInboxDir, settings.Storage.InboxDir},
		{keyRemoveSource, settings.Storage.RemoveSource},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, setting{keyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		values = append(values, setting{keyLLMAPIKey, settings.LLM.APIKey})
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// An empty model selects the provider's default model.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" && settings.Embedding.Provider == provider {
		apiKey = settings.Embedding.APIKey
	}
	if apiKey == "" {
		apiKey = s.configStore.GetString(provider.String() + providerKeySuffix)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	if settings.Embedding.Provider != provider {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.Provider = provider
	settings.Embedding.Model = orDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
// An empty model selects the provider's default model.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	if apiKey == "" && settings.LLM.Provider == provider {
		apiKey = settings.LLM.APIKey
	}
	if apiKey == "" {
		apiKey = s.configStore.GetString(provider.String() + providerKeySuffix)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	if settings.LLM.Provider != provider {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.Provider = provider
	settings.LLM.Model = orDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that current settings can be used for ingestion and retrieval.
// A missing LLM is not an error: generation commands report it themselves.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero is getInt for keys where zero is a meaningful value.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration accepts duration strings ("45s", "2m") and plain numbers of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal
	}

	var d time.Duration
	switch v := val.(type) {
	case string:
		v = strings.TrimSpace(v)
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			d = time.Duration(secs * float64(time.Second))
			break
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return defaultVal
		}
		d = parsed
	default:
		d = time.Duration(s.configStore.GetFloat(key) * float64(time.Second))
	}

	if d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(strings.ToLower(val))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	val := s.configStore.GetString(keyBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StorageBackend(strings.ToLower(val))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// apiKey reads the section key, falling back to the provider-scoped key
// (for example "openai.api_key", which OPENAI_API_KEY maps onto).
func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	if provider == "" {
		return ""
	}
	return s.configStore.GetString(provider.String() + providerKeySuffix)
}

func orDefault(val, defaultVal string) string {
	if val == "" {
		return defaultVal
	}
	return val
}
