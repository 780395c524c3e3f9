// Package app wires configuration, adapters and core services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/custodia-labs/studyrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/config/env"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/resilience"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/studyrag/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/services"
	"github.com/custodia-labs/studyrag/internal/loaders"
	"github.com/custodia-labs/studyrag/internal/logger"
	"github.com/custodia-labs/studyrag/internal/metrics"
	"github.com/custodia-labs/studyrag/internal/postprocessors"
)

// Options control how the container is built.
type Options struct {
	// ConfigDir holds config.toml and the prompts directory.
	// Empty selects ~/.studyrag.
	ConfigDir string

	// DotenvFiles are read for environment overrides. Nil selects ".env".
	DotenvFiles []string

	// Ephemeral keeps configuration and the index in memory.
	Ephemeral bool

	// Lookup replaces os.LookupEnv when non-nil.
	Lookup func(string) (string, bool)
}

// Container holds every long-lived component of a run.
// Settings always works; the ingestion and query services are nil when
// the providers or the index could not be opened, and CoreErr says why.
type Container struct {
	ConfigDir string
	Config    driven.ConfigStore
	Prompts   driven.PromptStore
	Settings  *services.SettingsService
	Metrics   *metrics.Metrics

	AppSettings *domain.AppSettings
	Warnings    []string

	Providers *ai.Providers
	Store     driven.DocumentStore
	Ingestion *services.IngestionService
	Retrieval *services.RetrievalService
	Query     *services.QueryService
	CoreErr   error
}

// New builds the container. Only configuration failures are returned;
// provider and index failures are recorded in CoreErr.
func New(ctx context.Context, opts Options) (*Container, error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	var base driven.ConfigStore
	if opts.Ephemeral {
		base = memory.NewConfigStore()
	} else {
		store, err := file.NewConfigStore(configDir)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		base = store
	}

	dotenv := opts.DotenvFiles
	if dotenv == nil {
		dotenv = []string{".env"}
	}
	var envOpts []env.Option
	if opts.Lookup != nil {
		envOpts = append(envOpts, env.WithLookup(opts.Lookup))
	}
	cfg, err := env.New(base, dotenv, envOpts...)
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	c := &Container{
		ConfigDir: configDir,
		Config:    cfg,
		Prompts:   prompts,
		Settings:  services.NewSettingsService(cfg, ai.NewConfigValidator(0)),
		Metrics:   metrics.New(),
	}

	settings, err := c.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if settings.Storage.DataDir == "" {
		settings.Storage.DataDir = filepath.Join(configDir, "data")
	}
	if settings.Storage.InboxDir == "" {
		settings.Storage.InboxDir = filepath.Join(configDir, "inbox")
	}
	if opts.Ephemeral {
		settings.Storage.Backend = domain.StorageMemory
	}
	c.AppSettings = settings

	if err := c.openCore(ctx); err != nil {
		logger.Debug("core services unavailable: %v", err)
		c.CoreErr = err
	}
	return c, nil
}

// openCore builds providers, the index and the services that depend on them.
func (c *Container) openCore(ctx context.Context) error {
	s := c.AppSettings
	if err := s.Validate(); err != nil {
		return err
	}

	providers, err := ai.NewProviders(s, resilience.WithRetryHook(c.Metrics.ProviderRetry))
	if err != nil {
		return err
	}
	c.Warnings = append(c.Warnings, providers.Warnings...)

	repo, err := openRepository(s.Storage)
	if err != nil {
		_ = providers.Close()
		return err
	}

	store, err := vectorstore.New(ctx, repo, providers.Embedding)
	if err != nil {
		_ = repo.Close()
		_ = providers.Close()
		return err
	}

	chunker, err := postprocessors.DefaultRegistry().Build("chunker", ChunkerConfig(s.Chunking))
	if err != nil {
		_ = store.Close()
		_ = providers.Close()
		return err
	}

	c.Providers = providers
	c.Store = store
	c.Ingestion = services.NewIngestionService(
		loaders.DefaultRegistry(),
		chunker,
		store,
		services.WithIngestionMetrics(c.Metrics),
		services.WithRemoveSource(s.Storage.RemoveSource),
	)
	c.Retrieval = services.NewRetrievalService(store, s.Retrieval)
	c.Query = services.NewQueryService(
		c.Retrieval,
		providers.LLM,
		s.Generation,
		s.Retrieval,
		services.WithPromptStore(c.Prompts),
		services.WithQueryMetrics(c.Metrics),
	)
	return nil
}

// openRepository selects the chunk repository for the configured backend.
func openRepository(s domain.StorageSettings) (driven.ChunkRepository, error) {
	switch s.Backend {
	case domain.StorageMemory:
		return memory.NewChunkRepository(), nil
	case domain.StorageSQLite, "":
		store, err := sqlite.NewStore(s.DataDir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexRead, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidConfig, s.Backend)
	}
}

// ChunkerConfig converts chunking settings to the builder's generic config.
func ChunkerConfig(s domain.ChunkingSettings) map[string]any {
	cfg := map[string]any{
		"chunk_size": s.ChunkSize,
		"overlap":    s.Overlap,
	}
	if s.Measure != "" {
		cfg["measure"] = s.Measure
	}
	return cfg
}

// MetricsHandler serves the Prometheus exposition of this run.
func (c *Container) MetricsHandler() http.Handler {
	return c.Metrics.Handler()
}

// Close releases the index and the providers.
func (c *Container) Close() error {
	var errs []error
	if c.Store != nil {
		errs = append(errs, c.Store.Close())
	}
	if c.Providers != nil {
		errs = append(errs, c.Providers.Close())
	}
	return errors.Join(errs...)
}
