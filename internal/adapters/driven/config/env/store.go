// Package env overlays environment variables on another configuration store.
package env

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/studyrag/internal/adapters/driven/config"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// Variables maps environment variable names to configuration keys.
var Variables = map[string]string{
	"OPENAI_API_KEY":              "openai.api_key",
	"ANTHROPIC_API_KEY":           "anthropic.api_key",
	"LLM_MODEL":                   "llm.model",
	"TEMPERATURE":                 "generation.temperature",
	"MAX_TOKENS":                  "generation.max_tokens",
	"STUDYRAG_LLM_PROVIDER":       "llm.provider",
	"STUDYRAG_EMBEDDING_PROVIDER": "embedding.provider",
	"STUDYRAG_EMBEDDING_MODEL":    "embedding.model",
	"STUDYRAG_DATA_DIR":           "storage.data_dir",
	"STUDYRAG_INBOX_DIR":          "storage.inbox_dir",
}

// Store reads mapped variables from the process environment and from
// dotenv files, and falls back to the base store for everything else.
// The process environment wins over dotenv files, which win over the base.
// Writes always go to the base store.
type Store struct {
	mu       sync.RWMutex
	base     driven.ConfigStore
	files    []string
	lookup   func(string) (string, bool)
	override map[string]string
}

// Option configures a Store.
type Option func(*Store)

// WithLookup replaces os.LookupEnv, mainly for tests.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(s *Store) {
		s.lookup = fn
	}
}

// New creates an environment overlay over base. Missing dotenv files are ignored.
func New(base driven.ConfigStore, dotenvFiles []string, opts ...Option) (*Store, error) {
	s := &Store{
		base:   base,
		files:  dotenvFiles,
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.readOverrides(); err != nil {
		return nil, err
	}
	return s, nil
}

// readOverrides rebuilds the override table.
func (s *Store) readOverrides() error {
	fromFiles := make(map[string]string)
	for _, path := range s.files {
		values, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("read %s: %w", path, err)
		}
		for k, v := range values {
			if _, seen := fromFiles[k]; !seen {
				fromFiles[k] = v
			}
		}
	}

	override := make(map[string]string)
	for name, key := range Variables {
		if v, ok := s.lookup(name); ok && v != "" {
			override[key] = v
			continue
		}
		if v, ok := fromFiles[name]; ok && v != "" {
			override[key] = v
		}
	}

	s.mu.Lock()
	s.override = override
	s.mu.Unlock()
	return nil
}

// Overridden returns the configuration keys currently set from the environment.
func (s *Store) Overridden() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.override))
	for k := range s.override {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the environment value for key, or the base value.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	v, ok := s.override[key]
	s.mu.RUnlock()
	if ok {
		return v, true
	}
	return s.base.Get(key)
}

// GetString retrieves a string configuration value.
func (s *Store) GetString(key string) string {
	v, _ := s.Get(key)
	return config.AsString(v)
}

// GetInt retrieves an integer configuration value.
func (s *Store) GetInt(key string) int {
	v, _ := s.Get(key)
	return config.AsInt(v)
}

// GetFloat retrieves a float configuration value.
func (s *Store) GetFloat(key string) float64 {
	v, _ := s.Get(key)
	return config.AsFloat(v)
}

// GetBool retrieves a boolean configuration value.
func (s *Store) GetBool(key string) bool {
	v, _ := s.Get(key)
	return config.AsBool(v)
}

// GetStringSlice retrieves a string slice configuration value.
func (s *Store) GetStringSlice(key string) []string {
	v, _ := s.Get(key)
	return config.AsStringSlice(v)
}

// Set writes to the base store. An environment override of the same key still wins on Get.
func (s *Store) Set(key string, value any) error {
	return s.base.Set(key, value)
}

// Save persists the base store.
func (s *Store) Save() error {
	return s.base.Save()
}

// Load reloads the base store and re-reads the environment.
func (s *Store) Load() error {
	if err := s.base.Load(); err != nil {
		return err
	}
	return s.readOverrides()
}

// Path returns the base store path.
func (s *Store) Path() string {
	return s.base.Path()
}
