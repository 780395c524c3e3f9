package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/postprocessors/chunker"
)

// registryMockChunker is a simple mock for testing registry functionality.
type registryMockChunker struct {
	name string
}

func (m *registryMockChunker) Name() string               { return m.name }
func (m *registryMockChunker) Split(text string) []string { return []string{text} }
func (m *registryMockChunker) Process(_ context.Context, _ *domain.Document, _ []domain.Section) ([]domain.Chunk, error) {
	return nil, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry returned nil")
	}
	if len(r.builders) != 0 {
		t.Errorf("expected empty builders, got %d", len(r.builders))
	}
}

func TestRegistry_Build_Success(t *testing.T) {
	r := NewRegistry()

	r.Register("test", func(cfg map[string]any) (driven.Chunker, error) {
		name := "default"
		if n, ok := cfg["name"].(string); ok {
			name = n
		}
		return &registryMockChunker{name: name}, nil
	})

	c, err := r.Build("test", map[string]any{"name": "custom"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if c.Name() != "custom" {
		t.Errorf("expected name 'custom', got %q", c.Name())
	}
}

func TestRegistry_Build_Unknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("unknown", nil)
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	if len(r.Names()) != 0 {
		t.Errorf("expected no names, got %v", r.Names())
	}

	r.Register("beta", func(_ map[string]any) (driven.Chunker, error) {
		return &registryMockChunker{name: "beta"}, nil
	})
	r.Register("alpha", func(_ map[string]any) (driven.Chunker, error) {
		return &registryMockChunker{name: "alpha"}, nil
	})

	names := r.Names()
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("expected sorted [alpha beta], got %v", names)
	}
	if !r.Has("alpha") || r.Has("gamma") {
		t.Error("Has does not reflect registrations")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	if !r.Has("chunker") {
		t.Error("expected 'chunker' to be registered")
	}
}

func TestBuildChunker_WithConfig(t *testing.T) {
	c, err := DefaultRegistry().Build("chunker", map[string]any{
		"chunk_size": int64(500),
		"overlap":    float64(100),
		"measure":    "words",
	})
	if err != nil {
		t.Fatalf("Build chunker failed: %v", err)
	}

	p, ok := c.(*chunker.Processor)
	if !ok {
		t.Fatalf("expected *chunker.Processor, got %T", c)
	}
	if p.ChunkSize() != 500 || p.Overlap() != 100 {
		t.Errorf("expected 500/100, got %d/%d", p.ChunkSize(), p.Overlap())
	}
}

func TestBuildChunker_WithNilConfig(t *testing.T) {
	c, err := DefaultRegistry().Build("chunker", nil)
	if err != nil {
		t.Fatalf("Build chunker with nil config failed: %v", err)
	}

	p := c.(*chunker.Processor)
	if p.ChunkSize() != chunker.DefaultChunkSize || p.Overlap() != chunker.DefaultChunkOverlap {
		t.Errorf("expected defaults, got %d/%d", p.ChunkSize(), p.Overlap())
	}
}

func TestBuildChunker_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  map[string]any
	}{
		{"overlap not below size", map[string]any{"chunk_size": 100, "overlap": 100}},
		{"negative overlap", map[string]any{"overlap": -5}},
		{"unknown measure", map[string]any{"measure": "sentences"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultRegistry().Build("chunker", tt.cfg)
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		key      string
		expected int
		found    bool
	}{
		{"int value", map[string]any{"size": 100}, "size", 100, true},
		{"int64 value", map[string]any{"size": int64(200)}, "size", 200, true},
		{"float64 value", map[string]any{"size": float64(300)}, "size", 300, true},
		{"zero value", map[string]any{"size": 0}, "size", 0, true},
		{"string value", map[string]any{"size": "400"}, "size", 0, false},
		{"missing key", map[string]any{"other": 100}, "size", 0, false},
		{"nil config", nil, "size", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, found := getIntFromConfig(tt.cfg, tt.key)
			if result != tt.expected || found != tt.found {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.expected, tt.found, result, found)
			}
		})
	}
}
