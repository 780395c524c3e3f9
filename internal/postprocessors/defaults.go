package postprocessors

import (
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/postprocessors/chunker"
)

// RegisterDefaults registers all built-in chunkers with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Units per chunk (default: 1000)
//   - overlap (int): Overlapping units between chunks (default: 200)
//   - measure (string): "characters" (default) or "words"
//
// Absent keys keep their defaults; present but invalid values are rejected.
func buildChunker(cfg map[string]any) (driven.Chunker, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if name, ok := cfg["measure"].(string); ok {
		m, err := chunker.ParseMeasure(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, chunker.WithMeasure(m))
	}

	return chunker.New(opts...)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
