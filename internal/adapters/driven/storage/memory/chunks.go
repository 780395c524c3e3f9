package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure ChunkRepository implements the interface.
var _ driven.ChunkRepository = (*ChunkRepository)(nil)

// ChunkRepository is an in-memory implementation of driven.ChunkRepository.
// Chunks are kept in insertion order with a secondary index by document ID;
// both are updated under the same write lock.
type ChunkRepository struct {
	mu     sync.RWMutex
	chunks map[string]domain.Chunk
	order  []string
	byDoc  map[string][]string
	meta   map[string]string
}

// NewChunkRepository creates an empty in-memory chunk repository.
func NewChunkRepository() *ChunkRepository {
	return &ChunkRepository{
		chunks: make(map[string]domain.Chunk),
		byDoc:  make(map[string][]string),
		meta:   make(map[string]string),
	}
}

// Insert stores chunks atomically. A duplicate chunk ID rejects the whole batch.
func (r *ChunkRepository) Insert(_ context.Context, chunks []domain.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		if _, exists := r.chunks[c.ID]; exists || seen[c.ID] {
			return fmt.Errorf("duplicate chunk id %s", c.ID)
		}
		seen[c.ID] = true
	}

	for _, c := range chunks {
		c.Embedding = slices.Clone(c.Embedding)
		c.Metadata = maps.Clone(c.Metadata)
		r.chunks[c.ID] = c
		r.order = append(r.order, c.ID)
		r.byDoc[c.DocumentID] = append(r.byDoc[c.DocumentID], c.ID)
	}
	return nil
}

// DeleteDocument removes all chunks of a document.
func (r *ChunkRepository) DeleteDocument(_ context.Context, documentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids, ok := r.byDoc[documentID]
	if !ok {
		return 0, nil
	}

	for _, id := range ids {
		delete(r.chunks, id)
	}
	delete(r.byDoc, documentID)
	r.order = slices.DeleteFunc(r.order, func(id string) bool {
		_, kept := r.chunks[id]
		return !kept
	})
	return len(ids), nil
}

// Scan calls fn for a snapshot of the matching chunks, in insertion order.
// The lock is not held while fn runs.
func (r *ChunkRepository) Scan(ctx context.Context, documentID string, fn func(domain.Chunk) error) error {
	for _, c := range r.snapshot(documentID) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChunkRepository) snapshot(documentID string) []domain.Chunk {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.order
	if documentID != "" {
		ids = r.byDoc[documentID]
	}

	out := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.chunks[id])
	}
	return out
}

// ListDocuments summarises stored chunks per document, in insertion order.
func (r *ChunkRepository) ListDocuments(_ context.Context) ([]domain.DocumentInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var docs []domain.DocumentInfo
	listed := make(map[string]bool, len(r.byDoc))
	for _, id := range r.order {
		c := r.chunks[id]
		if listed[c.DocumentID] {
			continue
		}
		listed[c.DocumentID] = true

		info := domain.DocumentInfo{
			ID:         c.DocumentID,
			Filename:   c.Filename,
			FileType:   c.MetaString(domain.MetaFileType),
			ChunkCount: len(r.byDoc[c.DocumentID]),
		}
		if ts, err := time.Parse(time.RFC3339Nano, c.MetaString(domain.MetaIngestedAt)); err == nil {
			info.IngestedAt = ts
		}
		docs = append(docs, info)
	}
	return docs, nil
}

// GetMeta returns an index metadata value.
func (r *ChunkRepository) GetMeta(_ context.Context, key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.meta[key]
	return v, ok, nil
}

// SetMeta stores an index metadata value.
func (r *ChunkRepository) SetMeta(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meta[key] = value
	return nil
}

// Close releases resources (no-op for memory repository).
func (r *ChunkRepository) Close() error {
	return nil
}
