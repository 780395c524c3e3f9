package driven

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// DocumentStore is the vector index over chunks.
// It owns embedding at write time and similarity scoring at read time.
type DocumentStore interface {
	// Add embeds and persists a batch of chunks belonging to one document.
	// The batch is all-or-nothing; failures wrap domain.ErrIndexWrite.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Search returns at most k chunks most similar to query, highest first.
	// A non-empty documentID restricts the search to that document.
	// Failures wrap domain.ErrIndexRead.
	Search(ctx context.Context, query string, k int, documentID string) ([]domain.ScoredChunk, error)

	// Delete removes every chunk of the document.
	// Reports whether anything was removed.
	Delete(ctx context.Context, documentID string) (bool, error)

	// ListDocuments returns one entry per stored document, in insertion order.
	ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error)

	// Close releases resources.
	Close() error
}

// ChunkRepository persists chunks and index metadata.
// Implementations must be safe for concurrent use.
type ChunkRepository interface {
	// Insert stores the chunks atomically: either all are stored or none.
	Insert(ctx context.Context, chunks []domain.Chunk) error

	// DeleteDocument removes all chunks of a document and returns how many were removed.
	DeleteDocument(ctx context.Context, documentID string) (int, error)

	// Scan calls fn for every chunk in insertion order.
	// A non-empty documentID restricts the scan to that document.
	// Iteration stops at the first error returned by fn.
	Scan(ctx context.Context, documentID string, fn func(domain.Chunk) error) error

	// ListDocuments summarises stored chunks per document, in insertion order.
	ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error)

	// GetMeta returns an index metadata value and whether it exists.
	GetMeta(ctx context.Context, key string) (string, bool, error)

	// SetMeta stores an index metadata value.
	SetMeta(ctx context.Context, key, value string) error

	// Close releases resources.
	Close() error
}
