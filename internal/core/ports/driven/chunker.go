package driven

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// Chunker turns loaded sections into chunks.
type Chunker interface {
	// Name returns the chunker name for logging and configuration.
	Name() string

	// Split divides text into overlapping spans. Empty text yields no spans.
	Split(text string) []string

	// Process splits every section and returns chunks with sequential
	// positions, fresh IDs and the section index in metadata.
	// Document fields are not stamped here.
	Process(ctx context.Context, doc *domain.Document, sections []domain.Section) ([]domain.Chunk, error)
}
