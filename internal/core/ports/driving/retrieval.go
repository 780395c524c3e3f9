package driving

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// RetrievalService finds the chunks most relevant to a query.
type RetrievalService interface {
	// Retrieve returns at most k chunks, highest similarity first.
	// k <= 0 selects the configured default. An empty documentID searches everything.
	Retrieve(ctx context.Context, query string, k int, documentID string) ([]domain.ScoredChunk, error)
}
