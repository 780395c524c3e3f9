package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// DefaultTopK is the number of chunks retrieved when neither the caller
// nor the configuration sets one.
const DefaultTopK = 4

// RetrievalService is a thin layer over DocumentStore.Search that fixes
// the default k and applies the optional similarity floor.
type RetrievalService struct {
	store    driven.DocumentStore
	topK     int
	minScore float64
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(store driven.DocumentStore, settings domain.RetrievalSettings) *RetrievalService {
	topK := settings.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrievalService{
		store:    store,
		topK:     topK,
		minScore: settings.MinScore,
	}
}

// Retrieve returns at most k chunks, highest similarity first.
// No matches is an empty result, never an error.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, k int, documentID string,
) ([]domain.ScoredChunk, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = s.topK
	}

	logger.Debug("Retrieve k=%d document=%q query=%q", k, documentID, query)

	hits, err := s.store.Search(ctx, query, k, documentID)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	results := make([]domain.ScoredChunk, 0, len(hits))
	for _, hit := range hits {
		if len(results) == k {
			break
		}
		if s.minScore > 0 && hit.Score < s.minScore {
			continue
		}
		results = append(results, hit)
	}

	logger.Debug("Retrieved %d chunks", len(results))
	return results, nil
}
