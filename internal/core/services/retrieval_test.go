package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

func hits(n int) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, n)
	for i := range out {
		out[i] = scored(fmt.Sprintf("c%d", i), "doc-1", "a.txt", fmt.Sprintf("chunk %d", i), 1-float64(i)/10)
	}
	return out
}

func TestRetrievalService_DefaultK(t *testing.T) {
	store := newMockDocumentStore()
	store.hits = hits(2)
	svc := NewRetrievalService(store, domain.RetrievalSettings{})

	results, err := svc.Retrieve(context.Background(), "cells", 0, "")

	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, DefaultTopK, store.lastK)
	assert.Equal(t, "cells", store.lastQuery)
}

func TestRetrievalService_ConfiguredK(t *testing.T) {
	store := newMockDocumentStore()
	svc := NewRetrievalService(store, domain.RetrievalSettings{TopK: 7})

	_, err := svc.Retrieve(context.Background(), "cells", -1, "doc-9")

	require.NoError(t, err)
	assert.Equal(t, 7, store.lastK)
	assert.Equal(t, "doc-9", store.lastDocID)
}

func TestRetrievalService_NeverMoreThanK(t *testing.T) {
	store := newMockDocumentStore()
	store.hits = hits(10)
	svc := NewRetrievalService(store, domain.RetrievalSettings{})

	results, err := svc.Retrieve(context.Background(), "cells", 4, "")

	require.NoError(t, err)
	assert.Len(t, results, 4)
	assert.Equal(t, "c0", results[0].Chunk.ID)
}

func TestRetrievalService_SmallCorpus(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("%d chunks", n), func(t *testing.T) {
			store := newMockDocumentStore()
			store.hits = hits(n)
			svc := NewRetrievalService(store, domain.RetrievalSettings{})

			results, err := svc.Retrieve(context.Background(), "cells", 4, "")

			require.NoError(t, err)
			assert.NotNil(t, results)
			assert.Len(t, results, n)
		})
	}
}

func TestRetrievalService_MinScore(t *testing.T) {
	store := newMockDocumentStore()
	store.hits = hits(6) // scores 1.0, 0.9, ... 0.5
	svc := NewRetrievalService(store, domain.RetrievalSettings{MinScore: 0.75})

	results, err := svc.Retrieve(context.Background(), "cells", 10, "")

	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Score, 0.75)
	}
}

func TestRetrievalService_EmptyQuery(t *testing.T) {
	svc := NewRetrievalService(newMockDocumentStore(), domain.RetrievalSettings{})

	_, err := svc.Retrieve(context.Background(), "   ", 4, "")

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestRetrievalService_StoreError(t *testing.T) {
	store := newMockDocumentStore()
	store.searchErr = fmt.Errorf("%w: database locked", domain.ErrIndexRead)
	svc := NewRetrievalService(store, domain.RetrievalSettings{})

	_, err := svc.Retrieve(context.Background(), "cells", 4, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIndexRead))
}
