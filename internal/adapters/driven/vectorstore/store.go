// Package vectorstore implements the document store: an embedding-backed
// vector index over a chunk repository.
package vectorstore

import (
	"context"
	"fmt"
	"strconv"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Index metadata keys recorded on first write.
const (
	metaEmbeddingModel = "embedding_model"
	metaEmbeddingDims  = "embedding_dimensions"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store embeds chunks on write and ranks them by cosine similarity on read.
// Add and Delete are serialised per document ID; Search and ListDocuments take no document locks.
type Store struct {
	repo     driven.ChunkRepository
	embedder driven.EmbeddingService
	locks    *keyedMutex
}

// New creates a document store over repo using embedder for all vectors.
// It fails with domain.ErrEmbeddingMismatch when the index was built with another model.
func New(ctx context.Context, repo driven.ChunkRepository, embedder driven.EmbeddingService) (*Store, error) {
	if repo == nil {
		return nil, fmt.Errorf("%w: chunk repository is required", domain.ErrInvalidConfig)
	}
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	s := &Store{
		repo:     repo,
		embedder: embedder,
		locks:    newKeyedMutex(),
	}

	if err := s.checkModel(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Add embeds the chunks and stores them in one all-or-nothing batch.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	docID := chunks[0].DocumentID
	if docID == "" {
		return fmt.Errorf("%w: %w: chunk without document id", domain.ErrIndexWrite, domain.ErrInvalidInput)
	}
	for _, c := range chunks[1:] {
		if c.DocumentID != docID {
			return fmt.Errorf("%w: %w: batch mixes documents %s and %s",
				domain.ErrIndexWrite, domain.ErrInvalidInput, docID, c.DocumentID)
		}
	}

	unlock := s.locks.Lock(docID)
	defer unlock()

	if err := s.checkModel(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexWrite, err)
	}

	embedded, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexWrite, err)
	}

	if err := s.recordModel(ctx, len(embedded[0].Embedding)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexWrite, err)
	}

	if err := s.repo.Insert(ctx, embedded); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexWrite, err)
	}

	logger.Debug("vectorstore: added %d chunks for document %s", len(embedded), docID)
	return nil
}

// embedChunks returns copies of chunks with embeddings filled in.
// Chunks that already carry a vector of the index dimension keep it.
func (s *Store) embedChunks(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	dims := s.indexDimensions(ctx)

	out := make([]domain.Chunk, len(chunks))
	var texts []string
	var pending []int
	for i, c := range chunks {
		out[i] = c
		if len(c.Embedding) > 0 && (dims == 0 || len(c.Embedding) == dims) {
			continue
		}
		out[i].Embedding = nil
		texts = append(texts, c.Content)
		pending = append(pending, i)
	}

	if len(texts) > 0 {
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding chunks: %w", err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embedding chunks: got %d vectors for %d texts", len(vectors), len(texts))
		}
		for j, idx := range pending {
			out[idx].Embedding = vectors[j]
		}
	}

	want := len(out[0].Embedding)
	for _, c := range out {
		if len(c.Embedding) == 0 || len(c.Embedding) != want {
			return nil, fmt.Errorf("%w: inconsistent vector dimensions in batch", domain.ErrEmbeddingMismatch)
		}
	}
	if dims != 0 && want != dims {
		return nil, fmt.Errorf("%w: index has %d dimensions, model produced %d",
			domain.ErrEmbeddingMismatch, dims, want)
	}
	return out, nil
}

// Search ranks every eligible chunk against the query embedding.
func (s *Store) Search(ctx context.Context, query string, k int, documentID string) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	if err := s.checkModel(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexRead, err)
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %w", domain.ErrIndexRead, err)
	}

	hits := []domain.ScoredChunk{}
	err = s.repo.Scan(ctx, documentID, func(c domain.Chunk) error {
		if len(c.Embedding) != len(queryVec) {
			return fmt.Errorf("%w: chunk %s has %d dimensions, query has %d",
				domain.ErrEmbeddingMismatch, c.ID, len(c.Embedding), len(queryVec))
		}
		hits = append(hits, domain.ScoredChunk{Chunk: c, Score: cosine(queryVec, c.Embedding)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexRead, err)
	}

	return topK(hits, k), nil
}

// Delete removes every chunk of the document.
func (s *Store) Delete(ctx context.Context, documentID string) (bool, error) {
	unlock := s.locks.Lock(documentID)
	defer unlock()

	n, err := s.repo.DeleteDocument(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrIndexRead, err)
	}
	if n > 0 {
		logger.Debug("vectorstore: deleted %d chunks of document %s", n, documentID)
	}
	return n > 0, nil
}

// ListDocuments returns one entry per stored document.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error) {
	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexRead, err)
	}
	if docs == nil {
		docs = []domain.DocumentInfo{}
	}
	return docs, nil
}

// Close closes the underlying repository.
func (s *Store) Close() error {
	return s.repo.Close()
}

// checkModel compares the configured embedding model with the one recorded in the index.
func (s *Store) checkModel(ctx context.Context) error {
	recorded, ok, err := s.repo.GetMeta(ctx, metaEmbeddingModel)
	if err != nil {
		return fmt.Errorf("reading index metadata: %w", err)
	}
	if !ok {
		return nil
	}
	if model := s.embedder.ModelName(); recorded != model {
		return fmt.Errorf("%w: index built with %q, configured model is %q",
			domain.ErrEmbeddingMismatch, recorded, model)
	}

	dims := s.indexDimensions(ctx)
	if want := s.embedder.Dimensions(); dims != 0 && want != 0 && dims != want {
		return fmt.Errorf("%w: index has %d dimensions, configured model has %d",
			domain.ErrEmbeddingMismatch, dims, want)
	}
	return nil
}

// indexDimensions returns the recorded vector size, or 0 before the first write.
func (s *Store) indexDimensions(ctx context.Context) int {
	v, ok, err := s.repo.GetMeta(ctx, metaEmbeddingDims)
	if err != nil || !ok {
		return 0
	}
	dims, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return dims
}

// recordModel stores the model name and dimension on the first write.
func (s *Store) recordModel(ctx context.Context, dims int) error {
	_, ok, err := s.repo.GetMeta(ctx, metaEmbeddingModel)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := s.repo.SetMeta(ctx, metaEmbeddingDims, strconv.Itoa(dims)); err != nil {
		return err
	}
	return s.repo.SetMeta(ctx, metaEmbeddingModel, s.embedder.ModelName())
}
