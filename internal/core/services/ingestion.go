package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService turns files into indexed documents.
// It holds no state between calls; every Ingest gets a fresh document ID.
type IngestionService struct {
	loaders      driven.LoaderRegistry
	chunker      driven.Chunker
	store        driven.DocumentStore
	metrics      driven.Metrics
	removeSource bool
	now          func() time.Time
	remove       func(string) error
}

// IngestionOption configures an IngestionService.
type IngestionOption func(*IngestionService)

// WithIngestionMetrics records ingestion outcomes.
func WithIngestionMetrics(m driven.Metrics) IngestionOption {
	return func(s *IngestionService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithRemoveSource controls whether source files are deleted after a successful commit.
func WithRemoveSource(remove bool) IngestionOption {
	return func(s *IngestionService) {
		s.removeSource = remove
	}
}

// WithClock overrides the ingestion timestamp source.
func WithClock(now func() time.Time) IngestionOption {
	return func(s *IngestionService) {
		s.now = now
	}
}

// NewIngestionService creates a new ingestion service.
// Source files are removed after a successful commit unless disabled.
func NewIngestionService(
	loaders driven.LoaderRegistry,
	chunker driven.Chunker,
	store driven.DocumentStore,
	opts ...IngestionOption,
) *IngestionService {
	s := &IngestionService{
		loaders:      loaders,
		chunker:      chunker,
		store:        store,
		metrics:      nopMetrics{},
		removeSource: true,
		now:          time.Now,
		remove:       os.Remove,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest loads, chunks and commits a file.
// On failure the source file is left in place and the error is returned.
func (s *IngestionService) Ingest(ctx context.Context, filePath, filename string) (domain.IngestResult, error) {
	result, err := s.ingest(ctx, filePath, filename)
	if err != nil {
		s.metrics.IngestFailed(errorKind(err))
		return domain.IngestResult{}, err
	}
	return result, nil
}

func (s *IngestionService) ingest(ctx context.Context, filePath, filename string) (domain.IngestResult, error) {
	logger.Section("Ingest")

	if strings.TrimSpace(filePath) == "" {
		return domain.IngestResult{}, fmt.Errorf("%w: file path is required", domain.ErrInvalidInput)
	}
	if filename == "" {
		filename = filepath.Base(filePath)
	}

	loader, err := s.loaderFor(filePath, filename)
	if err != nil {
		return domain.IngestResult{}, err
	}

	doc := &domain.Document{
		ID:         uuid.New().String(),
		Filename:   filename,
		FileType:   fileType(filename, filePath),
		SourcePath: filePath,
		IngestedAt: s.now().UTC(),
	}
	logger.Debug("Document %s: %s (%s)", doc.ID, doc.Filename, doc.FileType)

	sections, err := loader.Load(ctx, filePath)
	if err != nil {
		if !errors.Is(err, domain.ErrLoad) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %w", domain.ErrLoad, err)
		}
		return domain.IngestResult{}, fmt.Errorf("load %s: %w", filename, err)
	}
	logger.Debug("Loaded %d sections", len(sections))

	chunks, err := s.chunker.Process(ctx, doc, sections)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("chunk %s: %w", filename, err)
	}
	if len(chunks) == 0 {
		return domain.IngestResult{}, fmt.Errorf("%w: no text extracted from %s", domain.ErrLoad, filename)
	}

	stamp(doc, chunks)

	if err := s.store.Add(ctx, chunks); err != nil {
		return domain.IngestResult{}, fmt.Errorf("index %s: %w", filename, err)
	}
	logger.Info("Ingested %s as %s (%d chunks)", doc.Filename, doc.ID, len(chunks))
	s.metrics.DocumentIngested(doc.FileType, len(chunks))

	if s.removeSource {
		if err := s.remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("could not remove source file %s: %v", filePath, err)
		}
	}

	return domain.IngestResult{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		ChunkCount: len(chunks),
	}, nil
}

// loaderFor picks the loader by the display name's extension, falling back
// to the path when the display name has none.
func (s *IngestionService) loaderFor(filePath, filename string) (driven.Loader, error) {
	name := filename
	if filepath.Ext(name) == "" {
		name = filePath
	}
	return s.loaders.ForFile(name)
}

// stamp writes document identity and attributes into every chunk.
func stamp(doc *domain.Document, chunks []domain.Chunk) {
	ingestedAt := doc.IngestedAt.Format(time.RFC3339)
	for i := range chunks {
		chunks[i].DocumentID = doc.ID
		chunks[i].Filename = doc.Filename
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]any, 4)
		}
		chunks[i].Metadata[domain.MetaSource] = doc.SourcePath
		chunks[i].Metadata[domain.MetaFileType] = doc.FileType
		chunks[i].Metadata[domain.MetaIngestedAt] = ingestedAt
	}
}

// fileType returns the lower-case extension without the dot.
func fileType(filename, filePath string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = filepath.Ext(filePath)
	}
	return strings.TrimPrefix(strings.ToLower(ext), ".")
}

// ListDocuments returns all indexed documents.
func (s *IngestionService) ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error) {
	return s.store.ListDocuments(ctx)
}

// DeleteDocument removes a document's chunks. Unknown IDs return false.
func (s *IngestionService) DeleteDocument(ctx context.Context, documentID string) (bool, error) {
	if strings.TrimSpace(documentID) == "" {
		return false, fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}

	removed, err := s.store.Delete(ctx, documentID)
	if err != nil {
		return false, err
	}
	if removed {
		logger.Info("Deleted document %s", documentID)
	}
	return removed, nil
}

// SupportedExtensions returns the extensions a loader is registered for.
func (s *IngestionService) SupportedExtensions() []string {
	return s.loaders.Extensions()
}
