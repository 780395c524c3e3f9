package driving

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// IngestionService turns files into indexed documents and manages them.
type IngestionService interface {
	// Ingest loads, chunks and indexes a file under a fresh document ID.
	// filename is the display name; its extension selects the loader.
	Ingest(ctx context.Context, filePath, filename string) (domain.IngestResult, error)

	// ListDocuments returns all indexed documents.
	ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error)

	// DeleteDocument removes a document and reports whether it existed.
	DeleteDocument(ctx context.Context, documentID string) (bool, error)

	// SupportedExtensions returns the file extensions that can be ingested.
	SupportedExtensions() []string
}
