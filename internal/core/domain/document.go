package domain

import "time"

// Chunk metadata keys stamped by the ingestion pipeline.
// Document attributes live here because there is no separate document table:
// a document exists exactly as long as at least one of its chunks does.
const (
	MetaSource     = "source"
	MetaFileType   = "file_type"
	MetaIngestedAt = "ingested_at"
	MetaSection    = "section"
)

// Document represents an ingested file.
// Documents are immutable; re-ingesting a changed file creates a new Document.
type Document struct {
	// ID is the opaque identifier generated at ingestion time.
	// It is never reused and never derived from the filename.
	ID string

	// Filename is the original name of the uploaded file.
	Filename string

	// FileType is the lower-case extension without the leading dot (e.g. "pdf").
	FileType string

	// SourcePath is where the file was read from during ingestion.
	SourcePath string

	// IngestedAt is when the document was committed to the store.
	IngestedAt time.Time
}

// DocumentInfo is the listing view of a document, derived from chunk metadata.
type DocumentInfo struct {
	ID         string    `json:"document_id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type,omitempty"`
	IngestedAt time.Time `json:"ingested_at,omitempty"`
	ChunkCount int       `json:"chunk_count"`
}

// Section is a page or block of text as produced by a format loader.
type Section struct {
	// Index is the 1-based position of the section within the file.
	Index int

	// Text is the raw extracted text.
	Text string
}

// Chunk represents a contiguous span of a document's text.
// Every chunk belongs to exactly one document and is never mutated after ingestion.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Filename duplicates the document filename for direct display.
	Filename string

	// Content is the raw text of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs (see Meta* keys).
	Metadata map[string]any
}

// MetaString returns a string metadata value, or "" when absent.
func (c Chunk) MetaString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	s, _ := c.Metadata[key].(string)
	return s
}

// ScoredChunk is a chunk returned by similarity search.
type ScoredChunk struct {
	Chunk Chunk

	// Score is the cosine similarity to the query.
	Score float64
}

// IngestResult is returned to callers after a successful ingestion.
type IngestResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkCount int    `json:"chunk_count"`
}
