package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// Callers distinguish them with errors.Is; adapters wrap them with context.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a configuration that cannot be used,
	// reported when a component is constructed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// Ingestion Errors.

	// ErrUnsupportedFormat indicates no loader handles the file extension.
	// It is returned before the store is touched.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrLoad indicates a loader failed on a file it claims to support.
	ErrLoad = errors.New("failed to load document")

	// Index Errors.

	// ErrIndexWrite indicates embedding or persistence failed while adding a batch.
	// No chunk of the batch remains in the store.
	ErrIndexWrite = errors.New("index write failed")

	// ErrIndexRead indicates a search, list or delete backend failure.
	ErrIndexRead = errors.New("index read failed")

	// ErrEmbeddingMismatch indicates the index was built with a different
	// embedding model or dimension than the one configured.
	ErrEmbeddingMismatch = errors.New("embedding model does not match index")

	// Generation Errors.

	// ErrGeneration indicates the generative model call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrMalformedGeneration indicates the model returned output that fails
	// structural validation.
	ErrMalformedGeneration = errors.New("malformed generation")

	// ErrInsufficientContext indicates retrieval produced no usable context.
	ErrInsufficientContext = errors.New("insufficient context")

	// Service Availability Errors.

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// MalformedGenerationError carries the reason structured output was rejected
// together with the raw model output for diagnosis.
type MalformedGenerationError struct {
	Reason string
	Raw    string
}

// Error implements error.
func (e *MalformedGenerationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedGeneration, e.Reason)
}

// Is reports whether target is ErrMalformedGeneration.
func (e *MalformedGenerationError) Is(target error) bool {
	return target == ErrMalformedGeneration
}
