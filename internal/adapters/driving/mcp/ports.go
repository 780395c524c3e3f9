package mcp

import (
	"net/http"

	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
)

// Ports aggregates everything the MCP server calls into.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ingestion ingests and manages documents.
	Ingestion driving.IngestionService

	// Retrieval finds relevant chunks.
	Retrieval driving.RetrievalService

	// Query answers questions and builds quizzes and summaries.
	// When nil the generative tools report the LLM as unavailable.
	Query driving.QueryService

	// Prompts exposes the prompt templates as resources. Optional.
	Prompts driven.PromptStore

	// Metrics is mounted on /metrics by RunHTTP. Optional.
	Metrics http.Handler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Ingestion == nil {
		return ErrMissingIngestionService
	}
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
