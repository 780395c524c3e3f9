// Package mcp provides an MCP (Model Context Protocol) server adapter for studyrag.
// It lets AI assistants ingest study material and ask questions about it.
package mcp

import "errors"

var (
	// ErrMissingIngestionService is returned when the ingestion service is not provided.
	ErrMissingIngestionService = errors.New("mcp: ingestion service is required")

	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
)
