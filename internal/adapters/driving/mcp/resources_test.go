package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

func TestExtractPromptName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid prompt URI", uri: "studyrag://prompts/qa", expected: "qa"},
		{name: "invalid prefix", uri: "file://prompts/qa", expected: ""},
		{name: "nested path", uri: "studyrag://prompts/qa/extra", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractPromptName(tt.uri))
		})
	}
}

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("empty index returns empty list", func(t *testing.T) {
		server := newTestServer(t, newTestPorts())

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("studyrag://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists documents", func(t *testing.T) {
		ports := newTestPorts()
		ports.Ingestion = &mockIngestionService{documents: []domain.DocumentInfo{
			{ID: "doc-1", Filename: "bio.pdf", FileType: "pdf", ChunkCount: 4},
		}}
		server := newTestServer(t, ports)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("studyrag://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"document_id": "doc-1"`)
		assert.Contains(t, result.Contents[0].Text, `"chunk_count": 4`)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		ports := newTestPorts()
		ports.Ingestion = &mockIngestionService{err: errors.New("database error")}
		server := newTestServer(t, ports)

		_, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("studyrag://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}

func TestServer_handlePromptResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns prompt text", func(t *testing.T) {
		ports := newTestPorts()
		ports.Prompts = &mockPromptStore{prompts: map[string]string{"qa": "Context: %s\nQuestion: %s"}}
		server := newTestServer(t, ports)

		result, err := server.handlePromptResource(ctx, makeReadResourceRequest("studyrag://prompts/qa"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "Context: %s\nQuestion: %s", result.Contents[0].Text)
	})

	t.Run("unknown prompt is not found", func(t *testing.T) {
		ports := newTestPorts()
		ports.Prompts = &mockPromptStore{prompts: map[string]string{}}
		server := newTestServer(t, ports)

		_, err := server.handlePromptResource(ctx, makeReadResourceRequest("studyrag://prompts/other"))

		assert.Error(t, err)
	})

	t.Run("no prompt store is not found", func(t *testing.T) {
		server := newTestServer(t, newTestPorts())

		_, err := server.handlePromptResource(ctx, makeReadResourceRequest("studyrag://prompts/qa"))

		assert.Error(t, err)
	})
}
