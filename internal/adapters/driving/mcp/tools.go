package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	Path     string `json:"path" jsonschema:"absolute path of the file to ingest (pdf, txt, docx)"`
	Filename string `json:"filename,omitempty" jsonschema:"display name; defaults to the base name of path"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct{}

// DocumentOutput describes one indexed document.
type DocumentOutput struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type,omitempty"`
	IngestedAt string `json:"ingested_at,omitempty"`
	ChunkCount int    `json:"chunk_count"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DeleteDocumentInput is the input schema for the delete_document tool.
type DeleteDocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"id returned by ingest or list_documents"`
}

// DeleteDocumentOutput is the output schema for the delete_document tool.
type DeleteDocumentOutput struct {
	Deleted bool `json:"deleted"`
}

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query      string `json:"query" jsonschema:"text to find similar passages for"`
	K          int    `json:"k,omitempty" jsonschema:"maximum number of chunks (default from settings)"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict the search to one document"`
}

// ChunkOutput is a single retrieved chunk.
type ChunkOutput struct {
	DocumentID string  `json:"document_id"`
	ChunkID    string  `json:"chunk_id"`
	Filename   string  `json:"filename"`
	Position   int     `json:"position"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"question about the study material"`
	DocumentID string `json:"document_id,omitempty" jsonschema:"restrict the context to one document"`
}

// QuizInput is the input schema for the quiz tool.
type QuizInput struct {
	Topic        string `json:"topic,omitempty" jsonschema:"topic to quiz on; empty covers the main concepts"`
	NumQuestions int    `json:"num_questions,omitempty" jsonschema:"number of questions (default 5, max 20)"`
	DocumentID   string `json:"document_id,omitempty" jsonschema:"restrict the material to one document"`
}

// SummarizeInput is the input schema for the summarize tool.
type SummarizeInput struct {
	DocumentID string `json:"document_id,omitempty" jsonschema:"document to summarise"`
	Topic      string `json:"topic,omitempty" jsonschema:"topic to focus on"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Ingest a local PDF, text or Word file into the study index",
	}, s.handleIngest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List all indexed documents",
	}, s.handleListDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Remove a document and all of its chunks from the index",
	}, s.handleDeleteDocument)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the passages most similar to a query",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed study material, with sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "quiz",
		Description: "Generate a multiple-choice quiz from the indexed study material",
	}, s.handleQuiz)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "summarize",
		Description: "Summarise a document, a topic, or both",
	}, s.handleSummarize)
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, domain.IngestResult, error) {
	result, err := s.ports.Ingestion.Ingest(ctx, input.Path, input.Filename)
	if err != nil {
		return nil, domain.IngestResult{}, err
	}
	return nil, result, nil
}

func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.ports.Ingestion.ListDocuments(ctx)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}

	output := ListDocumentsOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(docs[i])
	}
	return nil, output, nil
}

func (s *Server) handleDeleteDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteDocumentInput,
) (*mcp.CallToolResult, DeleteDocumentOutput, error) {
	deleted, err := s.ports.Ingestion.DeleteDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, DeleteDocumentOutput{}, err
	}
	return nil, DeleteDocumentOutput{Deleted: deleted}, nil
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	chunks, err := s.ports.Retrieval.Retrieve(ctx, input.Query, input.K, input.DocumentID)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Chunks: make([]ChunkOutput, len(chunks)),
		Count:  len(chunks),
	}
	for i := range chunks {
		c := chunks[i].Chunk
		output.Chunks[i] = ChunkOutput{
			DocumentID: c.DocumentID,
			ChunkID:    c.ID,
			Filename:   c.Filename,
			Position:   c.Position,
			Score:      chunks[i].Score,
			Content:    c.Content,
		}
	}
	return nil, output, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, domain.Answer, error) {
	if s.ports.Query == nil {
		return nil, domain.Answer{}, domain.ErrLLMUnavailable
	}
	answer, err := s.ports.Query.Ask(ctx, input.Question, input.DocumentID)
	if err != nil {
		return nil, domain.Answer{}, err
	}
	if answer.Sources == nil {
		answer.Sources = []domain.Source{}
	}
	return nil, *answer, nil
}

func (s *Server) handleQuiz(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuizInput,
) (*mcp.CallToolResult, domain.Quiz, error) {
	if s.ports.Query == nil {
		return nil, domain.Quiz{}, domain.ErrLLMUnavailable
	}
	quiz, err := s.ports.Query.GenerateQuiz(ctx, input.Topic, input.NumQuestions, input.DocumentID)
	if err != nil {
		return nil, domain.Quiz{}, err
	}
	return nil, *quiz, nil
}

func (s *Server) handleSummarize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeInput,
) (*mcp.CallToolResult, domain.Summary, error) {
	if s.ports.Query == nil {
		return nil, domain.Summary{}, domain.ErrLLMUnavailable
	}
	summary, err := s.ports.Query.Summarize(ctx, input.DocumentID, input.Topic)
	if err != nil {
		return nil, domain.Summary{}, err
	}
	return nil, *summary, nil
}

func documentOutput(d domain.DocumentInfo) DocumentOutput {
	out := DocumentOutput{
		DocumentID: d.ID,
		Filename:   d.Filename,
		FileType:   d.FileType,
		ChunkCount: d.ChunkCount,
	}
	if !d.IngestedAt.IsZero() {
		out.IngestedAt = d.IngestedAt.Format(time.RFC3339)
	}
	return out
}
