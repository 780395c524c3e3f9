package mcp

import (
	"context"
	"fmt"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	result    domain.IngestResult
	documents []domain.DocumentInfo
	deleted   bool
	err       error

	ingestedPath string
	ingestedName string
	deletedID    string
}

func (m *mockIngestionService) Ingest(_ context.Context, filePath, filename string) (domain.IngestResult, error) {
	m.ingestedPath = filePath
	m.ingestedName = filename
	return m.result, m.err
}

func (m *mockIngestionService) ListDocuments(_ context.Context) ([]domain.DocumentInfo, error) {
	return m.documents, m.err
}

func (m *mockIngestionService) DeleteDocument(_ context.Context, documentID string) (bool, error) {
	m.deletedID = documentID
	return m.deleted, m.err
}

func (m *mockIngestionService) SupportedExtensions() []string {
	return []string{".docx", ".pdf", ".txt"}
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	chunks []domain.ScoredChunk
	err    error

	lastK   int
	lastDoc string
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, k int, documentID string) ([]domain.ScoredChunk, error) {
	m.lastK = k
	m.lastDoc = documentID
	return m.chunks, m.err
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	answer  *domain.Answer
	quiz    *domain.Quiz
	summary *domain.Summary
	err     error

	lastNum int
}

func (m *mockQueryService) Ask(_ context.Context, _, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockQueryService) GenerateQuiz(_ context.Context, _ string, n int, _ string) (*domain.Quiz, error) {
	m.lastNum = n
	return m.quiz, m.err
}

func (m *mockQueryService) Summarize(_ context.Context, _, _ string) (*domain.Summary, error) {
	return m.summary, m.err
}

// mockPromptStore is a mock implementation of driven.PromptStore.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", fmt.Errorf("%w: prompt %q", domain.ErrNotFound, name)
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

func newTestPorts() *Ports {
	return &Ports{
		Ingestion: &mockIngestionService{},
		Retrieval: &mockRetrievalService{},
	}
}
