package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// mockLoader returns fixed sections for any path.
type mockLoader struct {
	exts     []string
	sections []domain.Section
	err      error
}

func (m *mockLoader) Extensions() []string { return m.exts }

func (m *mockLoader) Load(_ context.Context, _ string) ([]domain.Section, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sections, nil
}

// mockDocumentStore records calls and serves canned search results.
type mockDocumentStore struct {
	mu sync.Mutex

	added     [][]domain.Chunk
	addErr    error
	hits      []domain.ScoredChunk
	searchErr error
	deleted   []string
	docs      map[string]bool

	lastQuery string
	lastK     int
	lastDocID string
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{docs: make(map[string]bool)}
}

func (m *mockDocumentStore) Add(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.added = append(m.added, chunks)
	for _, c := range chunks {
		m.docs[c.DocumentID] = true
	}
	return nil
}

func (m *mockDocumentStore) Search(_ context.Context, query string, k int, documentID string) ([]domain.ScoredChunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery, m.lastK, m.lastDocID = query, k, documentID
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *mockDocumentStore) Delete(_ context.Context, documentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, documentID)
	existed := m.docs[documentID]
	delete(m.docs, documentID)
	return existed, nil
}

func (m *mockDocumentStore) ListDocuments(_ context.Context) ([]domain.DocumentInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]domain.DocumentInfo, 0, len(m.docs))
	for id := range m.docs {
		infos = append(infos, domain.DocumentInfo{ID: id})
	}
	return infos, nil
}

func (m *mockDocumentStore) Close() error { return nil }

// mockRetriever serves canned chunks to the query engine.
type mockRetriever struct {
	chunks []domain.ScoredChunk
	err    error

	calls     int
	lastQuery string
	lastK     int
	lastDocID string
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, k int, documentID string) ([]domain.ScoredChunk, error) {
	m.calls++
	m.lastQuery, m.lastK, m.lastDocID = query, k, documentID
	if m.err != nil {
		return nil, m.err
	}
	if k > 0 && len(m.chunks) > k {
		return m.chunks[:k], nil
	}
	return m.chunks, nil
}

// mockLLMService records prompts and returns a canned response.
type mockLLMService struct {
	response string
	err      error

	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }

func (m *mockLLMService) Ping(_ context.Context) error { return nil }

func (m *mockLLMService) Close() error { return nil }

// mockPromptStore serves custom templates.
type mockPromptStore struct {
	templates map[string]string
	err       error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if t, ok := m.templates[name]; ok {
		return t, nil
	}
	t, _ := driven.DefaultPrompt(name)
	return t, nil
}

func (m *mockPromptStore) Reload() {}

// mockMetrics counts recorded outcomes.
type mockMetrics struct {
	mu        sync.Mutex
	ingested  map[string]int
	chunks    int
	failures  map[string]int
	queries   map[string]int
	durations []time.Duration
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{
		ingested: make(map[string]int),
		failures: make(map[string]int),
		queries:  make(map[string]int),
	}
}

func (m *mockMetrics) DocumentIngested(fileType string, chunks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingested[fileType]++
	m.chunks += chunks
}

func (m *mockMetrics) IngestFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[kind]++
}

func (m *mockMetrics) QueryCompleted(operation, outcome string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[operation+"/"+outcome]++
	m.durations = append(m.durations, elapsed)
}

// mockAIValidator records validation calls.
type mockAIValidator struct {
	embeddingErr error
	llmErr       error

	embedding *domain.EmbeddingSettings
	llm       *domain.LLMSettings
}

func (m *mockAIValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	m.embedding = cfg
	return m.embeddingErr
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llm = cfg
	return m.llmErr
}

// scored builds a retrieval hit.
func scored(id, docID, filename, content string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{ID: id, DocumentID: docID, Filename: filename, Content: content},
		Score: score,
	}
}
