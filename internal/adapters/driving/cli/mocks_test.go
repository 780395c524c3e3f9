package cli

import (
	"context"
	"time"

	"github.com/custodia-labs/studyrag/internal/adapters/driving/watch"
	"github.com/custodia-labs/studyrag/internal/core/domain"
)

type mockIngestionService struct {
	documents []domain.DocumentInfo
	failOn    map[string]error
	deleted   bool
	err       error

	ingested []string
}

func (m *mockIngestionService) Ingest(_ context.Context, filePath, filename string) (domain.IngestResult, error) {
	if err, ok := m.failOn[filePath]; ok {
		return domain.IngestResult{}, err
	}
	m.ingested = append(m.ingested, filename)
	return domain.IngestResult{DocumentID: "doc-" + filename, Filename: filename, ChunkCount: 3}, nil
}

func (m *mockIngestionService) ListDocuments(context.Context) ([]domain.DocumentInfo, error) {
	return m.documents, m.err
}

func (m *mockIngestionService) DeleteDocument(context.Context, string) (bool, error) {
	return m.deleted, m.err
}

func (m *mockIngestionService) SupportedExtensions() []string {
	return []string{".doc", ".docx", ".pdf", ".txt"}
}

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

type mockQueryService struct {
	answer  *domain.Answer
	quiz    *domain.Quiz
	summary *domain.Summary
	err     error

	lastQuestion string
	lastTopic    string
	lastNum      int
	lastDoc      string
}

func (m *mockQueryService) Ask(_ context.Context, question, documentID string) (*domain.Answer, error) {
	m.lastQuestion = question
	m.lastDoc = documentID
	return m.answer, m.err
}

func (m *mockQueryService) GenerateQuiz(_ context.Context, topic string, n int, documentID string) (*domain.Quiz, error) {
	m.lastTopic = topic
	m.lastNum = n
	m.lastDoc = documentID
	return m.quiz, m.err
}

func (m *mockQueryService) Summarize(_ context.Context, documentID, topic string) (*domain.Summary, error) {
	m.lastDoc = documentID
	m.lastTopic = topic
	return m.summary, m.err
}

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error

	embedding []string
	llm       []string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	m.embedding = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llm = []string{string(provider), model, apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ingestion *mockIngestionService
	retrieval *mockRetrievalService
	query     *mockQueryService
	settings  *mockSettingsService
}

func sampleChunk() domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{
			ID:         "chunk-1",
			DocumentID: "doc-1",
			Filename:   "biology.pdf",
			Position:   0,
			Content:    "Mitochondria are the powerhouse of the cell.",
		},
		Score: 0.87,
	}
}

// setupTestServices installs mock services and resets flags.
// The returned function restores the previous state.
func setupTestServices() func() {
	ts := newTestServices()
	return installTestServices(ts)
}

func newTestServices() *testServices {
	return &testServices{
		ingestion: &mockIngestionService{
			documents: []domain.DocumentInfo{{
				ID:         "doc-1",
				Filename:   "biology.pdf",
				FileType:   "pdf",
				IngestedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
				ChunkCount: 12,
			}},
			deleted: true,
		},
		retrieval: &mockRetrievalService{chunks: []domain.ScoredChunk{sampleChunk()}},
		query: &mockQueryService{
			answer: &domain.Answer{
				Text:    "Mitochondria produce ATP.",
				Sources: domain.SourcesFor([]domain.ScoredChunk{sampleChunk()}),
			},
			quiz: &domain.Quiz{
				Topic: "Cells",
				Questions: []domain.QuizQuestion{{
					Question: "What produces ATP?",
					Options: []domain.QuizOption{
						{Label: "A", Text: "Mitochondria"},
						{Label: "B", Text: "Ribosome"},
						{Label: "C", Text: "Nucleus"},
						{Label: "D", Text: "Golgi apparatus"},
					},
					CorrectAnswer: "A",
				}},
			},
			summary: &domain.Summary{
				Text:  "Cells are the basic unit of life.",
				Topic: "cells",
			},
		},
		settings: &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
}

func installTestServices(ts *testServices) func() {
	prev := Services{
		Ingestion: ingestionService,
		Retrieval: retrievalService,
		Query:     queryService,
		Settings:  settingsService,
		Prompts:   promptStore,
		Metrics:   metricsHandler,
		InboxDir:  inboxDir,
		Close:     closeServices,
	}
	prevBuild := build

	build = nil
	applyServices(&Services{
		Ingestion: ts.ingestion,
		Retrieval: ts.retrieval,
		Query:     ts.query,
		Settings:  ts.settings,
	})

	return func() {
		build = prevBuild
		applyServices(&prev)
		resetFlags()
	}
}

// resetFlags restores flag variables that persist between Execute calls.
func resetFlags() {
	verbose, configDir, ephemeral = false, "", false
	ingestName, ingestJSON = "", false
	documentsJSON = false
	searchLimit, searchDoc, searchJSON = 0, "", false
	askDoc, askJSON = "", false
	quizCount, quizDoc, quizJSON, quizHideAnswers = 5, "", false, false
	summarizeDoc, summarizeJSON = "", false
	providerName, providerModel, providerSkip = "", "", false
	watchDir, watchDebounce, watchScan = "", watch.DefaultDebounce, true
}
