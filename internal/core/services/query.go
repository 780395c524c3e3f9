package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/core/ports/driving"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// Query engine defaults.
const (
	DefaultQuizQuestions = 5
	DefaultQuizTopK      = 3

	// Generic queries used when the caller gives no topic.
	quizFallbackQuery    = "main concepts and key information"
	summaryFallbackQuery = "summarize the main points and key concepts"
	summaryFallbackFocus = "the main points and key concepts"
	quizFallbackTopic    = "General"

	// contextSeparator joins chunk texts into the prompt context.
	contextSeparator = "\n\n"
)

// groundingRule is sent with every question-answering call, whatever the
// QA template says.
const groundingRule = "Answer only from the context supplied with the question. " +
	"If the context does not contain the answer, say that you don't know. " +
	"Never make up facts that are not in the context."

// QueryService composes retrieval and generation into answers, quizzes
// and summaries.
type QueryService struct {
	retriever  driving.RetrievalService
	llm        driven.LLMService
	prompts    driven.PromptStore
	metrics    driven.Metrics
	generation domain.GenerationSettings
	retrieval  domain.RetrievalSettings
}

// QueryOption configures a QueryService.
type QueryOption func(*QueryService)

// WithPromptStore loads templates from store instead of the built-in defaults.
func WithPromptStore(store driven.PromptStore) QueryOption {
	return func(s *QueryService) {
		s.prompts = store
	}
}

// WithQueryMetrics records query outcomes and latency.
func WithQueryMetrics(m driven.Metrics) QueryOption {
	return func(s *QueryService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewQueryService creates a new query service.
// llm may be nil; every operation then returns domain.ErrLLMUnavailable.
func NewQueryService(
	retriever driving.RetrievalService,
	llm driven.LLMService,
	generation domain.GenerationSettings,
	retrieval domain.RetrievalSettings,
	opts ...QueryOption,
) *QueryService {
	s := &QueryService{
		retriever:  retriever,
		llm:        llm,
		metrics:    nopMetrics{},
		generation: generation,
		retrieval:  retrieval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ask answers a question from the retrieved context.
// With no context it returns the canned insufficient-context answer
// without calling the model.
func (s *QueryService) Ask(ctx context.Context, question, documentID string) (answer *domain.Answer, err error) {
	defer s.observe("ask", time.Now(), &err)
	logger.Section("Ask")

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	chunks, err := s.retriever.Retrieve(ctx, question, s.topK(), documentID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		logger.Debug("No context retrieved, returning insufficient-context answer")
		return &domain.Answer{Text: domain.InsufficientContextAnswer, Sources: []domain.Source{}}, nil
	}

	prompt := s.render(driven.PromptQA, joinContext(chunks), question)
	text, err := s.generate(ctx, prompt, groundingRule)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: domain.SourcesFor(chunks),
	}, nil
}

// GenerateQuiz creates a validated multiple-choice quiz.
func (s *QueryService) GenerateQuiz(
	ctx context.Context, topic string, numQuestions int, documentID string,
) (quiz *domain.Quiz, err error) {
	defer s.observe("quiz", time.Now(), &err)
	logger.Section("Quiz")

	if numQuestions <= 0 {
		numQuestions = DefaultQuizQuestions
	}
	if numQuestions > domain.MaxQuizQuestions {
		return nil, fmt.Errorf("%w: at most %d questions, got %d",
			domain.ErrInvalidInput, domain.MaxQuizQuestions, numQuestions)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	topic = strings.TrimSpace(topic)
	query := s.queryFor(topic, documentID, quizFallbackQuery)

	limit := s.quizTopK()
	chunks, err := s.retriever.Retrieve(ctx, query, limit, documentID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: nothing indexed matches %q", domain.ErrInsufficientContext, query)
	}
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}

	prompt := s.render(driven.PromptQuiz, numQuestions, joinContext(chunks), numQuestions)
	raw, err := s.generate(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	questions, err := parseQuiz(raw, numQuestions)
	if err != nil {
		logger.Debug("Rejected quiz output: %v", err)
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	if topic == "" {
		topic = quizFallbackTopic
	}
	return &domain.Quiz{Topic: topic, Questions: questions}, nil
}

// Summarize summarises a document, a topic, or both.
// Context is capped by the summary chunk ceiling and the character budget.
func (s *QueryService) Summarize(ctx context.Context, documentID, topic string) (summary *domain.Summary, err error) {
	defer s.observe("summarize", time.Now(), &err)
	logger.Section("Summarize")

	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	topic = strings.TrimSpace(topic)
	query := s.queryFor(topic, documentID, summaryFallbackQuery)

	chunks, err := s.retriever.Retrieve(ctx, query, s.summaryTopK(), documentID)
	if err != nil {
		return nil, err
	}
	chunks = fitBudget(chunks, s.retrieval.MaxContextChars)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: nothing indexed matches %q", domain.ErrInsufficientContext, query)
	}

	focus := topic
	if focus == "" {
		focus = summaryFallbackFocus
	}

	prompt := s.render(driven.PromptSummarize, focus, joinContext(chunks))
	text, err := s.generate(ctx, prompt, "")
	if err != nil {
		return nil, err
	}

	return &domain.Summary{
		Text:    strings.TrimSpace(text),
		Topic:   topic,
		Sources: domain.SourcesFor(chunks),
	}, nil
}

// queryFor returns the topic, or the generic query when it is empty.
func (s *QueryService) queryFor(topic, documentID, fallback string) string {
	if topic != "" {
		return topic
	}
	if documentID == "" {
		logger.Debug("No topic or document given, using generic query over the full corpus")
	}
	return fallback
}

// topK is the question-answering limit. retrieval.top_k above
// domain.MaxAskTopK only widens plain retrieval.
func (s *QueryService) topK() int {
	k := s.retrieval.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	return min(k, domain.MaxAskTopK)
}

func (s *QueryService) quizTopK() int {
	k := s.retrieval.QuizTopK
	if k <= 0 {
		k = DefaultQuizTopK
	}
	return min(k, domain.MaxQuizTopK)
}

func (s *QueryService) summaryTopK() int {
	k := s.retrieval.SummaryTopK
	if k <= 0 {
		k = domain.DefaultAppSettings().Retrieval.SummaryTopK
	}
	if k > domain.MaxSummaryTopK {
		k = domain.MaxSummaryTopK
	}
	return k
}

// generate calls the model with the configured generation settings.
func (s *QueryService) generate(ctx context.Context, prompt, system string) (string, error) {
	logger.Debug("Prompt: %d characters", len(prompt))

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		System:      system,
		MaxTokens:   s.generation.MaxTokens,
		Temperature: s.generation.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	return text, nil
}

// render fills a template. A custom template with the wrong placeholders
// falls back to the built-in one.
func (s *QueryService) render(name string, args ...any) string {
	builtin, _ := driven.DefaultPrompt(name)

	template := builtin
	if s.prompts != nil {
		custom, err := s.prompts.Load(name)
		if err != nil {
			logger.Warn("prompt %q unavailable, using built-in: %v", name, err)
		} else {
			template = custom
		}
	}

	prompt := fmt.Sprintf(template, args...)
	if template != builtin && strings.Contains(prompt, "%!") {
		logger.Warn("prompt %q has mismatched placeholders, using built-in", name)
		prompt = fmt.Sprintf(builtin, args...)
	}
	return prompt
}

func (s *QueryService) observe(operation string, start time.Time, err *error) {
	outcome := errorKind(*err)
	s.metrics.QueryCompleted(operation, outcome, time.Since(start))
	logger.Debug("%s finished: %s in %s", operation, outcome, time.Since(start).Round(time.Millisecond))
}

// joinContext concatenates chunk texts separated by blank lines.
func joinContext(chunks []domain.ScoredChunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.Chunk.Content
	}
	return strings.Join(parts, contextSeparator)
}

// fitBudget keeps chunks in order while their joined size stays within
// maxChars characters. Chunks are dropped whole. The first chunk is always kept.
func fitBudget(chunks []domain.ScoredChunk, maxChars int) []domain.ScoredChunk {
	if maxChars <= 0 || len(chunks) == 0 {
		return chunks
	}

	total := 0
	for i, c := range chunks {
		size := len([]rune(c.Chunk.Content))
		if i > 0 {
			size += len(contextSeparator)
		}
		if i > 0 && total+size > maxChars {
			logger.Debug("Context budget reached, dropping %d chunks", len(chunks)-i)
			return chunks[:i]
		}
		total += size
	}
	return chunks
}
