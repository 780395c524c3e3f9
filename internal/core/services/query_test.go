package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

func newTestQuery(retriever *mockRetriever, llm *mockLLMService, opts ...QueryOption) *QueryService {
	defaults := domain.DefaultAppSettings()
	var svc driven.LLMService
	if llm != nil {
		svc = llm
	}
	return NewQueryService(retriever, svc, defaults.Generation, defaults.Retrieval, opts...)
}

func biologyChunks() []domain.ScoredChunk {
	return []domain.ScoredChunk{
		scored("c1", "doc-1", "biology.pdf", "Mitochondria produce ATP for the cell.", 0.92),
		scored("c2", "doc-1", "biology.pdf", "Ribosomes synthesise proteins.", 0.81),
		scored("c3", "doc-2", "notes.txt", "Photosynthesis happens in chloroplasts.", 0.64),
	}
}

func quizJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"question": "Question %d?", "options": ["w", "x", "y", "z"], "correct_answer": "A"}`, i+1)
	}
	return "[" + strings.Join(items, ",") + "]"
}

// Ask

func TestQueryService_Ask(t *testing.T) {
	retriever := &mockRetriever{chunks: biologyChunks()}
	llm := &mockLLMService{response: "  Mitochondria produce ATP.  "}
	metrics := newMockMetrics()
	svc := newTestQuery(retriever, llm, WithQueryMetrics(metrics))

	answer, err := svc.Ask(context.Background(), "What makes ATP?", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "Mitochondria produce ATP.", answer.Text)
	require.Len(t, answer.Sources, 3)
	assert.Equal(t, "biology.pdf", answer.Sources[0].Filename)
	assert.Equal(t, "notes.txt", answer.Sources[2].Filename)

	assert.Equal(t, DefaultTopK, retriever.lastK)
	assert.Equal(t, "doc-1", retriever.lastDocID)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "Mitochondria produce ATP for the cell.\n\nRibosomes synthesise proteins.")
	assert.Contains(t, prompt, "Question: What makes ATP?")
	assert.Equal(t, groundingRule, llm.opts[0].System)
	assert.InDelta(t, 0.7, llm.opts[0].Temperature, 1e-9)
	assert.Equal(t, 1000, llm.opts[0].MaxTokens)

	assert.Equal(t, 1, metrics.queries["ask/ok"])
}

func TestQueryService_Ask_NoContext(t *testing.T) {
	retriever := &mockRetriever{}
	llm := &mockLLMService{response: "fabricated"}
	svc := newTestQuery(retriever, llm)

	answer, err := svc.Ask(context.Background(), "Who won the 1998 World Cup?", "")

	require.NoError(t, err)
	assert.Equal(t, domain.InsufficientContextAnswer, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.NotNil(t, answer.Sources)
	assert.Empty(t, llm.prompts, "model must not be called without context")
}

func TestQueryService_Ask_GroundingRuleWithCustomTemplate(t *testing.T) {
	prompts := &mockPromptStore{templates: map[string]string{
		driven.PromptQA: "Be brief.\n%s\nQ: %s",
	}}
	llm := &mockLLMService{response: "ATP"}
	svc := newTestQuery(&mockRetriever{chunks: biologyChunks()}, llm, WithPromptStore(prompts))

	_, err := svc.Ask(context.Background(), "What makes ATP?", "")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(llm.prompts[0], "Be brief.\n"))
	assert.Contains(t, llm.prompts[0], "Q: What makes ATP?")
	assert.Equal(t, groundingRule, llm.opts[0].System)
}

func TestQueryService_Ask_MismatchedTemplateFallsBack(t *testing.T) {
	prompts := &mockPromptStore{templates: map[string]string{
		driven.PromptQA: "Only one placeholder: %s",
	}}
	llm := &mockLLMService{response: "ATP"}
	svc := newTestQuery(&mockRetriever{chunks: biologyChunks()}, llm, WithPromptStore(prompts))

	_, err := svc.Ask(context.Background(), "What makes ATP?", "")

	require.NoError(t, err)
	assert.NotContains(t, llm.prompts[0], "%!")
	assert.Contains(t, llm.prompts[0], "Question: What makes ATP?")
}

func TestQueryService_Ask_PromptStoreError(t *testing.T) {
	prompts := &mockPromptStore{err: errors.New("permission denied")}
	llm := &mockLLMService{response: "ATP"}
	svc := newTestQuery(&mockRetriever{chunks: biologyChunks()}, llm, WithPromptStore(prompts))

	_, err := svc.Ask(context.Background(), "What makes ATP?", "")

	require.NoError(t, err)
	assert.Contains(t, llm.prompts[0], "Question: What makes ATP?")
}

func TestQueryService_Ask_Errors(t *testing.T) {
	t.Run("empty question", func(t *testing.T) {
		svc := newTestQuery(&mockRetriever{}, &mockLLMService{})
		_, err := svc.Ask(context.Background(), "  ", "")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})

	t.Run("no llm", func(t *testing.T) {
		svc := newTestQuery(&mockRetriever{chunks: biologyChunks()}, nil)
		_, err := svc.Ask(context.Background(), "What?", "")
		assert.True(t, errors.Is(err, domain.ErrLLMUnavailable))
	})

	t.Run("generation failure", func(t *testing.T) {
		metrics := newMockMetrics()
		llm := &mockLLMService{err: errors.New("status 500")}
		svc := newTestQuery(&mockRetriever{chunks: biologyChunks()}, llm, WithQueryMetrics(metrics))

		_, err := svc.Ask(context.Background(), "What?", "")

		assert.True(t, errors.Is(err, domain.ErrGeneration))
		assert.Contains(t, err.Error(), "status 500")
		assert.Equal(t, 1, metrics.queries["ask/generation"])
	})

	t.Run("retrieval failure", func(t *testing.T) {
		retriever := &mockRetriever{err: fmt.Errorf("%w: locked", domain.ErrIndexRead)}
		svc := newTestQuery(retriever, &mockLLMService{})
		_, err := svc.Ask(context.Background(), "What?", "")
		assert.True(t, errors.Is(err, domain.ErrIndexRead))
	})
}

// GenerateQuiz

func TestQueryService_GenerateQuiz(t *testing.T) {
	retriever := &mockRetriever{chunks: biologyChunks()}
	llm := &mockLLMService{response: "```json\n" + quizJSON(5) + "\n```"}
	svc := newTestQuery(retriever, llm)

	quiz, err := svc.GenerateQuiz(context.Background(), "cell biology", 0, "doc-1")

	require.NoError(t, err)
	assert.Equal(t, "cell biology", quiz.Topic)
	require.Len(t, quiz.Questions, DefaultQuizQuestions)
	for _, q := range quiz.Questions {
		assert.Len(t, q.Options, 4)
		assert.Contains(t, domain.QuizOptionLabels, q.CorrectAnswer)
	}

	assert.Equal(t, "cell biology", retriever.lastQuery)
	assert.Equal(t, DefaultQuizTopK, retriever.lastK)
	assert.Equal(t, "doc-1", retriever.lastDocID)

	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "generate 5 multiple-choice questions")
	assert.Contains(t, prompt, "exactly 5 objects")
	assert.Contains(t, prompt, "Photosynthesis happens in chloroplasts.")
}

func TestQueryService_GenerateQuiz_UsesAtMostThreeChunks(t *testing.T) {
	chunks := append(biologyChunks(), scored("c4", "doc-3", "extra.txt", "Osmosis moves water.", 0.5))
	llm := &mockLLMService{response: quizJSON(2)}
	svc := newTestQuery(&mockRetriever{chunks: chunks}, llm)

	_, err := svc.GenerateQuiz(context.Background(), "cells", 2, "")

	require.NoError(t, err)
	assert.NotContains(t, llm.prompts[0], "Osmosis moves water.")
}

func TestQueryService_ContextCeilingsClamped(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Retrieval.TopK = 10
	settings.Retrieval.QuizTopK = 10

	chunks := append(biologyChunks(),
		scored("c4", "doc-3", "extra.txt", "Osmosis moves water.", 0.5),
		scored("c5", "doc-3", "extra.txt", "Diffusion spreads solutes.", 0.4),
	)

	t.Run("ask", func(t *testing.T) {
		retriever := &mockRetriever{chunks: chunks}
		llm := &mockLLMService{response: "ATP."}
		svc := NewQueryService(retriever, llm, settings.Generation, settings.Retrieval)

		answer, err := svc.Ask(context.Background(), "What makes ATP?", "")

		require.NoError(t, err)
		assert.Equal(t, domain.MaxAskTopK, retriever.lastK)
		assert.NotContains(t, llm.prompts[0], "Diffusion spreads solutes.")
		assert.LessOrEqual(t, len(answer.Sources), domain.MaxAskTopK)
	})

	t.Run("quiz", func(t *testing.T) {
		retriever := &mockRetriever{chunks: chunks}
		llm := &mockLLMService{response: quizJSON(2)}
		svc := NewQueryService(retriever, llm, settings.Generation, settings.Retrieval)

		_, err := svc.GenerateQuiz(context.Background(), "cells", 2, "")

		require.NoError(t, err)
		assert.Equal(t, domain.MaxQuizTopK, retriever.lastK)
		assert.NotContains(t, llm.prompts[0], "Osmosis moves water.")
		assert.NotContains(t, llm.prompts[0], "Diffusion spreads solutes.")
	})
}

func TestQueryService_GenerateQuiz_GenericTopic(t *testing.T) {
	retriever := &mockRetriever{chunks: biologyChunks()}
	svc := newTestQuery(retriever, &mockLLMService{response: quizJSON(3)})

	quiz, err := svc.GenerateQuiz(context.Background(), "", 3, "")

	require.NoError(t, err)
	assert.Equal(t, "General", quiz.Topic)
	assert.Equal(t, quizFallbackQuery, retriever.lastQuery)
}

func TestQueryService_GenerateQuiz_Malformed(t *testing.T) {
	metrics := newMockMetrics()
	raw := quizJSON(3)
	svc := newTestQuery(&mockRetriever{chunks: biologyChunks()}, &mockLLMService{response: raw}, WithQueryMetrics(metrics))

	_, err := svc.GenerateQuiz(context.Background(), "cells", 5, "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedGeneration))
	var mge *domain.MalformedGenerationError
	require.True(t, errors.As(err, &mge))
	assert.Equal(t, raw, mge.Raw)
	assert.Equal(t, 1, metrics.queries["quiz/malformed_generation"])
}

func TestQueryService_GenerateQuiz_Errors(t *testing.T) {
	t.Run("too many questions", func(t *testing.T) {
		llm := &mockLLMService{}
		svc := newTestQuery(&mockRetriever{chunks: biologyChunks()}, llm)
		_, err := svc.GenerateQuiz(context.Background(), "cells", domain.MaxQuizQuestions+1, "")
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
		assert.Empty(t, llm.prompts)
	})

	t.Run("no context", func(t *testing.T) {
		llm := &mockLLMService{}
		svc := newTestQuery(&mockRetriever{}, llm)
		_, err := svc.GenerateQuiz(context.Background(), "cells", 5, "")
		assert.True(t, errors.Is(err, domain.ErrInsufficientContext))
		assert.Empty(t, llm.prompts)
	})

	t.Run("no llm", func(t *testing.T) {
		svc := newTestQuery(&mockRetriever{chunks: biologyChunks()}, nil)
		_, err := svc.GenerateQuiz(context.Background(), "cells", 5, "")
		assert.True(t, errors.Is(err, domain.ErrLLMUnavailable))
	})

	t.Run("generation failure", func(t *testing.T) {
		svc := newTestQuery(&mockRetriever{chunks: biologyChunks()}, &mockLLMService{err: errors.New("timeout")})
		_, err := svc.GenerateQuiz(context.Background(), "cells", 5, "")
		assert.True(t, errors.Is(err, domain.ErrGeneration))
		assert.False(t, errors.Is(err, domain.ErrMalformedGeneration))
	})
}

// Summarize

func TestQueryService_Summarize(t *testing.T) {
	retriever := &mockRetriever{chunks: biologyChunks()}
	llm := &mockLLMService{response: "Cells have organelles."}
	svc := newTestQuery(retriever, llm)

	summary, err := svc.Summarize(context.Background(), "doc-1", "organelles")

	require.NoError(t, err)
	assert.Equal(t, "Cells have organelles.", summary.Text)
	assert.Equal(t, "organelles", summary.Topic)
	assert.Len(t, summary.Sources, 3)

	assert.Equal(t, "organelles", retriever.lastQuery)
	assert.Equal(t, domain.DefaultAppSettings().Retrieval.SummaryTopK, retriever.lastK)
	assert.Contains(t, llm.prompts[0], "Focus: organelles")
	for _, c := range biologyChunks() {
		assert.Contains(t, llm.prompts[0], c.Chunk.Content, "summary uses every retrieved chunk")
	}
}

func TestQueryService_Summarize_GenericQuery(t *testing.T) {
	retriever := &mockRetriever{chunks: biologyChunks()}
	llm := &mockLLMService{response: "Summary."}
	svc := newTestQuery(retriever, llm)

	summary, err := svc.Summarize(context.Background(), "", "")

	require.NoError(t, err)
	assert.Empty(t, summary.Topic)
	assert.Equal(t, summaryFallbackQuery, retriever.lastQuery)
	assert.Contains(t, llm.prompts[0], "Focus: "+summaryFallbackFocus)
}

func TestQueryService_Summarize_ContextBudget(t *testing.T) {
	first := strings.Repeat("a", 600)
	second := strings.Repeat("b", 601)
	third := strings.Repeat("c", 601)
	chunks := []domain.ScoredChunk{
		scored("c1", "d", "a.txt", first, 0.9),
		scored("c2", "d", "a.txt", second, 0.8),
		scored("c3", "d", "a.txt", third, 0.7),
	}
	settings := domain.DefaultAppSettings()
	settings.Retrieval.MaxContextChars = 1300
	llm := &mockLLMService{response: "ok"}
	svc := NewQueryService(&mockRetriever{chunks: chunks}, llm, settings.Generation, settings.Retrieval)

	summary, err := svc.Summarize(context.Background(), "d", "")

	require.NoError(t, err)
	assert.Len(t, summary.Sources, 2)
	assert.Contains(t, llm.prompts[0], second)
	assert.NotContains(t, llm.prompts[0], third)
}

func TestQueryService_Summarize_CeilingClamped(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Retrieval.SummaryTopK = 500
	retriever := &mockRetriever{chunks: biologyChunks()}
	svc := NewQueryService(retriever, &mockLLMService{response: "ok"}, settings.Generation, settings.Retrieval)

	_, err := svc.Summarize(context.Background(), "", "cells")

	require.NoError(t, err)
	assert.Equal(t, domain.MaxSummaryTopK, retriever.lastK)
}

func TestQueryService_Summarize_Errors(t *testing.T) {
	t.Run("no context", func(t *testing.T) {
		_, err := newTestQuery(&mockRetriever{}, &mockLLMService{}).Summarize(context.Background(), "doc-1", "")
		assert.True(t, errors.Is(err, domain.ErrInsufficientContext))
	})

	t.Run("no llm", func(t *testing.T) {
		_, err := newTestQuery(&mockRetriever{chunks: biologyChunks()}, nil).Summarize(context.Background(), "", "x")
		assert.True(t, errors.Is(err, domain.ErrLLMUnavailable))
	})
}

func TestFitBudget(t *testing.T) {
	chunks := []domain.ScoredChunk{
		scored("1", "d", "f", strings.Repeat("a", 50), 0),
		scored("2", "d", "f", strings.Repeat("b", 50), 0),
		scored("3", "d", "f", strings.Repeat("c", 50), 0),
	}

	assert.Len(t, fitBudget(chunks, 0), 3, "zero disables the budget")
	assert.Len(t, fitBudget(chunks, 102), 2)
	assert.Len(t, fitBudget(chunks, 101), 1)
	assert.Len(t, fitBudget(chunks, 10), 1, "the first chunk is always kept")
	assert.Empty(t, fitBudget(nil, 10))
}
