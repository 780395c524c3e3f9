package driving

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// QueryService answers questions and generates study material from indexed documents.
type QueryService interface {
	// Ask answers a question from retrieved context with source attribution.
	Ask(ctx context.Context, question, documentID string) (*domain.Answer, error)

	// GenerateQuiz creates a validated multiple-choice quiz.
	// numQuestions <= 0 selects the default.
	GenerateQuiz(ctx context.Context, topic string, numQuestions int, documentID string) (*domain.Quiz, error)

	// Summarize summarises a document, a topic, or both.
	Summarize(ctx context.Context, documentID, topic string) (*domain.Summary, error)
}
