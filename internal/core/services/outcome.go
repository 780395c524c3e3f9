package services

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// outcomeOK labels a successful operation in metrics.
const outcomeOK = "ok"

// errorKind maps an error to a short, stable label for metrics and logs.
func errorKind(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, domain.ErrLoad):
		return "load"
	case errors.Is(err, domain.ErrEmbeddingMismatch):
		return "embedding_mismatch"
	case errors.Is(err, domain.ErrIndexWrite):
		return "index_write"
	case errors.Is(err, domain.ErrIndexRead):
		return "index_read"
	case errors.Is(err, domain.ErrMalformedGeneration):
		return "malformed_generation"
	case errors.Is(err, domain.ErrGeneration):
		return "generation"
	case errors.Is(err, domain.ErrInsufficientContext):
		return "insufficient_context"
	case errors.Is(err, domain.ErrLLMUnavailable), errors.Is(err, domain.ErrEmbeddingUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}

// nopMetrics is used when no metrics sink is configured.
type nopMetrics struct{}

func (nopMetrics) DocumentIngested(string, int) {}
func (nopMetrics) IngestFailed(string) {}
func (nopMetrics) QueryCompleted(string, string, time.Duration) {}

var _ driven.Metrics = nopMetrics{}
