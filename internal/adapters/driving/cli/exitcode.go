package cli

import (
	"errors"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitInvalid     = 2
	ExitLoad        = 3
	ExitIndex       = 4
	ExitGeneration  = 5
	ExitNoContext   = 6
	ExitUnavailable = 7
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrUnsupportedFormat),
		errors.Is(err, domain.ErrInvalidConfig):
		return ExitInvalid
	case errors.Is(err, domain.ErrLoad):
		return ExitLoad
	case errors.Is(err, domain.ErrIndexWrite),
		errors.Is(err, domain.ErrIndexRead),
		errors.Is(err, domain.ErrEmbeddingMismatch):
		return ExitIndex
	case errors.Is(err, domain.ErrGeneration),
		errors.Is(err, domain.ErrMalformedGeneration):
		return ExitGeneration
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrInsufficientContext):
		return ExitNoContext
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, errNotConfigured):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
