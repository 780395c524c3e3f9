package driven

import (
	"context"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// Loader extracts text from one family of file formats.
type Loader interface {
	// Extensions returns the lower-case extensions handled, with the leading dot.
	Extensions() []string

	// Load reads the file and returns its sections in order.
	// Parser failures are reported wrapping domain.ErrLoad.
	Load(ctx context.Context, path string) ([]domain.Section, error)
}

// LoaderRegistry selects a loader by file extension.
type LoaderRegistry interface {
	// Register adds a loader for every extension it reports.
	Register(loader Loader)

	// ForFile returns the loader for the file's extension (case-insensitive).
	// Returns domain.ErrUnsupportedFormat when none matches.
	ForFile(filename string) (Loader, error)

	// Extensions returns all registered extensions, sorted.
	Extensions() []string
}
