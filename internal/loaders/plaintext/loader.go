// Package plaintext loads UTF-8 text files.
package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader handles plain text documents.
type Loader struct{}

// New creates a new plain text loader.
func New() *Loader {
	return &Loader{}
}

// Extensions returns the file extensions this loader handles.
func (l *Loader) Extensions() []string {
	return []string{".txt"}
}

// Load reads the whole file as a single section.
// The content must be valid UTF-8; a leading byte order mark is dropped.
func (l *Loader) Load(_ context.Context, path string) ([]domain.Section, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}

	content = bytes.TrimPrefix(content, utf8BOM)
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8 text", domain.ErrLoad, path)
	}

	return []domain.Section{{Index: 1, Text: string(content)}}, nil
}
