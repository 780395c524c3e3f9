// Package pdf loads text from PDF files, one section per page.
package pdf

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.Loader = (*Loader)(nil)

// Loader handles PDF documents.
type Loader struct{}

// New creates a new PDF loader.
func New() *Loader {
	return &Loader{}
}

// Extensions returns the file extensions this loader handles.
func (l *Loader) Extensions() []string {
	return []string{".pdf"}
}

// Load extracts plain text per page. Pages without extractable text are skipped;
// section indexes keep the page number.
func (l *Loader) Load(ctx context.Context, path string) (sections []domain.Section, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}

	// The parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			sections = nil
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrLoad, r)
		}
	}()

	reader, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLoad, err)
	}

	pageCount := reader.NumPage()
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("pdf: page %d of %s: %v", i, path, err)
			continue
		}
		sections = append(sections, domain.Section{Index: i, Text: text})
	}

	return sections, nil
}
