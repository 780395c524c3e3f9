package loaders

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
	"github.com/custodia-labs/studyrag/internal/loaders/docx"
	"github.com/custodia-labs/studyrag/internal/loaders/pdf"
	"github.com/custodia-labs/studyrag/internal/loaders/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps lower-case file extensions to loaders.
// It is populated at startup and read-only afterwards.
type Registry struct {
	loaders map[string]driven.Loader
}

// NewRegistry creates an empty loader registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders: make(map[string]driven.Loader),
	}
}

// DefaultRegistry returns a registry with the PDF, plain text and Word loaders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	return r
}

// Register adds a loader for every extension it reports.
// A later registration for the same extension replaces the earlier one.
func (r *Registry) Register(loader driven.Loader) {
	for _, ext := range loader.Extensions() {
		r.loaders[strings.ToLower(ext)] = loader
	}
}

// ForFile returns the loader for the file's extension.
func (r *Registry) ForFile(filename string) (driven.Loader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", domain.ErrUnsupportedFormat, filepath.Base(filename))
	}
	loader, ok := r.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
	return loader, nil
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
