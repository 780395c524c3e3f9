// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/studyrag/internal/core/domain"
	"github.com/custodia-labs/studyrag/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of units per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping units.
const DefaultChunkOverlap = 200

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits section text into fixed-size overlapping chunks.
// Consecutive chunks share exactly overlap units; the last may be shorter.
type Processor struct {
	chunkSize int
	overlap   int
	measure   Measure
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in units.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between chunks in units.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// WithMeasure sets the unit sizes are counted in.
func WithMeasure(m Measure) Option {
	return func(p *Processor) {
		p.measure = m
	}
}

// New creates a new chunker processor with the given options.
// Invalid sizes are rejected here so Split never fails.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		measure:   MeasureCharacters,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, p.chunkSize)
	}
	if p.overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrInvalidConfig, p.overlap)
	}
	if p.chunkSize <= p.overlap {
		return nil, fmt.Errorf("%w: chunk size %d must exceed overlap %d",
			domain.ErrInvalidConfig, p.chunkSize, p.overlap)
	}
	if _, err := ParseMeasure(string(p.measure)); err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Split divides text into spans of at most chunkSize units.
// Splitting stops at the first span that reaches the end of the text.
func (p *Processor) Split(text string) []string {
	if text == "" {
		return nil
	}

	units := p.measure.units(text)
	n := len(units)
	step := p.chunkSize - p.overlap

	spans := make([]string, 0, n/step+1)
	for start := 0; start < n; start += step {
		end := start + p.chunkSize
		if end > n {
			end = n
		}
		spans = append(spans, strings.Join(units[start:end], ""))
		if end == n {
			break
		}
	}
	return spans
}

// Process splits every section and numbers the chunks across the whole document.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, sections []domain.Section) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	position := 0

	for _, section := range sections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, span := range p.Split(section.Text) {
			chunk := domain.Chunk{
				ID:       uuid.New().String(),
				Content:  span,
				Position: position,
				Metadata: map[string]any{domain.MetaSection: section.Index},
			}
			if doc != nil {
				chunk.DocumentID = doc.ID
				chunk.Filename = doc.Filename
			}
			chunks = append(chunks, chunk)
			position++
		}
	}

	return chunks, nil
}
