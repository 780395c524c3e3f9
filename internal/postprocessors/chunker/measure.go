package chunker

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// Measure names the unit chunk sizes are counted in.
type Measure string

// Supported measures.
const (
	// MeasureCharacters counts Unicode code points. Each invalid byte
	// counts as one unit.
	MeasureCharacters Measure = "characters"

	// MeasureWords counts whitespace-delimited words.
	MeasureWords Measure = "words"
)

// ParseMeasure converts a configuration value to a Measure.
// Empty selects characters.
func ParseMeasure(s string) (Measure, error) {
	switch Measure(s) {
	case "", MeasureCharacters:
		return MeasureCharacters, nil
	case MeasureWords:
		return MeasureWords, nil
	default:
		return "", fmt.Errorf("%w: unknown chunk measure %q", domain.ErrInvalidConfig, s)
	}
}

// units splits text into measurable units whose concatenation is exactly text.
func (m Measure) units(text string) []string {
	if m == MeasureWords {
		return wordUnits(text)
	}
	return runeUnits(text)
}

func runeUnits(text string) []string {
	units := make([]string, 0, utf8.RuneCountInString(text))
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		units = append(units, text[i:i+size])
		i += size
	}
	return units
}

// wordUnits returns one unit per word, each carrying its trailing whitespace.
// Leading whitespace is attached to the first word.
func wordUnits(text string) []string {
	var units []string
	start := 0
	inSpace := true
	seenWord := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if !space && inSpace && seenWord {
			units = append(units, text[start:i])
			start = i
		}
		if !space {
			seenWord = true
		}
		inSpace = space
	}
	if start < len(text) {
		units = append(units, text[start:])
	}
	return units
}
