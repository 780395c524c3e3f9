package domain

// PreviewLength is the character budget for source previews.
const PreviewLength = 200

// previewMarker is appended to previews that were cut.
const previewMarker = "..."

// InsufficientContextAnswer is returned when nothing relevant was retrieved.
const InsufficientContextAnswer = "I don't know. The provided documents do not contain enough information to answer this question."

// Source attributes part of an answer to exactly one retrieved chunk.
type Source struct {
	Filename   string `json:"filename"`
	Preview    string `json:"content"`
	DocumentID string `json:"document_id,omitempty"`
	ChunkID    string `json:"chunk_id,omitempty"`
}

// Answer is the result of a question-answering call.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Summary is the result of a summarisation call.
type Summary struct {
	Text    string   `json:"summary"`
	Topic   string   `json:"topic,omitempty"`
	Sources []Source `json:"sources,omitempty"`
}

// QuizOptionLabels are the labels of the four options of a quiz question, in order.
var QuizOptionLabels = []string{"A", "B", "C", "D"}

// QuizOption is a single labelled choice.
type QuizOption struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// QuizQuestion is a multiple-choice item with exactly one correct option.
type QuizQuestion struct {
	Question      string       `json:"question"`
	Options       []QuizOption `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
}

// Quiz is a validated set of multiple-choice questions.
type Quiz struct {
	Topic     string         `json:"topic"`
	Questions []QuizQuestion `json:"questions"`
}

// Preview truncates content to PreviewLength characters.
// The marker is only added when something was cut.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength]) + previewMarker
}

// SourcesFor builds distinct source attributions for the chunks used as context,
// preserving retrieval order.
func SourcesFor(chunks []ScoredChunk) []Source {
	type key struct{ filename, preview string }
	seen := make(map[key]bool, len(chunks))
	sources := make([]Source, 0, len(chunks))
	for _, sc := range chunks {
		k := key{sc.Chunk.Filename, Preview(sc.Chunk.Content)}
		if seen[k] {
			continue
		}
		seen[k] = true
		sources = append(sources, Source{
			Filename:   k.filename,
			Preview:    k.preview,
			DocumentID: sc.Chunk.DocumentID,
			ChunkID:    sc.Chunk.ID,
		})
	}
	return sources
}
