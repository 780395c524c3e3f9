package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names are an error.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptQA answers a question from retrieved context.
	// The template expects %s (context) and %s (question) placeholders.
	PromptQA = "qa"

	// PromptQuiz generates multiple-choice questions.
	// The template expects %d (count), %s (context) and %d (count) placeholders.
	PromptQuiz = "quiz"

	// PromptSummarize summarises retrieved context.
	// The template expects %s (topic) and %s (context) placeholders.
	PromptSummarize = "summarize"
)

// DefaultPrompts returns the built-in templates keyed by prompt name.
// The map is a fresh copy on every call.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptQA: `You are a helpful study assistant. Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.

Context: %s

Question: %s

Answer:`,

		PromptQuiz: `Based on the following study material, generate %d multiple-choice questions.
Each question should have 4 options (A, B, C, D) with only one correct answer.
Format the output as a JSON array of objects with 'question', 'options' (array of 4 strings), and 'correct_answer' (letter) fields.

Study Material:
%s

Return ONLY the JSON array with exactly %d objects, no other text.`,

		PromptSummarize: `Provide a comprehensive summary of the following study material.
Highlight the main points, key concepts, and important details.
Focus: %s

Study Material:
%s

Summary:`,
	}
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := DefaultPrompts()[name]
	return p, ok
}
