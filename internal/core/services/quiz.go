package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/studyrag/internal/core/domain"
)

// quizItem is the shape the model is asked to produce.
// Options may arrive as an array or as an object keyed by label.
type quizItem struct {
	Question      string          `json:"question"`
	Options       json.RawMessage `json:"options"`
	CorrectAnswer string          `json:"correct_answer"`
}

var (
	// codeFence matches a fenced block, optionally tagged with a language.
	codeFence = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")

	// labelPrefix matches "A) ", "(b) ", "C. " or "D: " at the start of an option.
	// The label must be followed by whitespace or end the string, so "a.m." is text.
	labelPrefix = regexp.MustCompile(`^\(?([A-Da-d])[).:](?:\s+|$)`)
)

// parseQuiz extracts and validates want questions from raw model output.
// Any violation is reported as a *domain.MalformedGenerationError.
func parseQuiz(raw string, want int) ([]domain.QuizQuestion, error) {
	malformed := func(format string, args ...any) error {
		return &domain.MalformedGenerationError{Reason: fmt.Sprintf(format, args...), Raw: raw}
	}

	payload, ok := extractJSONArray(raw)
	if !ok {
		return nil, malformed("no JSON array in model output")
	}

	var items []quizItem
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, malformed("invalid JSON: %v", err)
	}
	if len(items) != want {
		return nil, malformed("expected %d questions, got %d", want, len(items))
	}

	questions := make([]domain.QuizQuestion, 0, len(items))
	for i, item := range items {
		q, err := validateQuizItem(item)
		if err != nil {
			return nil, malformed("question %d: %v", i+1, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// extractJSONArray strips code fences and surrounding prose.
func extractJSONArray(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func validateQuizItem(item quizItem) (domain.QuizQuestion, error) {
	question := strings.TrimSpace(item.Question)
	if question == "" {
		return domain.QuizQuestion{}, fmt.Errorf("empty question")
	}

	texts, err := decodeOptions(item.Options)
	if err != nil {
		return domain.QuizQuestion{}, err
	}
	if len(texts) != len(domain.QuizOptionLabels) {
		return domain.QuizQuestion{}, fmt.Errorf("expected %d options, got %d",
			len(domain.QuizOptionLabels), len(texts))
	}

	options := make([]domain.QuizOption, len(texts))
	for i, text := range texts {
		label := domain.QuizOptionLabels[i]
		text = stripLabel(strings.TrimSpace(text), label)
		if text == "" {
			return domain.QuizQuestion{}, fmt.Errorf("option %s is empty", label)
		}
		options[i] = domain.QuizOption{Label: label, Text: text}
	}

	correct, err := resolveAnswer(item.CorrectAnswer, options)
	if err != nil {
		return domain.QuizQuestion{}, err
	}

	return domain.QuizQuestion{
		Question:      question,
		Options:       options,
		CorrectAnswer: correct,
	}, nil
}

// decodeOptions accepts ["..", ..] or {"A": "..", ...}.
func decodeOptions(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing options")
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var byLabel map[string]string
	if err := json.Unmarshal(raw, &byLabel); err != nil {
		return nil, fmt.Errorf("options must be an array of strings")
	}
	list = make([]string, 0, len(byLabel))
	for _, label := range domain.QuizOptionLabels {
		text, ok := byLabel[label]
		if !ok {
			text, ok = byLabel[strings.ToLower(label)]
		}
		if !ok {
			return nil, fmt.Errorf("option %s missing", label)
		}
		list = append(list, text)
	}
	if len(byLabel) != len(list) {
		return nil, fmt.Errorf("expected %d options, got %d", len(domain.QuizOptionLabels), len(byLabel))
	}
	return list, nil
}

// stripLabel removes a leading "A) " style prefix matching the option's own label.
func stripLabel(text, label string) string {
	m := labelPrefix.FindStringSubmatchIndex(text)
	if m == nil || !strings.EqualFold(text[m[2]:m[3]], label) {
		return text
	}
	return strings.TrimSpace(text[m[1]:])
}

// resolveAnswer maps the model's correct_answer to exactly one label.
// It accepts a bare label, a prefixed label ("B) ..."), or the option text.
func resolveAnswer(answer string, options []domain.QuizOption) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("missing correct_answer")
	}

	for _, opt := range options {
		if strings.EqualFold(answer, opt.Label) {
			return opt.Label, nil
		}
	}
	if m := labelPrefix.FindStringSubmatch(answer); m != nil {
		letter := strings.ToUpper(m[1])
		rest := strings.TrimSpace(answer[len(m[0]):])
		for _, opt := range options {
			if opt.Label == letter && (rest == "" || strings.EqualFold(rest, opt.Text)) {
				return opt.Label, nil
			}
		}
	}

	var match string
	for _, opt := range options {
		if strings.EqualFold(answer, opt.Text) {
			if match != "" {
				return "", fmt.Errorf("correct_answer %q matches more than one option", answer)
			}
			match = opt.Label
		}
	}
	if match == "" {
		return "", fmt.Errorf("correct_answer %q does not match any option", answer)
	}
	return match, nil
}
