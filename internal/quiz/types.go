package quiz

import (
	"time"

	"github.com/google/uuid"
	"github.com/studykit/studykit/internal/llm"
	"github.com/studykit/studykit/internal/prompt"
)

// QuestionKind selects the question format and the template that
// generates it.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multipleChoice"
	KindDissertative   QuestionKind = "dissertative"
)

// GenerationRequest asks for one new question over the given study
// material. Contexts must be non-empty; everything else is optional.
type GenerationRequest struct {
	Contexts          []string
	Instructions      []string
	PreviousQuestions []string
	Kind              QuestionKind
	Difficulty        string
	Language          prompt.Language

	// Prompt, when set, replaces the template-built system prompt
	// verbatim. The response is still extracted and shape-checked
	// against Kind.
	Prompt string
}

// Metadata is the provenance attached to every generated artifact.
type Metadata struct {
	ID               uuid.UUID
	Provider         llm.ProviderID
	Model            string
	PromptTokens     int
	CompletionTokens int
	Elapsed          time.Duration
	GeneratedAt      time.Time
}

// GeneratedQuestion is the typed result of question generation.
// Multiple-choice questions fill Options, CorrectAnswer and
// Explanation; dissertative ones fill SampleAnswer and
// EvaluationCriteria. Immutable once returned.
type GeneratedQuestion struct {
	Kind     QuestionKind
	Question string

	Options       []string
	CorrectAnswer int
	Explanation   string

	SampleAnswer       string
	EvaluationCriteria []string

	Meta Metadata
}

// EvaluationRequest asks for feedback on a student's answer.
// CorrectAnswer is optional reference material.
type EvaluationRequest struct {
	Question      string
	UserAnswer    string
	CorrectAnswer string
	Kind          QuestionKind
	Language      prompt.Language
}

// EvaluationResult carries the model's free-form feedback plus a
// heuristic correctness verdict and 0-100 score derived from it.
// Suggestions are the "- " lines the evaluation prompt asks the model
// to emit; empty when the feedback has none.
type EvaluationResult struct {
	Feedback    string
	Correct     bool
	Score       int
	Suggestions []string

	Meta Metadata
}
