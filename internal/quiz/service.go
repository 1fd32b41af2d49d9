// Package quiz is the orchestration layer: the one entry point callers
// use to generate questions, evaluate answers and produce follow-up
// questions. It owns the request lifecycle end to end and is the only
// package that touches providers, templates and extraction together.
package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/studykit/studykit/internal/catalog"
	"github.com/studykit/studykit/internal/extract"
	"github.com/studykit/studykit/internal/llm"
	"github.com/studykit/studykit/internal/prompt"
)

// maxPreviousQuestions caps how many earlier questions are summarized
// into the prompt to keep it short.
const maxPreviousQuestions = 5

// Service orchestrates question generation and answer evaluation. It
// holds only read-only collaborators and is safe for concurrent use.
type Service struct {
	catalog *catalog.Catalog
	prompts *prompt.Registry
	log     *logrus.Logger
	history llm.RequestLog

	// dial builds the provider for a request. Swapped in tests.
	dial func(llm.Settings) (llm.Provider, error)
}

// Option configures a Service.
type Option func(*Service)

// WithLogger replaces the default logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithHistory attaches a request-history sink.
func WithHistory(sink llm.RequestLog) Option {
	return func(s *Service) { s.history = sink }
}

// WithDialer replaces provider construction, letting tests inject mocks.
func WithDialer(dial func(llm.Settings) (llm.Provider, error)) Option {
	return func(s *Service) { s.dial = dial }
}

// NewService builds a Service over the given provider catalog and
// prompt registry.
func NewService(c *catalog.Catalog, p *prompt.Registry, opts ...Option) *Service {
	s := &Service{
		catalog: c,
		prompts: p,
		log:     logrus.New(),
		dial:    llm.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateQuestion runs the full generation lifecycle: validate, build
// the prompt, dispatch, extract and shape-check the payload, run the
// code-content gate, and attach provenance metadata.
func (s *Service) GenerateQuestion(ctx context.Context, req GenerationRequest, settings llm.Settings) (*GeneratedQuestion, error) {
	if err := s.validateGeneration(req, settings); err != nil {
		return nil, wrapError(settings.Provider, err)
	}

	system := strings.TrimSpace(req.Prompt)
	if system == "" {
		templateID := prompt.TemplateMultipleChoice
		if req.Kind == KindDissertative {
			templateID = prompt.TemplateDissertative
		}
		var err error
		system, err = s.buildGenerationPrompt(templateID, req)
		if err != nil {
			return nil, wrapError(settings.Provider, err)
		}
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeGeneration)
	resp, meta, err := s.dispatch(ctx, settings, llm.PurposeGeneration, system, generationUserTurn(req))
	if err != nil {
		return nil, wrapError(settings.Provider, err)
	}

	payload, err := extract.Payload(resp.Content)
	if err != nil {
		return nil, wrapError(settings.Provider, err)
	}
	decoded, err := decodeQuestion(req.Kind, payload)
	if err != nil {
		return nil, wrapError(settings.Provider, err)
	}
	if err := checkCodeContent(decoded.Question, req.Contexts); err != nil {
		return nil, wrapError(settings.Provider, err)
	}

	q := &GeneratedQuestion{
		Kind:               req.Kind,
		Question:           decoded.Question,
		Options:            decoded.Options,
		CorrectAnswer:      decoded.CorrectAnswer,
		Explanation:        decoded.Explanation,
		SampleAnswer:       decoded.SampleAnswer,
		EvaluationCriteria: decoded.EvaluationCriteria,
		Meta:               *meta,
	}
	return q, nil
}

// EvaluateAnswer dispatches the evaluation template and treats the
// whole response as free-form feedback; no structured extraction runs.
// Correctness and score come from the grading heuristic.
func (s *Service) EvaluateAnswer(ctx context.Context, req EvaluationRequest, settings llm.Settings) (*EvaluationResult, error) {
	if err := s.validateSettings(settings); err != nil {
		return nil, wrapError(settings.Provider, err)
	}
	if strings.TrimSpace(req.Question) == "" || strings.TrimSpace(req.UserAnswer) == "" {
		return nil, wrapError(settings.Provider, &ValidationError{
			Issues: []string{"question and user answer are required"},
		})
	}

	body, err := s.prompts.Get(prompt.TemplateEvaluation, req.Language)
	if err != nil {
		return nil, wrapError(settings.Provider, err)
	}
	system := prompt.Fill(body, map[string]string{
		"question":      req.Question,
		"userAnswer":    req.UserAnswer,
		"correctAnswer": req.CorrectAnswer,
		"questionType":  string(req.Kind),
	})

	ctx = llm.WithPurpose(ctx, llm.PurposeEvaluation)
	resp, meta, err := s.dispatch(ctx, settings, llm.PurposeEvaluation, system, evaluationUserTurn(req.Language))
	if err != nil {
		return nil, wrapError(settings.Provider, err)
	}

	correct, score := gradeFeedback(req.Kind, resp.Content)
	return &EvaluationResult{
		Feedback:    resp.Content,
		Correct:     correct,
		Score:       score,
		Suggestions: extractSuggestions(resp.Content),
		Meta:        *meta,
	}, nil
}

// GenerateElaborativeQuestion asks for one follow-up question over the
// same material and returns the model's text verbatim.
func (s *Service) GenerateElaborativeQuestion(ctx context.Context, contexts []string, originalQuestion string, lang prompt.Language, settings llm.Settings) (string, error) {
	if err := s.validateSettings(settings); err != nil {
		return "", wrapError(settings.Provider, err)
	}
	if len(contexts) == 0 {
		return "", wrapError(settings.Provider, &ValidationError{
			Issues: []string{"at least one context is required"},
		})
	}

	body, err := s.prompts.Get(prompt.TemplateElaboration, lang)
	if err != nil {
		return "", wrapError(settings.Provider, err)
	}
	system := prompt.Fill(body, map[string]string{
		"contexts": numberedList(contexts),
		"question": originalQuestion,
	})

	ctx = llm.WithPurpose(ctx, llm.PurposeElaboration)
	resp, _, err := s.dispatch(ctx, settings, llm.PurposeElaboration, system, elaborationUserTurn(lang))
	if err != nil {
		return "", wrapError(settings.Provider, err)
	}
	return strings.TrimSpace(resp.Content), nil
}

func (s *Service) validateGeneration(req GenerationRequest, settings llm.Settings) error {
	var issues []string
	if len(req.Contexts) == 0 {
		issues = append(issues, "at least one context is required")
	}
	if req.Kind != KindMultipleChoice && req.Kind != KindDissertative {
		issues = append(issues, fmt.Sprintf("unknown question kind %q", req.Kind))
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return s.validateSettings(settings)
}

func (s *Service) validateSettings(settings llm.Settings) error {
	result := s.catalog.Validate(settings.Provider, settings)
	if !result.Valid {
		return &ValidationError{Issues: result.Errors}
	}
	return nil
}

// dispatch resolves the provider, applies per-purpose limits and model
// defaults, performs the single round trip and assembles provenance.
func (s *Service) dispatch(ctx context.Context, settings llm.Settings, purpose llm.Purpose, system, user string) (*llm.Response, *Metadata, error) {
	cfg, err := s.catalog.Get(settings.Provider)
	if err != nil {
		return nil, nil, err
	}

	model := settings.Model
	if model == "" {
		model = cfg.DefaultModel
	}
	resolved := settings
	resolved.Model = model

	provider, err := s.dial(resolved)
	if err != nil {
		return nil, nil, err
	}
	provider = llm.WithLogging(provider, s.log, s.history)

	limits := s.catalog.LimitsFor(settings.Provider, purpose)
	req := llm.Request{
		Model: model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: system},
			{Role: llm.RoleUser, Content: user},
		},
		Temperature: limits.Temperature,
		MaxTokens:   limits.MaxTokens,
	}

	start := time.Now()
	resp, err := provider.Complete(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	meta := &Metadata{
		ID:               uuid.New(),
		Provider:         settings.Provider,
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Elapsed:          time.Since(start),
		GeneratedAt:      time.Now(),
	}
	if resp.Model != "" {
		meta.Model = resp.Model
	}
	return resp, meta, nil
}

// buildGenerationPrompt fills the generation template with the numbered
// context and instruction lists plus a short summary of recent
// questions. Code topics get an extra instruction demanding literal
// code in the question body.
func (s *Service) buildGenerationPrompt(templateID string, req GenerationRequest) (string, error) {
	body, err := s.prompts.Get(templateID, req.Language)
	if err != nil {
		return "", err
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	filled := prompt.Fill(body, map[string]string{
		"contexts":          numberedList(req.Contexts),
		"instructions":      numberedList(req.Instructions),
		"previousQuestions": bulletList(lastN(req.PreviousQuestions, maxPreviousQuestions)),
		"difficulty":        difficulty,
	})

	if isCodeTopic("", req.Contexts) {
		filled += "\n" + codeInstruction(req.Language)
	}
	return filled, nil
}

func numberedList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return strings.TrimRight(b.String(), "\n")
}

func lastN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

func codeInstruction(lang prompt.Language) string {
	if lang == prompt.LangPortuguese {
		return "Importante: quando a questão mencionar código, inclua o trecho de código literal na própria questão, delimitado por três crases. Nunca se refira a um código que não está presente."
	}
	return "Important: when the question mentions code, embed the literal code snippet in the question itself, fenced with triple backticks. Never refer to code that is not shown."
}

func generationUserTurn(req GenerationRequest) string {
	if req.Language == prompt.LangPortuguese {
		if req.Kind == KindDissertative {
			return "Gere agora uma questão dissertativa seguindo as regras acima. Responda apenas com o JSON."
		}
		return "Gere agora uma questão de múltipla escolha seguindo as regras acima. Responda apenas com o JSON."
	}
	if req.Kind == KindDissertative {
		return "Generate one dissertative question now, following the rules above. Reply with the JSON only."
	}
	return "Generate one multiple-choice question now, following the rules above. Reply with the JSON only."
}

func evaluationUserTurn(lang prompt.Language) string {
	if lang == prompt.LangPortuguese {
		return "Avalie a resposta do estudante agora."
	}
	return "Evaluate the student's answer now."
}

func elaborationUserTurn(lang prompt.Language) string {
	if lang == prompt.LangPortuguese {
		return "Escreva a pergunta de aprofundamento agora."
	}
	return "Write the follow-up question now."
}
