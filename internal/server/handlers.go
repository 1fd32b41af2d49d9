package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/studykit/studykit/internal/llm"
	"github.com/studykit/studykit/internal/prompt"
	"github.com/studykit/studykit/internal/quiz"
)

type generateRequest struct {
	Contexts          []string `json:"contexts"`
	Instructions      []string `json:"instructions"`
	PreviousQuestions []string `json:"previousQuestions"`
	Kind              string   `json:"kind"`
	Difficulty        string   `json:"difficulty"`
	Language          string   `json:"language"`
}

type questionResponse struct {
	ID                 string   `json:"id"`
	Kind               string   `json:"kind"`
	Question           string   `json:"question"`
	Options            []string `json:"options,omitempty"`
	CorrectAnswer      *int     `json:"correctAnswer,omitempty"`
	Explanation        string   `json:"explanation,omitempty"`
	SampleAnswer       string   `json:"sampleAnswer,omitempty"`
	EvaluationCriteria []string `json:"evaluationCriteria,omitempty"`
	Provider           string   `json:"provider"`
	Model              string   `json:"model"`
	PromptTokens       int      `json:"promptTokens"`
	CompletionTokens   int      `json:"completionTokens"`
	ElapsedMs          int64    `json:"elapsedMs"`
}

func (s *Server) handleGenerateQuestion(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}

	kind := quiz.QuestionKind(req.Kind)
	if req.Kind == "" {
		kind = quiz.KindMultipleChoice
	}
	q, err := s.service.GenerateQuestion(r.Context(), quiz.GenerationRequest{
		Contexts:          req.Contexts,
		Instructions:      req.Instructions,
		PreviousQuestions: req.PreviousQuestions,
		Kind:              kind,
		Difficulty:        req.Difficulty,
		Language:          prompt.Language(req.Language),
	}, s.settings)
	if err != nil {
		s.respondError(w, err)
		return
	}

	resp := questionResponse{
		ID:                 q.Meta.ID.String(),
		Kind:               string(q.Kind),
		Question:           q.Question,
		Provider:           string(q.Meta.Provider),
		Model:              q.Meta.Model,
		PromptTokens:       q.Meta.PromptTokens,
		CompletionTokens:   q.Meta.CompletionTokens,
		ElapsedMs:          q.Meta.Elapsed.Milliseconds(),
		Explanation:        q.Explanation,
		SampleAnswer:       q.SampleAnswer,
		EvaluationCriteria: q.EvaluationCriteria,
	}
	if q.Kind == quiz.KindMultipleChoice {
		resp.Options = q.Options
		idx := q.CorrectAnswer
		resp.CorrectAnswer = &idx
	}
	s.respondJSON(w, http.StatusCreated, resp)
}

type evaluateRequest struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Kind          string `json:"kind"`
	Language      string `json:"language"`
}

type evaluationResponse struct {
	Feedback    string   `json:"feedback"`
	Correct     bool     `json:"correct"`
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions,omitempty"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	ElapsedMs   int64    `json:"elapsedMs"`
}

func (s *Server) handleEvaluateAnswer(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !s.decode(w, r, &req) {
		return
	}

	kind := quiz.QuestionKind(req.Kind)
	if req.Kind == "" {
		kind = quiz.KindDissertative
	}
	result, err := s.service.EvaluateAnswer(r.Context(), quiz.EvaluationRequest{
		Question:      req.Question,
		UserAnswer:    req.UserAnswer,
		CorrectAnswer: req.CorrectAnswer,
		Kind:          kind,
		Language:      prompt.Language(req.Language),
	}, s.settings)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, evaluationResponse{
		Feedback:    result.Feedback,
		Correct:     result.Correct,
		Score:       result.Score,
		Suggestions: result.Suggestions,
		Provider:    string(result.Meta.Provider),
		Model:       result.Meta.Model,
		ElapsedMs:   result.Meta.Elapsed.Milliseconds(),
	})
}

type elaborateRequest struct {
	Contexts []string `json:"contexts"`
	Question string   `json:"question"`
	Language string   `json:"language"`
}

func (s *Server) handleElaborate(w http.ResponseWriter, r *http.Request) {
	var req elaborateRequest
	if !s.decode(w, r, &req) {
		return
	}

	text, err := s.service.GenerateElaborativeQuestion(
		r.Context(), req.Contexts, req.Question, prompt.Language(req.Language), s.settings)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"question": text})
}

type providerInfo struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	RequiresCredential bool        `json:"requiresCredential"`
	Local              bool        `json:"local"`
	DefaultModel       string      `json:"defaultModel"`
	Models             []modelInfo `json:"models"`
}

type modelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cost        string `json:"cost"`
	Recommended bool   `json:"recommended,omitempty"`
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	configs := s.catalog.List()
	out := make([]providerInfo, 0, len(configs))
	for _, cfg := range configs {
		info := providerInfo{
			ID:                 string(cfg.ID),
			Name:               cfg.Name,
			RequiresCredential: cfg.RequiresCredential,
			Local:              cfg.Local,
			DefaultModel:       cfg.DefaultModel,
		}
		for _, m := range cfg.Models {
			info.Models = append(info.Models, modelInfo{
				ID:          m.ID,
				Name:        m.Name,
				Description: m.Description,
				Cost:        m.Cost.String(),
				Recommended: m.Recommended,
			})
		}
		out = append(out, info)
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleProviderModels(w http.ResponseWriter, r *http.Request) {
	id := llm.ProviderID(chi.URLParam(r, "id"))
	cfg, err := s.catalog.Get(id)
	if err != nil {
		s.respondJSON(w, http.StatusNotFound, errorBody{
			Error: fmt.Sprintf("unknown provider %q", id),
			Code:  "validation",
		})
		return
	}

	out := make([]modelInfo, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		out = append(out, modelInfo{
			ID:          m.ID,
			Name:        m.Name,
			Description: m.Description,
			Cost:        m.Cost.String(),
			Recommended: m.Recommended,
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

type providerStatus struct {
	Provider  string   `json:"provider"`
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors,omitempty"`
	Reachable *bool    `json:"reachable,omitempty"`
	Detail    string   `json:"detail,omitempty"`
}

// handleProviderStatus validates the configured settings against one
// backend and, when the adapter supports a cheap probe, tests that the
// backend actually answers.
func (s *Server) handleProviderStatus(w http.ResponseWriter, r *http.Request) {
	id := llm.ProviderID(chi.URLParam(r, "id"))
	if _, err := s.catalog.Get(id); err != nil {
		s.respondJSON(w, http.StatusNotFound, errorBody{
			Error: fmt.Sprintf("unknown provider %q", id),
			Code:  "validation",
		})
		return
	}

	settings := llm.Settings{Provider: id}
	if s.settings.Provider == id {
		settings = s.settings
	}

	result := s.catalog.Validate(id, settings)
	status := providerStatus{
		Provider: string(id),
		Valid:    result.Valid,
		Errors:   result.Errors,
	}

	if result.Valid {
		if provider, err := s.dial(settings); err == nil {
			if pinger, ok := provider.(llm.Pinger); ok {
				ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
				defer cancel()

				reachable := true
				if err := pinger.Ping(ctx); err != nil {
					reachable = false
					status.Detail = err.Error()
				}
				status.Reachable = &reachable
			}
		}
	}

	s.respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
