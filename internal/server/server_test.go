package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/studykit/studykit/internal/catalog"
	"github.com/studykit/studykit/internal/llm"
	"github.com/studykit/studykit/internal/prompt"
	"github.com/studykit/studykit/internal/quiz"
)

func newTestServer(t *testing.T, mock *llm.MockProvider) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := quiz.NewService(catalog.Default(), prompt.NewRegistry(),
		quiz.WithLogger(log),
		quiz.WithDialer(func(s llm.Settings) (llm.Provider, error) {
			return mock, nil
		}))

	settings := llm.Settings{Provider: llm.ProviderOpenAI, APIKey: "sk-test"}
	return New(svc, catalog.Default(), settings, log).Router()
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestGenerateQuestionEndpoint(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: `{"question": "What is 2+2?", "options": ["1","2","3","4"], "correctAnswer": 3, "explanation": "sum"}`,
		Usage:   llm.Usage{PromptTokens: 10, CompletionTokens: 5},
	})
	handler := newTestServer(t, mock)

	rec := postJSON(t, handler, "/api/questions", map[string]any{
		"contexts": []string{"Basic arithmetic"},
		"kind":     "multipleChoice",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["question"] != "What is 2+2?" {
		t.Errorf("unexpected question %v", resp["question"])
	}
	if resp["correctAnswer"] != float64(3) {
		t.Errorf("unexpected correctAnswer %v", resp["correctAnswer"])
	}
	if resp["provider"] != "openai" {
		t.Errorf("unexpected provider %v", resp["provider"])
	}
	if resp["id"] == "" || resp["id"] == nil {
		t.Error("expected an id")
	}
}

func TestGenerateQuestionEndpoint_ValidationError(t *testing.T) {
	mock := llm.NewMockProvider()
	handler := newTestServer(t, mock)

	rec := postJSON(t, handler, "/api/questions", map[string]any{
		"contexts": []string{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["code"] != "validation" {
		t.Errorf("expected validation code, got %v", resp["code"])
	}
	if resp["retryable"] != false {
		t.Errorf("validation errors must not be retryable")
	}
	if mock.CallCount() != 0 {
		t.Errorf("expected zero provider calls, got %d", mock.CallCount())
	}
}

func TestGenerateQuestionEndpoint_ProviderFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Err: &llm.APIError{Provider: llm.ProviderOpenAI, StatusCode: http.StatusServiceUnavailable, Message: "overloaded"},
	})
	handler := newTestServer(t, mock)

	rec := postJSON(t, handler, "/api/questions", map[string]any{
		"contexts": []string{"topic"},
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["code"] != "provider_api" {
		t.Errorf("expected provider_api code, got %v", resp["code"])
	}
	if resp["retryable"] != true {
		t.Error("503 should be reported retryable")
	}
}

func TestEvaluateEndpoint(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: "That is correct, well done.",
	})
	handler := newTestServer(t, mock)

	rec := postJSON(t, handler, "/api/evaluations", map[string]any{
		"question":   "What is 2+2?",
		"userAnswer": "4",
		"kind":       "multipleChoice",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["correct"] != true {
		t.Errorf("expected correct verdict, got %v", resp["correct"])
	}
	if resp["score"] != float64(100) {
		t.Errorf("expected score 100, got %v", resp["score"])
	}
}

func TestElaborateEndpoint(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: "Why does carry propagation matter?",
	})
	handler := newTestServer(t, mock)

	rec := postJSON(t, handler, "/api/elaborations", map[string]any{
		"contexts": []string{"Binary arithmetic"},
		"question": "What is 2+2 in binary?",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["question"] == "" {
		t.Error("expected a follow-up question")
	}
}

func TestProvidersEndpoint(t *testing.T) {
	handler := newTestServer(t, llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodGet, "/api/providers", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 5 {
		t.Fatalf("expected 5 providers, got %d", len(resp))
	}
	if resp[0]["id"] != "openai" {
		t.Errorf("expected openai first, got %v", resp[0]["id"])
	}
	for _, p := range resp {
		if p["id"] == "ollama" {
			if p["requiresCredential"] != false || p["local"] != true {
				t.Error("ollama should be local and credential-free")
			}
		}
	}
}

func TestProviderModelsEndpoint(t *testing.T) {
	handler := newTestServer(t, llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodGet, "/api/providers/gemini/models", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var models []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &models); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(models) == 0 {
		t.Fatal("expected at least one model")
	}
	found := false
	for _, m := range models {
		if m["id"] == "gemini-2.5-flash" {
			found = true
		}
	}
	if !found {
		t.Error("expected the default gemini model in the list")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/providers/grok/models", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown provider, got %d", rec.Code)
	}
}

// stubPinger is a mock provider that also answers connectivity probes.
type stubPinger struct {
	*llm.MockProvider
	pingErr error
}

func (s *stubPinger) Ping(ctx context.Context) error { return s.pingErr }

func newStatusServer(t *testing.T, pingErr error) http.Handler {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	svc := quiz.NewService(catalog.Default(), prompt.NewRegistry(), quiz.WithLogger(log))
	settings := llm.Settings{Provider: llm.ProviderOllama, BaseURL: "http://127.0.0.1:11434"}
	return New(svc, catalog.Default(), settings, log,
		WithDialer(func(s llm.Settings) (llm.Provider, error) {
			return &stubPinger{MockProvider: llm.NewMockProvider(), pingErr: pingErr}, nil
		})).Router()
}

func getStatus(t *testing.T, handler http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec, body
}

func TestProviderStatusEndpoint(t *testing.T) {
	handler := newStatusServer(t, nil)

	rec, body := getStatus(t, handler, "/api/providers/ollama/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["valid"] != true {
		t.Errorf("expected valid settings, got %v", body)
	}
	if body["reachable"] != true {
		t.Errorf("expected reachable backend, got %v", body)
	}

	// A provider that is not configured fails validation and is never
	// probed.
	_, body = getStatus(t, handler, "/api/providers/anthropic/status")
	if body["valid"] != false {
		t.Errorf("expected invalid settings for an unconfigured provider, got %v", body)
	}
	if _, ok := body["reachable"]; ok {
		t.Error("invalid settings must not be probed")
	}

	rec, _ = getStatus(t, handler, "/api/providers/grok/status")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown provider, got %d", rec.Code)
	}
}

func TestProviderStatusEndpoint_Unreachable(t *testing.T) {
	handler := newStatusServer(t, &llm.NetworkError{
		Provider: llm.ProviderOllama,
		Hint:     "Ollama not reachable at http://127.0.0.1:11434 (is it running?)",
	})

	rec, body := getStatus(t, handler, "/api/providers/ollama/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body["valid"] != true {
		t.Errorf("expected valid settings, got %v", body)
	}
	if body["reachable"] != false {
		t.Errorf("expected unreachable backend, got %v", body)
	}
	if body["detail"] == "" || body["detail"] == nil {
		t.Error("expected a failure detail")
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestServer(t, llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestBadJSONBody(t *testing.T) {
	handler := newTestServer(t, llm.NewMockProvider())

	req := httptest.NewRequest(http.MethodPost, "/api/questions", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
