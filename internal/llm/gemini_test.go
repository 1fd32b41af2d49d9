package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func geminiSuccessBody(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     40,
			"candidatesTokenCount": 25,
			"totalTokenCount":      65,
		},
	}
}

func TestGeminiProvider_WireFormat(t *testing.T) {
	var (
		gotPath  string
		gotKey   string
		gotAuth  string
		gotBody  map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiSuccessBody("hello"))
	}))
	defer server.Close()

	p, err := NewGeminiProvider(Settings{
		Provider: ProviderGemini,
		APIKey:   "test-key",
		BaseURL:  server.URL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := p.Complete(context.Background(), Request{
		Model: "gemini-2.5-flash",
		Messages: []Message{
			{Role: RoleSystem, Content: "Be terse."},
			{Role: RoleUser, Content: "Say hello."},
		},
		Temperature: 0.7,
		MaxTokens:   2048,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("expected key query param, got %q", gotKey)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}

	contents, ok := gotBody["contents"].([]any)
	if !ok || len(contents) != 1 {
		t.Fatalf("expected 1 content entry, got %v", gotBody["contents"])
	}
	first := contents[0].(map[string]any)
	if first["role"] != "user" {
		t.Errorf("expected user role, got %v", first["role"])
	}
	if gotBody["systemInstruction"] == nil {
		t.Error("expected systemInstruction to be set")
	}
	genCfg, ok := gotBody["generationConfig"].(map[string]any)
	if !ok {
		t.Fatal("expected generationConfig to be set")
	}
	if genCfg["maxOutputTokens"] != float64(2048) {
		t.Errorf("expected maxOutputTokens 2048, got %v", genCfg["maxOutputTokens"])
	}

	if resp.Content != "hello" {
		t.Errorf("expected content 'hello', got %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 65 {
		t.Errorf("expected 65 total tokens, got %d", resp.Usage.TotalTokens)
	}
	if resp.FinishReason != FinishStop {
		t.Errorf("expected finish reason %q, got %q", FinishStop, resp.FinishReason)
	}
}

func TestGeminiProvider_AssistantBecomesModel(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(geminiSuccessBody("ok"))
	}))
	defer server.Close()

	p, _ := NewGeminiProvider(Settings{APIKey: "k", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), Request{
		Model: "gemini-2.5-flash",
		Messages: []Message{
			{Role: RoleUser, Content: "first"},
			{Role: RoleAssistant, Content: "second"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	contents := gotBody["contents"].([]any)
	if len(contents) != 2 {
		t.Fatalf("expected 2 content entries, got %d", len(contents))
	}
	second := contents[1].(map[string]any)
	if second["role"] != "model" {
		t.Errorf("expected assistant mapped to 'model', got %v", second["role"])
	}
}

func TestGeminiProvider_MissingKey(t *testing.T) {
	_, err := NewGeminiProvider(Settings{Provider: ProviderGemini})
	var credErr *MissingCredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected MissingCredentialError, got %v", err)
	}
	if credErr.Provider != ProviderGemini {
		t.Errorf("expected gemini provider tag, got %q", credErr.Provider)
	}
}

func TestGeminiProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "quota exceeded"},
		})
	}))
	defer server.Close()

	p, _ := NewGeminiProvider(Settings{APIKey: "k", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), Request{Model: "gemini-2.5-flash",
		Messages: []Message{{Role: RoleUser, Content: "hi"}}})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "quota exceeded" {
		t.Errorf("expected provider message, got %q", apiErr.Message)
	}
	if !apiErr.Retryable() {
		t.Error("429 should be retryable")
	}
}

func TestGeminiProvider_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	p, _ := NewGeminiProvider(Settings{APIKey: "k", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), Request{Model: "gemini-2.5-flash",
		Messages: []Message{{Role: RoleUser, Content: "hi"}}})

	var invErr *InvalidResponseError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvalidResponseError, got %v", err)
	}
}

func TestGeminiProvider_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	p, _ := NewGeminiProvider(Settings{APIKey: "k", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), Request{Model: "m",
		Messages: []Message{{Role: RoleUser, Content: "hi"}}})

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}
