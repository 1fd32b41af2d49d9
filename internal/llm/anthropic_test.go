package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func anthropicSuccessBody(text, stopReason string) map[string]any {
	return map[string]any{
		"id":   "msg_test",
		"type": "message",
		"role": "assistant",
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"model":       "claude-haiku-4-5",
		"stop_reason": stopReason,
		"usage": map[string]any{
			"input_tokens":  50,
			"output_tokens": 30,
		},
	}
}

func TestAnthropicProvider_WireFormat(t *testing.T) {
	var (
		gotKey     string
		gotVersion string
		gotAuth    string
		gotBody    map[string]any
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicSuccessBody("hello", "end_turn"))
	}))
	defer server.Close()

	p, err := NewAnthropicProvider(Settings{
		Provider: ProviderAnthropic,
		APIKey:   "sk-ant-test",
		BaseURL:  server.URL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := p.Complete(context.Background(), Request{
		Model: "claude-haiku-4-5",
		Messages: []Message{
			{Role: RoleSystem, Content: "Be brief."},
			{Role: RoleUser, Content: "Say hello."},
		},
		MaxTokens: 1024,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "sk-ant-test" {
		t.Errorf("expected x-api-key header, got %q", gotKey)
	}
	if gotVersion == "" {
		t.Error("expected anthropic-version header to be set")
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}

	if gotBody["max_tokens"] != float64(1024) {
		t.Errorf("expected max_tokens 1024, got %v", gotBody["max_tokens"])
	}
	if gotBody["system"] == nil {
		t.Error("expected system turns promoted to the system field")
	}
	msgs := gotBody["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 conversation turn, got %d", len(msgs))
	}
	first := msgs[0].(map[string]any)
	if first["role"] != "user" {
		t.Errorf("expected user role, got %v", first["role"])
	}

	if resp.Content != "hello" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage.PromptTokens != 50 || resp.Usage.CompletionTokens != 30 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
	if resp.FinishReason != FinishStop {
		t.Errorf("expected finish reason %q, got %q", FinishStop, resp.FinishReason)
	}
}

func TestAnthropicProvider_MaxTokensDefaulted(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicSuccessBody("ok", "end_turn"))
	}))
	defer server.Close()

	p, _ := NewAnthropicProvider(Settings{APIKey: "k", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), Request{
		Model:    "claude-haiku-4-5",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotBody["max_tokens"] != float64(anthropicDefaultMaxTokens) {
		t.Errorf("expected defaulted max_tokens, got %v", gotBody["max_tokens"])
	}
}

func TestAnthropicProvider_LengthStop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(anthropicSuccessBody("cut off", "max_tokens"))
	}))
	defer server.Close()

	p, _ := NewAnthropicProvider(Settings{APIKey: "k", BaseURL: server.URL})
	resp, err := p.Complete(context.Background(), Request{
		Model:    "claude-haiku-4-5",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.FinishReason != FinishLength {
		t.Errorf("expected finish reason %q, got %q", FinishLength, resp.FinishReason)
	}
}

func TestAnthropicProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "api_error", "message": "upstream trouble"},
		})
	}))
	defer server.Close()

	p, _ := NewAnthropicProvider(Settings{APIKey: "k", BaseURL: server.URL})
	_, err := p.Complete(context.Background(), Request{
		Model:    "claude-haiku-4-5",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", apiErr.StatusCode)
	}
	if !apiErr.Retryable() {
		t.Error("500 should be retryable")
	}
}

func TestAnthropicProvider_MissingKey(t *testing.T) {
	_, err := NewAnthropicProvider(Settings{Provider: ProviderAnthropic})
	var credErr *MissingCredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("expected MissingCredentialError, got %v", err)
	}
}
