package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaProvider implements Provider over the native Ollama chat API.
// Ollama runs locally, requires no credential, and sends no auth header.
type OllamaProvider struct {
	baseURL string
	headers map[string]string
	client  *http.Client
}

// NewOllamaProvider creates an adapter for a local Ollama server.
func NewOllamaProvider(s Settings) (*OllamaProvider, error) {
	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: s.Headers,
		client:  http.DefaultClient,
	}, nil
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool   `json:"done"`
	DoneReason      string `json:"done_reason"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

func (p *OllamaProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	olReq := ollamaRequest{
		Model:    req.Model,
		Messages: buildOllamaMessages(req.Messages),
		Stream:   false,
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		opts := &ollamaOptions{}
		if req.MaxTokens > 0 {
			opts.NumPredict = req.MaxTokens
		}
		if req.Temperature > 0 {
			temp := req.Temperature
			opts.Temperature = &temp
		}
		olReq.Options = opts
	}

	body, err := json.Marshal(olReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{
			Provider: ProviderOllama,
			Hint:     fmt.Sprintf("Ollama not reachable at %s (is it running?)", p.baseURL),
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Provider: ProviderOllama, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Provider:   ProviderOllama,
			StatusCode: resp.StatusCode,
			Message:    ollamaErrorMessage(respBody, resp.StatusCode),
		}
	}

	var olResp ollamaResponse
	if err := json.Unmarshal(respBody, &olResp); err != nil {
		return nil, &InvalidResponseError{Provider: ProviderOllama, Err: err}
	}
	if olResp.Message.Content == "" && !olResp.Done {
		return nil, &InvalidResponseError{
			Provider: ProviderOllama,
			Err:      fmt.Errorf("no message content in response"),
		}
	}

	return &Response{
		Content: olResp.Message.Content,
		Usage: Usage{
			PromptTokens:     olResp.PromptEvalCount,
			CompletionTokens: olResp.EvalCount,
			TotalTokens:      olResp.PromptEvalCount + olResp.EvalCount,
		},
		Model:        olResp.Model,
		FinishReason: mapOllamaDoneReason(olResp.DoneReason),
	}, nil
}

func (p *OllamaProvider) ID() ProviderID { return ProviderOllama }

// Ping checks that the local server answers at all. Used by the
// connection-test surfaces, not by Complete.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return &NetworkError{
			Provider: ProviderOllama,
			Hint:     fmt.Sprintf("Ollama not reachable at %s (is it running?)", p.baseURL),
			Err:      err,
		}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return &APIError{Provider: ProviderOllama, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return nil
}

// buildOllamaMessages passes roles through unchanged; the native chat API
// accepts system, user and assistant.
func buildOllamaMessages(msgs []Message) []ollamaMessage {
	out := make([]ollamaMessage, len(msgs))
	for i, m := range msgs {
		out[i] = ollamaMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}

func ollamaErrorMessage(body []byte, status int) string {
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != "" {
		return parsed.Error
	}
	return http.StatusText(status)
}

func mapOllamaDoneReason(reason string) string {
	switch reason {
	case "stop":
		return FinishStop
	case "length":
		return FinishLength
	default:
		return reason
	}
}
