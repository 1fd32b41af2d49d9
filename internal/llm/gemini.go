package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements Provider over the Gemini generateContent REST
// API. Authentication is the API key appended as a query parameter; there
// is no auth header.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	headers map[string]string
	client  *http.Client
}

// NewGeminiProvider creates an adapter for the Gemini API.
func NewGeminiProvider(s Settings) (*GeminiProvider, error) {
	if s.APIKey == "" {
		return nil, &MissingCredentialError{Provider: ProviderGemini}
	}

	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &GeminiProvider{
		apiKey:  s.APIKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: s.Headers,
		client:  http.DefaultClient,
	}, nil
}

type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (p *GeminiProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	gemReq := buildGeminiRequest(req)

	body, err := json.Marshal(gemReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		p.baseURL, req.Model, url.QueryEscape(p.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range p.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Provider: ProviderGemini, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Provider: ProviderGemini, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Provider:   ProviderGemini,
			StatusCode: resp.StatusCode,
			Message:    geminiErrorMessage(respBody, resp.StatusCode),
		}
	}

	var gemResp geminiResponse
	if err := json.Unmarshal(respBody, &gemResp); err != nil {
		return nil, &InvalidResponseError{Provider: ProviderGemini, Err: err}
	}
	if len(gemResp.Candidates) == 0 || len(gemResp.Candidates[0].Content.Parts) == 0 {
		return nil, &InvalidResponseError{
			Provider: ProviderGemini,
			Err:      fmt.Errorf("no content in response"),
		}
	}

	var text strings.Builder
	for _, part := range gemResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return &Response{
		Content: text.String(),
		Usage: Usage{
			PromptTokens:     gemResp.UsageMetadata.PromptTokenCount,
			CompletionTokens: gemResp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      gemResp.UsageMetadata.TotalTokenCount,
		},
		Model:        req.Model,
		FinishReason: mapGeminiFinishReason(gemResp.Candidates[0].FinishReason),
	}, nil
}

func (p *GeminiProvider) ID() ProviderID { return ProviderGemini }

// buildGeminiRequest maps roles onto the Gemini vocabulary: "assistant"
// becomes "model", and system turns go through the dedicated
// systemInstruction field, newline-joined in order.
func buildGeminiRequest(req Request) geminiRequest {
	var system []string
	contents := make([]geminiContent, 0, len(req.Messages))

	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, geminiContent{
				Role:  "model",
				Parts: []geminiPart{{Text: m.Content}},
			})
		default:
			contents = append(contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: m.Content}},
			})
		}
	}

	out := geminiRequest{Contents: contents}
	if len(system) > 0 {
		out.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: strings.Join(system, "\n")}},
		}
	}
	if req.MaxTokens > 0 || req.Temperature > 0 {
		cfg := &geminiGenConfig{}
		if req.MaxTokens > 0 {
			cfg.MaxOutputTokens = req.MaxTokens
		}
		if req.Temperature > 0 {
			temp := req.Temperature
			cfg.Temperature = &temp
		}
		out.GenerationConfig = cfg
	}
	return out
}

// geminiErrorMessage pulls the provider-reported message out of an error
// body, tolerating non-JSON and empty bodies.
func geminiErrorMessage(body []byte, status int) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return http.StatusText(status)
}

func mapGeminiFinishReason(reason string) string {
	switch reason {
	case "STOP":
		return FinishStop
	case "MAX_TOKENS":
		return FinishLength
	default:
		return reason
	}
}
