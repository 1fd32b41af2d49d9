package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider targets the OpenRouter gateway. OpenRouter speaks the
// OpenAI chat completions protocol, so the adapter delegates the wire work
// to the same SDK with a different base URL.
type OpenRouterProvider struct {
	inner *OpenAIProvider
}

// NewOpenRouterProvider creates an adapter for the OpenRouter API.
func NewOpenRouterProvider(s Settings) (*OpenRouterProvider, error) {
	if s.APIKey == "" {
		return nil, &MissingCredentialError{Provider: ProviderOpenRouter}
	}

	baseURL := s.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	cfg := openai.DefaultConfig(s.APIKey)
	cfg.BaseURL = baseURL
	if hc := httpClientWith(s.Headers); hc != nil {
		cfg.HTTPClient = hc
	}

	return &OpenRouterProvider{
		inner: &OpenAIProvider{
			client: openai.NewClientWithConfig(cfg),
			id:     ProviderOpenRouter,
		},
	}, nil
}

func (p *OpenRouterProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	return p.inner.Complete(ctx, req)
}

func (p *OpenRouterProvider) ID() ProviderID { return ProviderOpenRouter }
