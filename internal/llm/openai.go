package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider over the OpenAI chat completions API.
// A BaseURL override points it at any OpenAI-compatible gateway.
type OpenAIProvider struct {
	client *openai.Client
	id     ProviderID
}

// NewOpenAIProvider creates an adapter for the OpenAI API.
func NewOpenAIProvider(s Settings) (*OpenAIProvider, error) {
	if s.APIKey == "" {
		return nil, &MissingCredentialError{Provider: ProviderOpenAI}
	}

	cfg := openai.DefaultConfig(s.APIKey)
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	if hc := httpClientWith(s.Headers); hc != nil {
		cfg.HTTPClient = hc
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		id:     ProviderOpenAI,
	}, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: buildOpenAIMessages(req.Messages),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		chatReq.Temperature = float32(req.Temperature)
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, mapOpenAIError(p.id, err)
	}

	if len(resp.Choices) == 0 {
		return nil, &InvalidResponseError{
			Provider: p.id,
			Err:      fmt.Errorf("no choices in response"),
		}
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Model:        resp.Model,
		FinishReason: mapOpenAIFinishReason(resp.Choices[0].FinishReason),
	}, nil
}

func (p *OpenAIProvider) ID() ProviderID { return p.id }

func buildOpenAIMessages(msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case RoleSystem:
			role = openai.ChatMessageRoleSystem
		case RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		out[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}
	return out
}

func mapOpenAIFinishReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonStop:
		return FinishStop
	case openai.FinishReasonLength:
		return FinishLength
	default:
		return string(reason)
	}
}

// mapOpenAIError classifies SDK errors into the adapter taxonomy. The SDK
// reports non-2xx statuses as APIError (parsed JSON body) or RequestError
// (anything else); everything below that is transport failure.
func mapOpenAIError(id ProviderID, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &APIError{
			Provider:   id,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &APIError{
			Provider:   id,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
			Err:        err,
		}
	}

	return &NetworkError{Provider: id, Err: err}
}
