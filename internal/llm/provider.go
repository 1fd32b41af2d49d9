// Package llm abstracts the LLM backends studykit can talk to.
// Each backend is exposed through a Provider that performs exactly one
// network round trip per Complete call; error classification and any
// retry policy belong to the caller.
package llm

import "context"

// ProviderID identifies one of the supported backends. The set is closed:
// every switch over ProviderID in this package handles all of them plus a
// default branch that reports a configuration defect.
type ProviderID string

const (
	ProviderOpenAI     ProviderID = "openai"
	ProviderAnthropic  ProviderID = "anthropic"
	ProviderGemini     ProviderID = "gemini"
	ProviderOpenRouter ProviderID = "openrouter"
	ProviderOllama     ProviderID = "ollama"

	// ProviderMock is a deterministic in-process backend for tests and
	// offline runs. It is not part of the user-facing catalog.
	ProviderMock ProviderID = "mock"
)

// ProviderIDs lists the user-facing backends in declaration order.
var ProviderIDs = []ProviderID{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderGemini,
	ProviderOpenRouter,
	ProviderOllama,
}

// Provider is the per-backend adapter. Complete translates the normalized
// Request into the backend's wire protocol, performs one POST, and
// normalizes the reply. Adapters never retry and never recover; they raise
// MissingCredentialError, APIError, InvalidResponseError or NetworkError.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// ID returns the backend this adapter targets.
	ID() ProviderID
}

// Pinger is implemented by adapters that can cheaply test connectivity
// without spending tokens. Callers type-assert; backends without a cheap
// probe simply don't implement it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Role is the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Request describes one completion call in backend-neutral terms.
type Request struct {
	// Model is the backend model identifier. Never empty by the time an
	// adapter sees it; the orchestration layer resolves defaults.
	Model string

	// Messages is the ordered conversation. Backends without a system
	// role receive system turns through their dedicated mechanism
	// (see each adapter).
	Messages []Message

	// Temperature in [0,1]. Zero means "backend default" and is omitted
	// from the wire call.
	Temperature float64

	// MaxTokens caps the response length. Zero means "backend default"
	// except where the wire protocol requires a value.
	MaxTokens int
}

// Usage reports token consumption as the backend counted it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the normalized reply shape shared by all adapters.
type Response struct {
	// Content is the model output text, verbatim.
	Content string

	// Usage is zero-valued when the backend did not report it.
	Usage Usage

	// Model is the model that actually served the request, when reported.
	Model string

	// FinishReason is normalized to "stop" or "length" when the backend
	// maps cleanly, otherwise passed through as-is.
	FinishReason string
}

const (
	FinishStop   = "stop"
	FinishLength = "length"
)

// Settings carries the user-supplied connection parameters for one call.
// The core never persists it; callers own its lifecycle.
type Settings struct {
	Provider ProviderID

	// APIKey may be empty only for backends that require no credential.
	APIKey string

	// Model overrides the provider's default model when set.
	Model string

	// BaseURL overrides the backend endpoint. Mainly used for the local
	// backend and for OpenAI-compatible gateways.
	BaseURL string

	// Headers are extra HTTP headers attached to every wire call.
	Headers map[string]string
}
