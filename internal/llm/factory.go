package llm

import "fmt"

// New builds the adapter for the backend named in the settings. The
// ProviderID set is closed, so an unrecognized value is a programming
// error, reported as ConfigurationError.
func New(s Settings) (Provider, error) {
	switch s.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(s)
	case ProviderAnthropic:
		return NewAnthropicProvider(s)
	case ProviderGemini:
		return NewGeminiProvider(s)
	case ProviderOpenRouter:
		return NewOpenRouterProvider(s)
	case ProviderOllama:
		return NewOllamaProvider(s)
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, &ConfigurationError{
			Detail: fmt.Sprintf("unknown provider %q", s.Provider),
		}
	}
}
