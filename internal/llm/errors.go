package llm

import (
	"fmt"
	"net/http"
)

// ConfigurationError reports a programming defect: an identifier outside
// the closed provider set reached the factory. It is never caused by user
// input and is not retryable.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Detail)
}

// MissingCredentialError is raised before any network call when a backend
// requires an API key and none was supplied.
type MissingCredentialError struct {
	Provider ProviderID
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s: API key is required", e.Provider)
}

// APIError is a non-2xx reply from the backend. Message carries the
// provider-reported error text when the body could be parsed, otherwise
// the HTTP status text.
type APIError struct {
	Provider   ProviderID
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether the status suggests a transient condition.
// 429 and 5xx are transient; other 4xx are not.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// NetworkError is a transport-level failure: DNS, refused connection,
// timeout. Always retryable.
type NetworkError struct {
	Provider ProviderID
	// Hint is a user-actionable message, set for the local backend
	// ("confirm Ollama is running").
	Hint string
	Err  error
}

func (e *NetworkError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Hint, e.Err)
	}
	return fmt.Sprintf("%s: network error: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// InvalidResponseError is a 2xx reply whose body does not match the
// backend's documented shape.
type InvalidResponseError struct {
	Provider ProviderID
	Err      error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Provider, e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }
