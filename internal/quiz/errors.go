package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studykit/studykit/internal/extract"
	"github.com/studykit/studykit/internal/llm"
	"github.com/studykit/studykit/internal/prompt"
)

// ValidationError reports bad caller input: empty contexts, invalid
// provider settings. Local, never the provider's fault.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + strings.Join(e.Issues, "; ")
}

// SchemaValidationError means the model's payload parsed but has the
// wrong shape (wrong option count, out-of-range answer index).
// Distinct from a parse failure so callers can choose to regenerate.
type SchemaValidationError struct {
	Kind   QuestionKind
	Detail string
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("%s payload failed shape validation: %s", e.Kind, e.Detail)
}

// MissingCodeContentError is a quality gate, not a parse error: the
// question refers to code it never includes. Regenerating usually fixes it.
type MissingCodeContentError struct {
	Question string
}

func (e *MissingCodeContentError) Error() string {
	return "question refers to code but contains no code snippet"
}

// RequestError is the uniform error shape the service returns. It tags
// the underlying failure with the provider it happened against, a
// machine-readable code, the HTTP status when one exists, and whether
// retrying is worthwhile. Retryable is advisory; nothing here retries.
type RequestError struct {
	Provider  llm.ProviderID
	Code      string
	Status    int
	Retryable bool
	Err       error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s request failed (%s): %v", e.Provider, e.Code, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// wrapError folds any failure from the request lifecycle into a
// RequestError. Retryable defaults to true; only validation and
// configuration problems are marked permanent.
func wrapError(provider llm.ProviderID, err error) error {
	var (
		validationErr  *ValidationError
		configErr      *llm.ConfigurationError
		templateErr    *prompt.NotFoundError
		credentialErr  *llm.MissingCredentialError
		apiErr         *llm.APIError
		networkErr     *llm.NetworkError
		invalidErr     *llm.InvalidResponseError
		malformedErr   *extract.MalformedResponseError
		schemaErr      *SchemaValidationError
		missingCodeErr *MissingCodeContentError
	)

	re := &RequestError{Provider: provider, Retryable: true, Err: err}
	switch {
	case errors.As(err, &validationErr):
		re.Code = "validation"
		re.Retryable = false
	case errors.As(err, &configErr), errors.As(err, &templateErr):
		re.Code = "configuration"
		re.Retryable = false
	case errors.As(err, &credentialErr):
		re.Code = "missing_credential"
		re.Retryable = false
	case errors.As(err, &apiErr):
		re.Code = "provider_api"
		re.Status = apiErr.StatusCode
		re.Retryable = apiErr.Retryable()
	case errors.As(err, &networkErr):
		re.Code = "network"
	case errors.As(err, &invalidErr):
		re.Code = "invalid_response"
	case errors.As(err, &malformedErr):
		re.Code = "malformed_response"
	case errors.As(err, &schemaErr):
		re.Code = "schema_validation"
	case errors.As(err, &missingCodeErr):
		re.Code = "missing_code_content"
	default:
		re.Code = "unknown"
	}
	return re
}
