package llm

import "context"

// Purpose labels what a completion call is for. The catalog keys its
// token/temperature limits by purpose, and the logging decorator records
// it with every request.
type Purpose string

const (
	PurposeGeneration  Purpose = "generation"
	PurposeEvaluation  Purpose = "evaluation"
	PurposeElaboration Purpose = "elaboration"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose attaches a purpose label to the context.
func WithPurpose(ctx context.Context, purpose Purpose) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) Purpose {
	if v, ok := ctx.Value(purposeKey).(Purpose); ok {
		return v
	}
	return "unknown"
}
