package quiz

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Payload shapes the templates demand from the model. Kept as plain
// maps so they compile through the jsonschema library unchanged.
var (
	multipleChoiceSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"options": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 4,
				"maxItems": 4,
			},
			"correctAnswer": map[string]any{
				"type":    "integer",
				"minimum": 0,
				"maximum": 3,
			},
			"explanation": map[string]any{
				"type": "string",
			},
		},
		"required": []any{"question", "options", "correctAnswer"},
	}

	dissertativeSchema = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"sampleAnswer": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"evaluationCriteria": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"minItems": 3,
				"maxItems": 4,
			},
		},
		"required": []any{"question", "sampleAnswer"},
	}
)

// schemaCache caches compiled schemas by kind.
var schemaCache sync.Map // map[QuestionKind]*jsonschema.Schema

func compiledSchema(kind QuestionKind) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(kind); ok {
		return cached.(*jsonschema.Schema), nil
	}

	var def map[string]any
	switch kind {
	case KindMultipleChoice:
		def = multipleChoiceSchema
	case KindDissertative:
		def = dissertativeSchema
	default:
		return nil, fmt.Errorf("no schema for question kind %q", kind)
	}

	// The jsonschema compiler wants a parsed JSON value; round-trip the
	// definition through encoding/json to normalize it.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://question-%s.json", kind)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(kind, compiled)
	return compiled, nil
}

// questionPayload is the wire shape shared by both question kinds.
type questionPayload struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswer      int      `json:"correctAnswer"`
	Explanation        string   `json:"explanation"`
	SampleAnswer       string   `json:"sampleAnswer"`
	EvaluationCriteria []string `json:"evaluationCriteria"`
}

// decodeQuestion validates the extracted payload against the schema for
// kind and decodes it. A shape violation is a SchemaValidationError.
func decodeQuestion(kind QuestionKind, payload any) (*questionPayload, error) {
	compiled, err := compiledSchema(kind)
	if err != nil {
		return nil, err
	}
	if err := compiled.Validate(payload); err != nil {
		return nil, &SchemaValidationError{Kind: kind, Detail: err.Error()}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &SchemaValidationError{Kind: kind, Detail: err.Error()}
	}
	var q questionPayload
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, &SchemaValidationError{Kind: kind, Detail: err.Error()}
	}
	return &q, nil
}
