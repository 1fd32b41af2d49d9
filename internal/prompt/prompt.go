// Package prompt is the static registry of instruction templates. Each
// template carries a body per language plus the list of variables it
// expects; filling is literal single-pass text substitution.
package prompt

import (
	"fmt"
	"regexp"

	"github.com/studykit/studykit/internal/llm"
)

// Language is a BCP 47-ish tag for the two languages the app ships.
type Language string

const (
	LangEnglish    Language = "en"
	LangPortuguese Language = "pt-BR"
)

// DefaultLanguage is the fallback when a template has no body for the
// requested language.
const DefaultLanguage = LangEnglish

// Template ids, one per (purpose, question kind) pair.
const (
	TemplateMultipleChoice = "question.multipleChoice"
	TemplateDissertative   = "question.dissertative"
	TemplateEvaluation     = "evaluation"
	TemplateElaboration    = "elaboration"
)

// Template is one catalog entry. Immutable after registry construction.
type Template struct {
	ID           string
	Purpose      llm.Purpose
	RequiredVars []string
	Body         map[Language]string
}

// NotFoundError reports an unknown template id. Template ids are a closed
// set, so this indicates a programming defect.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("prompt template %q not found", e.ID)
}

// Registry holds the template catalog.
type Registry struct {
	templates map[string]Template
}

// NewRegistry builds the registry with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{templates: make(map[string]Template)}
	for _, t := range builtinTemplates() {
		r.templates[t.ID] = t
	}
	return r
}

// Template returns the catalog entry for an id.
func (r *Registry) Template(id string) (Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return Template{}, &NotFoundError{ID: id}
	}
	return t, nil
}

// Get returns the body for (id, language), falling back to the default
// language when the requested one is absent.
func (r *Registry) Get(id string, lang Language) (string, error) {
	t, err := r.Template(id)
	if err != nil {
		return "", err
	}
	if body, ok := t.Body[lang]; ok {
		return body, nil
	}
	return t.Body[DefaultLanguage], nil
}

// ValidateVariables reports which of the template's declared variables
// are missing from vars. Diagnostic only: Fill never fails on missing
// variables, it substitutes an empty string.
func (r *Registry) ValidateVariables(id string, vars map[string]string) ([]string, error) {
	t, err := r.Template(id)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range t.RequiredVars {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z][A-Za-z0-9_]*)\}`)

// Fill substitutes every {name} placeholder in body. Placeholders with no
// supplied value become the empty string; none are left unresolved.
// Substitution is a single pass over the original body, so a substituted
// value is never itself re-scanned for placeholders.
func Fill(body string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(body, func(tok string) string {
		name := tok[1 : len(tok)-1]
		return vars[name]
	})
}
