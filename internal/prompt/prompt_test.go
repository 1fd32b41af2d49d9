package prompt

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRegistry_AllTemplatesPresent(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{TemplateMultipleChoice, TemplateDissertative, TemplateEvaluation, TemplateElaboration} {
		tmpl, err := r.Template(id)
		if err != nil {
			t.Errorf("%s: %v", id, err)
			continue
		}
		if len(tmpl.RequiredVars) == 0 {
			t.Errorf("%s: no declared variables", id)
		}
		for _, lang := range []Language{LangEnglish, LangPortuguese} {
			body, err := r.Get(id, lang)
			if err != nil || body == "" {
				t.Errorf("%s/%s: missing body", id, lang)
			}
		}
	}
}

func TestRegistry_UnknownTemplate(t *testing.T) {
	r := NewRegistry()
	_, err := r.Template("question.trueFalse")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRegistry_LanguageFallback(t *testing.T) {
	r := NewRegistry()
	en, err := r.Get(TemplateEvaluation, LangEnglish)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fallback, err := r.Get(TemplateEvaluation, Language("fr"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fallback != en {
		t.Error("unknown language should fall back to the default body")
	}
}

func TestFill_NoPlaceholdersRemain(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{TemplateMultipleChoice, TemplateDissertative, TemplateEvaluation, TemplateElaboration} {
		tmpl, err := r.Template(id)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}

		vars := make(map[string]string, len(tmpl.RequiredVars))
		for i, name := range tmpl.RequiredVars {
			vars[name] = fmt.Sprintf("value-%d", i)
		}

		for lang, body := range tmpl.Body {
			filled := Fill(body, vars)
			for _, name := range tmpl.RequiredVars {
				token := "{" + name + "}"
				if strings.Contains(filled, token) {
					t.Errorf("%s/%s: %s not substituted", id, lang, token)
				}
				if !strings.Contains(filled, vars[name]) {
					t.Errorf("%s/%s: value for %s missing from output", id, lang, name)
				}
			}
		}
	}
}

func TestFill_MissingVariableBecomesEmpty(t *testing.T) {
	out := Fill("a {known} and {unknown} b", map[string]string{"known": "x"})
	if out != "a x and  b" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestFill_SinglePass(t *testing.T) {
	// A substituted value containing a placeholder token must not be
	// expanded again.
	out := Fill("{a}", map[string]string{"a": "{b}", "b": "nope"})
	if out != "{b}" {
		t.Errorf("expected single-pass substitution, got %q", out)
	}
}

func TestFill_LeavesJSONExamplesAlone(t *testing.T) {
	r := NewRegistry()
	body, err := r.Get(TemplateMultipleChoice, LangEnglish)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	filled := Fill(body, map[string]string{
		"contexts": "c", "instructions": "i", "previousQuestions": "p", "difficulty": "d",
	})
	if !strings.Contains(filled, `{"question": "..."`) {
		t.Error("JSON shape example must survive variable filling")
	}
}

func TestValidateVariables(t *testing.T) {
	r := NewRegistry()
	missing, err := r.ValidateVariables(TemplateEvaluation, map[string]string{
		"question":   "q",
		"userAnswer": "a",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]bool{"correctAnswer": true, "questionType": true}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing vars, got %v", len(want), missing)
	}
	for _, name := range missing {
		if !want[name] {
			t.Errorf("unexpected missing var %q", name)
		}
	}
}
