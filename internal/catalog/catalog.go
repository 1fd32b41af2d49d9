// Package catalog holds the static provider/model metadata: which
// backends exist, which models they serve, what each model can do, and
// what settings are valid for them. The catalog is built once at startup
// and injected; it never mutates and is safe for concurrent readers.
package catalog

import (
	"fmt"
	"net/url"

	"github.com/studykit/studykit/internal/llm"
)

// CostTier orders models by price bracket.
type CostTier int

const (
	CostFree CostTier = iota
	CostLow
	CostMedium
	CostHigh
)

func (t CostTier) String() string {
	switch t {
	case CostFree:
		return "free"
	case CostLow:
		return "low"
	case CostMedium:
		return "medium"
	case CostHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Capabilities flags what a model is suited for.
type Capabilities struct {
	MultipleChoice bool
	Dissertative   bool
	Evaluation     bool
	Reasoning      bool
	CodeGeneration bool
}

// Model describes one model a provider serves.
type Model struct {
	ID            string
	Name          string
	Description   string
	ContextWindow int
	Cost          CostTier
	Caps          Capabilities
	Recommended   bool
}

// Limits caps one purpose's completion parameters.
type Limits struct {
	MaxTokens   int
	Temperature float64
}

// ProviderConfig is the static descriptor for one backend.
type ProviderConfig struct {
	ID                 llm.ProviderID
	Name               string
	RequiresCredential bool
	CredentialLabel    string
	CredentialHint     string
	SetupInstructions  []string
	Models             []Model
	DefaultModel       string

	// DefaultBaseURL is set for backends with a conventional local
	// endpoint; Local marks them for base-URL validation.
	DefaultBaseURL string
	Local          bool

	Limits map[llm.Purpose]Limits
}

// Catalog is the read-only registry of provider descriptors.
type Catalog struct {
	order     []llm.ProviderID
	providers map[llm.ProviderID]ProviderConfig
}

// Get returns the descriptor for the given backend. An identifier outside
// the closed set is a programming defect, reported as ConfigurationError.
func (c *Catalog) Get(id llm.ProviderID) (ProviderConfig, error) {
	cfg, ok := c.providers[id]
	if !ok {
		return ProviderConfig{}, &llm.ConfigurationError{
			Detail: fmt.Sprintf("provider %q is not in the catalog", id),
		}
	}
	return cfg, nil
}

// List returns all descriptors in declaration order.
func (c *Catalog) List() []ProviderConfig {
	out := make([]ProviderConfig, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.providers[id])
	}
	return out
}

// Model looks up one model of one provider. Absence is a normal outcome;
// callers fall back to the provider default.
func (c *Catalog) Model(id llm.ProviderID, modelID string) (Model, bool) {
	cfg, ok := c.providers[id]
	if !ok {
		return Model{}, false
	}
	for _, m := range cfg.Models {
		if m.ID == modelID {
			return m, true
		}
	}
	return Model{}, false
}

// LimitsFor returns the purpose limits for a provider, zero-valued when
// the provider declares none for that purpose.
func (c *Catalog) LimitsFor(id llm.ProviderID, purpose llm.Purpose) Limits {
	cfg, ok := c.providers[id]
	if !ok {
		return Limits{}
	}
	return cfg.Limits[purpose]
}

// ValidationResult reports the outcome of settings validation.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate checks user-supplied settings against the provider descriptor.
// It is pure and synchronous; no I/O happens here.
func (c *Catalog) Validate(id llm.ProviderID, s llm.Settings) ValidationResult {
	cfg, ok := c.providers[id]
	if !ok {
		return ValidationResult{Errors: []string{fmt.Sprintf("unknown provider %q", id)}}
	}

	var errs []string

	if cfg.RequiresCredential && s.APIKey == "" {
		errs = append(errs, fmt.Sprintf("%s requires an API key", cfg.Name))
	}

	// Model membership is checked only against backends that declare a
	// model list; the mock backend accepts anything.
	if s.Model != "" && len(cfg.Models) > 0 {
		if _, found := c.Model(id, s.Model); !found {
			errs = append(errs, fmt.Sprintf("model %q is not available for %s", s.Model, cfg.Name))
		}
	}

	if cfg.Local && s.BaseURL != "" {
		if u, err := url.Parse(s.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Sprintf("base URL %q is not a valid URL", s.BaseURL))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
