// Package config loads provider settings from an optional YAML file and
// the environment. Precedence, lowest to highest: defaults, file, env.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/studykit/studykit/internal/llm"
	"github.com/studykit/studykit/internal/prompt"
)

// ProviderConfig holds the per-backend connection settings.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// Config is the full application configuration.
type Config struct {
	// Provider selects which backend to use.
	// Values: "openai", "anthropic", "gemini", "openrouter", "ollama", "mock"
	Provider string `yaml:"provider"`

	// Language selects the prompt language: "en" or "pt-BR".
	Language string `yaml:"language"`

	OpenAI     ProviderConfig `yaml:"openai"`
	Anthropic  ProviderConfig `yaml:"anthropic"`
	Gemini     ProviderConfig `yaml:"gemini"`
	OpenRouter ProviderConfig `yaml:"openrouter"`
	Ollama     ProviderConfig `yaml:"ollama"`

	// HistoryDB overrides the request-history database path.
	HistoryDB string `yaml:"history_db"`

	// Listen is the HTTP server bind address.
	Listen string `yaml:"listen"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Provider: "openai",
		Language: string(prompt.DefaultLanguage),
		Listen:   "127.0.0.1:8799",
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (or the default location when path is empty; a missing file is fine),
// then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = defaultFilePath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func defaultFilePath() string {
	if p := os.Getenv("STUDYKIT_CONFIG"); p != "" {
		return p
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "studykit", "config.yaml")
}

func (c *Config) applyEnv() {
	setEnv(&c.Provider, "STUDYKIT_PROVIDER")
	setEnv(&c.Language, "STUDYKIT_LANGUAGE")
	setEnv(&c.HistoryDB, "STUDYKIT_DB")
	setEnv(&c.Listen, "STUDYKIT_LISTEN")

	setEnv(&c.OpenAI.APIKey, "STUDYKIT_OPENAI_API_KEY")
	setEnv(&c.OpenAI.Model, "STUDYKIT_OPENAI_MODEL")
	setEnv(&c.OpenAI.BaseURL, "STUDYKIT_OPENAI_BASE_URL")

	setEnv(&c.Anthropic.APIKey, "STUDYKIT_ANTHROPIC_API_KEY")
	setEnv(&c.Anthropic.Model, "STUDYKIT_ANTHROPIC_MODEL")

	setEnv(&c.Gemini.APIKey, "STUDYKIT_GEMINI_API_KEY")
	setEnv(&c.Gemini.Model, "STUDYKIT_GEMINI_MODEL")

	setEnv(&c.OpenRouter.APIKey, "STUDYKIT_OPENROUTER_API_KEY")
	setEnv(&c.OpenRouter.Model, "STUDYKIT_OPENROUTER_MODEL")

	setEnv(&c.Ollama.Model, "STUDYKIT_OLLAMA_MODEL")
	setEnv(&c.Ollama.BaseURL, "STUDYKIT_OLLAMA_BASE_URL")
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Discover probes the conventional API key variables in priority order
// and returns a Config for the first provider whose key is set. The
// second return is false when none is found.
func Discover() (Config, bool) {
	cfg := Default()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = string(llm.ProviderGemini)
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = string(llm.ProviderOpenAI)
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = string(llm.ProviderAnthropic)
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = string(llm.ProviderOpenRouter)
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// PromptLanguage returns the configured prompt language, falling back
// to the default for unknown values.
func (c Config) PromptLanguage() prompt.Language {
	switch prompt.Language(c.Language) {
	case prompt.LangEnglish, prompt.LangPortuguese:
		return prompt.Language(c.Language)
	}
	return prompt.DefaultLanguage
}

// Settings resolves the selected provider into llm.Settings.
func (c Config) Settings() (llm.Settings, error) {
	id := llm.ProviderID(c.Provider)

	var pc ProviderConfig
	switch id {
	case llm.ProviderOpenAI:
		pc = c.OpenAI
	case llm.ProviderAnthropic:
		pc = c.Anthropic
	case llm.ProviderGemini:
		pc = c.Gemini
	case llm.ProviderOpenRouter:
		pc = c.OpenRouter
	case llm.ProviderOllama:
		pc = c.Ollama
	case llm.ProviderMock:
	default:
		return llm.Settings{}, &llm.ConfigurationError{
			Detail: fmt.Sprintf("unknown provider %q", c.Provider),
		}
	}

	return llm.Settings{
		Provider: id,
		APIKey:   pc.APIKey,
		Model:    pc.Model,
		BaseURL:  pc.BaseURL,
	}, nil
}
