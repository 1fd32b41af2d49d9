package catalog

import "github.com/studykit/studykit/internal/llm"

// Default builds the catalog of the five supported backends. Declaration
// order here is the order List returns.
func Default() *Catalog {
	configs := []ProviderConfig{
		openAIConfig(),
		anthropicConfig(),
		geminiConfig(),
		openRouterConfig(),
		ollamaConfig(),
	}

	c := &Catalog{providers: make(map[llm.ProviderID]ProviderConfig, len(configs)+1)}
	for _, cfg := range configs {
		c.order = append(c.order, cfg.ID)
		c.providers[cfg.ID] = cfg
	}

	// The mock backend is resolvable but hidden: requests may select it
	// for offline use, yet List never advertises it.
	c.providers[llm.ProviderMock] = mockConfig()
	return c
}

// defaultLimits are shared by the cloud providers; question generation
// runs warmer than evaluation so repeated questions vary.
func defaultLimits() map[llm.Purpose]Limits {
	return map[llm.Purpose]Limits{
		llm.PurposeGeneration:  {MaxTokens: 2048, Temperature: 0.7},
		llm.PurposeEvaluation:  {MaxTokens: 1024, Temperature: 0.3},
		llm.PurposeElaboration: {MaxTokens: 1024, Temperature: 0.7},
	}
}

func allCaps() Capabilities {
	return Capabilities{
		MultipleChoice: true,
		Dissertative:   true,
		Evaluation:     true,
		Reasoning:      true,
		CodeGeneration: true,
	}
}

func mockConfig() ProviderConfig {
	return ProviderConfig{
		ID:                 llm.ProviderMock,
		Name:               "Mock (offline)",
		RequiresCredential: false,
		Local:              true,
		Limits:             defaultLimits(),
	}
}

func openAIConfig() ProviderConfig {
	return ProviderConfig{
		ID:                 llm.ProviderOpenAI,
		Name:               "OpenAI",
		RequiresCredential: true,
		CredentialLabel:    "API key",
		CredentialHint:     "sk-...",
		SetupInstructions: []string{
			"Create an account at platform.openai.com",
			"Open the API keys page and create a new secret key",
			"Paste the key here; it is kept only on this device",
		},
		DefaultModel: "gpt-4o-mini",
		Models: []Model{
			{
				ID: "gpt-4o-mini", Name: "GPT-4o mini",
				Description:   "Fast and inexpensive, good default for question generation",
				ContextWindow: 128000, Cost: CostLow, Caps: allCaps(), Recommended: true,
			},
			{
				ID: "gpt-4o", Name: "GPT-4o",
				Description:   "Strong general model",
				ContextWindow: 128000, Cost: CostMedium, Caps: allCaps(),
			},
			{
				ID: "o4-mini", Name: "o4-mini",
				Description:   "Reasoning model for harder evaluation tasks",
				ContextWindow: 200000, Cost: CostMedium,
				Caps: Capabilities{MultipleChoice: true, Dissertative: true, Evaluation: true, Reasoning: true, CodeGeneration: true},
			},
		},
		Limits: defaultLimits(),
	}
}

func anthropicConfig() ProviderConfig {
	return ProviderConfig{
		ID:                 llm.ProviderAnthropic,
		Name:               "Anthropic",
		RequiresCredential: true,
		CredentialLabel:    "API key",
		CredentialHint:     "sk-ant-...",
		SetupInstructions: []string{
			"Create an account at console.anthropic.com",
			"Generate an API key under Settings → API keys",
			"Paste the key here; it is kept only on this device",
		},
		DefaultModel: "claude-haiku-4-5",
		Models: []Model{
			{
				ID: "claude-haiku-4-5", Name: "Claude Haiku 4.5",
				Description:   "Fast and inexpensive, good default for question generation",
				ContextWindow: 200000, Cost: CostLow, Caps: allCaps(), Recommended: true,
			},
			{
				ID: "claude-sonnet-4-5", Name: "Claude Sonnet 4.5",
				Description:   "Strong general model, best feedback quality",
				ContextWindow: 200000, Cost: CostMedium, Caps: allCaps(),
			},
		},
		Limits: defaultLimits(),
	}
}

func geminiConfig() ProviderConfig {
	return ProviderConfig{
		ID:                 llm.ProviderGemini,
		Name:               "Google Gemini",
		RequiresCredential: true,
		CredentialLabel:    "API key",
		CredentialHint:     "AIza...",
		SetupInstructions: []string{
			"Open aistudio.google.com and sign in",
			"Create an API key (free tier available)",
			"Paste the key here; it is kept only on this device",
		},
		DefaultModel: "gemini-2.5-flash",
		Models: []Model{
			{
				ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash",
				Description:   "Fast model with a generous free tier",
				ContextWindow: 1048576, Cost: CostFree, Caps: allCaps(), Recommended: true,
			},
			{
				ID: "gemini-2.5-flash-lite", Name: "Gemini 2.5 Flash Lite",
				Description:   "Cheapest option for simple question types",
				ContextWindow: 1048576, Cost: CostFree,
				Caps: Capabilities{MultipleChoice: true, Dissertative: true, Evaluation: true},
			},
			{
				ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro",
				Description:   "Strongest Gemini model",
				ContextWindow: 1048576, Cost: CostMedium, Caps: allCaps(),
			},
		},
		Limits: defaultLimits(),
	}
}

func openRouterConfig() ProviderConfig {
	return ProviderConfig{
		ID:                 llm.ProviderOpenRouter,
		Name:               "OpenRouter",
		RequiresCredential: true,
		CredentialLabel:    "API key",
		CredentialHint:     "sk-or-...",
		SetupInstructions: []string{
			"Create an account at openrouter.ai",
			"Generate an API key under Keys",
			"Free-tier models work without adding credit",
		},
		DefaultModel: "meta-llama/llama-3.3-70b-instruct:free",
		Models: []Model{
			{
				ID: "meta-llama/llama-3.3-70b-instruct:free", Name: "Llama 3.3 70B (free)",
				Description:   "Free tier, rate limited",
				ContextWindow: 131072, Cost: CostFree,
				Caps: Capabilities{MultipleChoice: true, Dissertative: true, Evaluation: true, CodeGeneration: true},
				Recommended: true,
			},
			{
				ID: "google/gemini-2.0-flash-exp:free", Name: "Gemini 2.0 Flash (free)",
				Description:   "Free tier, rate limited",
				ContextWindow: 1048576, Cost: CostFree,
				Caps: Capabilities{MultipleChoice: true, Dissertative: true, Evaluation: true},
			},
			{
				ID: "anthropic/claude-sonnet-4.5", Name: "Claude Sonnet 4.5",
				Description:   "Paid routing to Anthropic",
				ContextWindow: 200000, Cost: CostMedium, Caps: allCaps(),
			},
		},
		Limits: defaultLimits(),
	}
}

func ollamaConfig() ProviderConfig {
	return ProviderConfig{
		ID:                 llm.ProviderOllama,
		Name:               "Ollama (local)",
		RequiresCredential: false,
		SetupInstructions: []string{
			"Install Ollama from ollama.com",
			"Pull a model, e.g.: ollama pull llama3.1:8b",
			"Keep the Ollama service running while studying",
		},
		DefaultModel:   "llama3.1:8b",
		DefaultBaseURL: "http://localhost:11434",
		Local:          true,
		Models: []Model{
			{
				ID: "llama3.1:8b", Name: "Llama 3.1 8B",
				Description:   "Runs on most machines",
				ContextWindow: 131072, Cost: CostFree,
				Caps: Capabilities{MultipleChoice: true, Dissertative: true, Evaluation: true},
				Recommended: true,
			},
			{
				ID: "qwen2.5-coder:7b", Name: "Qwen 2.5 Coder 7B",
				Description:   "Better for programming topics",
				ContextWindow: 131072, Cost: CostFree,
				Caps: Capabilities{MultipleChoice: true, Dissertative: true, Evaluation: true, CodeGeneration: true},
			},
			{
				ID: "mistral:7b", Name: "Mistral 7B",
				Description:   "Lightweight alternative",
				ContextWindow: 32768, Cost: CostFree,
				Caps: Capabilities{MultipleChoice: true, Dissertative: true},
			},
		},
		// Local models are slower; keep responses shorter.
		Limits: map[llm.Purpose]Limits{
			llm.PurposeGeneration:  {MaxTokens: 1536, Temperature: 0.7},
			llm.PurposeEvaluation:  {MaxTokens: 768, Temperature: 0.3},
			llm.PurposeElaboration: {MaxTokens: 768, Temperature: 0.7},
		},
	}
}
