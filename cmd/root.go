package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/studykit/studykit/internal/catalog"
	"github.com/studykit/studykit/internal/config"
	"github.com/studykit/studykit/internal/history"
	"github.com/studykit/studykit/internal/llm"
	"github.com/studykit/studykit/internal/prompt"
	"github.com/studykit/studykit/internal/quiz"
)

var rootCmd = &cobra.Command{
	Use:          "studykit",
	Short:        "AI-backed study question toolkit",
	Long:         "StudyKit generates quiz questions and grades answers over your own study material, using the AI provider you configure.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides STUDYKIT_CONFIG)")
	rootCmd.PersistentFlags().String("provider", "", "Provider to use (openai, anthropic, gemini, openrouter, ollama)")
	rootCmd.PersistentFlags().String("model", "", "Model identifier (defaults to the provider's recommended model)")
	rootCmd.PersistentFlags().String("language", "", "Prompt language: en or pt-BR")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(providersCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration for a command: file and env
// first, then flag overrides. When nothing selects a provider, the
// standard API key env vars are probed.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if s, _ := cfg.Settings(); s.APIKey == "" && s.Provider != llm.ProviderOllama {
		if discovered, ok := config.Discover(); ok {
			cfg.Provider = discovered.Provider
			cfg.OpenAI = mergeProvider(cfg.OpenAI, discovered.OpenAI)
			cfg.Anthropic = mergeProvider(cfg.Anthropic, discovered.Anthropic)
			cfg.Gemini = mergeProvider(cfg.Gemini, discovered.Gemini)
			cfg.OpenRouter = mergeProvider(cfg.OpenRouter, discovered.OpenRouter)
		}
	}

	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		cfg.Provider = p
	}
	if l, _ := cmd.Flags().GetString("language"); l != "" {
		cfg.Language = l
	}
	if m, _ := cmd.Flags().GetString("model"); m != "" {
		switch llm.ProviderID(cfg.Provider) {
		case llm.ProviderOpenAI:
			cfg.OpenAI.Model = m
		case llm.ProviderAnthropic:
			cfg.Anthropic.Model = m
		case llm.ProviderGemini:
			cfg.Gemini.Model = m
		case llm.ProviderOpenRouter:
			cfg.OpenRouter.Model = m
		case llm.ProviderOllama:
			cfg.Ollama.Model = m
		}
	}

	return cfg, nil
}

func mergeProvider(base, overlay config.ProviderConfig) config.ProviderConfig {
	if overlay.APIKey != "" {
		base.APIKey = overlay.APIKey
	}
	return base
}

// buildService assembles the quiz service with logging and the request
// history attached. The returned closer flushes the history store.
func buildService(cfg config.Config) (*quiz.Service, llm.Settings, func(), error) {
	settings, err := cfg.Settings()
	if err != nil {
		return nil, llm.Settings{}, nil, err
	}

	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	closer := func() {}
	var sink llm.RequestLog
	dbPath := cfg.HistoryDB
	if dbPath == "" {
		dbPath, err = history.DefaultPath()
		if err != nil {
			dbPath = ""
		}
	}
	if dbPath != "" {
		store, err := history.Open(dbPath)
		if err != nil {
			log.WithError(err).Warn("request history disabled")
		} else {
			sink = store
			closer = func() { store.Close() }
		}
	}

	svc := quiz.NewService(catalog.Default(), prompt.NewRegistry(),
		quiz.WithLogger(log), quiz.WithHistory(sink))
	return svc, settings, closer, nil
}

// resolveHistoryPath returns the history database path for a command.
func resolveHistoryPath(cfg config.Config) (string, error) {
	if cfg.HistoryDB != "" {
		return cfg.HistoryDB, nil
	}
	p, err := history.DefaultPath()
	if err != nil {
		return "", fmt.Errorf("resolve history path: %w", err)
	}
	return p, nil
}
