package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wizpr/ringctl/config"
	"github.com/wizpr/ringctl/llm"
)

// llmCmd groups the LLM backend subcommands
var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Query the configured LLM backends",
}

var llmHealthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check reachability of every configured provider",
	Args:  cobra.NoArgs,
	RunE:  runLLMHealth,
}

var llmModelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models each provider offers",
	Args:  cobra.NoArgs,
	RunE:  runLLMModels,
}

var llmProvider string

func init() {
	llmCmd.AddCommand(llmHealthCmd)
	llmCmd.AddCommand(llmModelsCmd)
	llmCmd.PersistentFlags().StringVarP(&llmProvider, "provider", "p", "", "Restrict to one provider (ollama, openai, openai_compat)")
}

// buildRegistry registers every provider the settings document configures.
// OpenAI is skipped without an API key, matching the run loop.
func buildRegistry(settings *config.Settings) *llm.Registry {
	registry := llm.NewRegistry()
	registry.Register(llm.NewOllama(settings.Ollama.BaseURL))
	registry.Register(llm.NewCompat(settings.OpenAICompat.BaseURL, settings.OpenAICompat.APIKey))
	if settings.OpenAI.APIKey != "" {
		registry.Register(llm.NewOpenAI(settings.OpenAI.APIKey, settings.OpenAI.BaseURL))
	}
	return registry
}

// selectProviders resolves the --provider flag against the registry.
func selectProviders(registry *llm.Registry) ([]llm.Provider, error) {
	if llmProvider != "" {
		p := registry.Get(llmProvider)
		if p == nil {
			return nil, fmt.Errorf("unknown or unconfigured provider %q", llmProvider)
		}
		return []llm.Provider{p}, nil
	}
	var providers []llm.Provider
	for _, id := range registry.IDs() {
		providers = append(providers, registry.Get(id))
	}
	return providers, nil
}

func llmSetup(cmd *cobra.Command) ([]llm.Provider, *logrus.Logger, error) {
	logger, err := configureLogger(cmd)
	if err != nil {
		return nil, nil, err
	}

	store := config.NewStore(configPath, logger)
	registry := buildRegistry(store.Load())

	providers, err := selectProviders(registry)
	if err != nil {
		return nil, nil, err
	}

	cmd.SilenceUsage = true
	return providers, logger, nil
}

func runLLMHealth(cmd *cobra.Command, _ []string) error {
	providers, _, err := llmSetup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	for _, p := range providers {
		healthy, note := p.IsHealthy(ctx)
		status := color.GreenString("healthy")
		if !healthy {
			status = color.RedString("unreachable")
		}
		if note != "" {
			status += "  (" + note + ")"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID(), p.DisplayName(), status)
	}
	return nil
}

func runLLMModels(cmd *cobra.Command, _ []string) error {
	providers, logger, err := llmSetup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	for _, p := range providers {
		color.New(color.Bold).Printf("%s (%s)\n", p.ID(), p.DisplayName())
		models, err := p.ListModels(ctx)
		if err != nil {
			logger.WithError(err).WithField("provider", p.ID()).Debug("Model listing failed")
			color.Red("  error: %v", err)
			continue
		}
		if len(models) == 0 {
			color.New(color.Faint).Println("  no models reported")
			continue
		}
		for _, m := range models {
			fmt.Printf("  %s\n", m)
		}
	}
	return nil
}
