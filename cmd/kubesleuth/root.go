package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubesleuth/kubesleuth/internal/agent"
	"github.com/kubesleuth/kubesleuth/internal/config"
	"github.com/kubesleuth/kubesleuth/internal/llm"
	"github.com/kubesleuth/kubesleuth/internal/logging"
	"github.com/kubesleuth/kubesleuth/internal/tools"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "kubesleuth",
	Short: "Natural-language Kubernetes troubleshooting",
	Long: `
██╗  ██╗██╗   ██╗██████╗ ███████╗███████╗██╗     ███████╗██╗   ██╗████████╗██╗  ██╗
██║ ██╔╝██║   ██║██╔══██╗██╔════╝██╔════╝██║     ██╔════╝██║   ██║╚══██╔══╝██║  ██║
█████╔╝ ██║   ██║██████╔╝█████╗  ███████╗██║     █████╗  ██║   ██║   ██║   ███████║
██╔═██╗ ██║   ██║██╔══██╗██╔══╝  ╚════██║██║     ██╔══╝  ██║   ██║   ██║   ██╔══██║
██║  ██╗╚██████╔╝██████╔╝███████╗███████║███████╗███████╗╚██████╔╝   ██║   ██║  ██║
╚═╝  ╚═╝ ╚═════╝ ╚═════╝ ╚══════╝╚══════╝╚══════╝╚══════╝ ╚═════╝    ╚═╝   ╚═╝  ╚═╝

  Ask questions about your cluster in plain English. The agent reasons
  step by step, runs read-only kubectl commands, and explains what it found.

Usage:
  kubesleuth ask "why is my-app-pod crashing?"
  kubesleuth serve`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Warning: could not load config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	return cfg
}

func buildRegistry(cfg *config.Config) (*tools.Registry, error) {
	runner := tools.NewKubectlRunner("kubectl",
		time.Duration(cfg.Agent.ToolTimeoutSeconds)*time.Second)
	return tools.BuildRegistry(runner, cfg.Tools.LogTail, cfg.Tools.Catalog)
}

// buildAgent wires the full diagnostic stack. Fails when the API key is
// missing; callers decide whether that is fatal.
func buildAgent(cfg *config.Config, logger *zap.Logger) (*agent.Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading tools: %w", err)
	}

	model := llm.NewClient(
		cfg.LLM.Endpoint,
		cfg.LLM.Model,
		cfg.LLM.APIKey,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	return agent.New(agent.Config{
		Model:           model,
		Registry:        registry,
		Logger:          logger,
		MaxIterations:   cfg.Agent.MaxIterations,
		DisplayTruncate: cfg.Agent.DisplayTruncate,
	})
}

func createLogger(cfg *config.Config) *zap.Logger {
	return logging.New(cfg.Logging, verbose)
}

func printError(msg string, err error) {
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).
		Render(fmt.Sprintf("Error: %s: %v", msg, err)))
}
