package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kubesleuth/kubesleuth/internal/config"
)

var configConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "View or create configuration",
	Long:  "View the effective configuration or create a default config file.",
	Run:   runConfig,
}

var configInit bool

func init() {
	configConfigCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
	rootCmd.AddCommand(configConfigCmd)
}

func runConfig(cmd *cobra.Command, args []string) {
	if configInit {
		initConfigFile()
		return
	}
	showConfig()
}

func initConfigFile() {
	if _, err := os.Stat("config.yaml"); err == nil {
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).
			Render("config.yaml already exists."))
		return
	}

	cfg := config.DefaultConfig()
	if err := cfg.Save("config.yaml"); err != nil {
		printError("Failed to create config", err)
		os.Exit(1)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).
		Render("Created config.yaml with default settings."))
	fmt.Println("\nEdit this file to configure:")
	fmt.Println("  - LLM endpoint, model, and API key")
	fmt.Println("  - Agent iteration and timeout limits")
	fmt.Println("  - Server address and allowed origins")
}

func showConfig() {
	cfg := loadConfig()

	// Never print credentials.
	redacted := *cfg
	if redacted.LLM.APIKey != "" {
		redacted.LLM.APIKey = "****"
	}

	data, err := yaml.Marshal(&redacted)
	if err != nil {
		printError("Failed to render config", err)
		return
	}

	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Bold(true).
		Render("Effective Configuration:\n"))
	fmt.Println(string(data))
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).
		Render("Environment variables with the KUBESLEUTH_ prefix override file values."))
}
