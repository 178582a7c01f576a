package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List available diagnostic tools",
	Long: `List the read-only kubectl tools the agent can invoke.

Examples:
  kubesleuth tools           # List all tools
  kubesleuth tools --verbose # Show parameter details`,
	Run: func(cmd *cobra.Command, args []string) {
		runTools()
	},
}

func runTools() {
	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7C3AED")).
		Bold(true)

	toolStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9CA3AF"))

	paramStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#06B6D4"))

	cfg := loadConfig()
	registry, err := buildRegistry(cfg)
	if err != nil {
		printError("Failed to load tools", err)
		return
	}

	fmt.Println(headerStyle.Render("Available Tools"))
	fmt.Println()

	for _, t := range registry.All() {
		fmt.Printf("  %s\n", toolStyle.Render(t.Name()))
		fmt.Printf("    %s\n", descStyle.Render(t.Description()))

		if verbose {
			for _, p := range t.Parameters() {
				req := ""
				if p.Required {
					req = " (required)"
				}
				fmt.Printf("      %s%s\n", paramStyle.Render(p.Name), req)
				if p.Description != "" {
					fmt.Printf("        %s\n", descStyle.Render(p.Description))
				}
			}
		}
		fmt.Println()
	}

	fmt.Println(descStyle.Render(fmt.Sprintf("  Total: %d tools available", len(registry.List()))))
	if !verbose {
		fmt.Println(descStyle.Render("  Use --verbose for parameter details"))
	}
}
