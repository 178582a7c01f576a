package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kubesleuth/kubesleuth/internal/ui"
	"github.com/kubesleuth/kubesleuth/pkg/models"
)

var askNamespace string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Diagnose a cluster problem from the command line",
	Long: `Ask a troubleshooting question and watch the agent reason through it.

Examples:
  kubesleuth ask "why is my-app-pod crashing?"
  kubesleuth ask -n prod "are all pods healthy?"`,
	Args: cobra.MinimumNArgs(1),
	Run:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askNamespace, "namespace", "n", "default", "Kubernetes namespace")
}

func runAsk(cmd *cobra.Command, args []string) {
	question := strings.Join(args, " ")
	render := ui.NewRenderer()

	cfg := loadConfig()
	logger := createLogger(cfg)
	defer logger.Sync()

	diag, err := buildAgent(cfg, logger)
	if err != nil {
		fmt.Println(render.Errorf("Error: failed to initialize agent: %v", err))
		fmt.Println()
		fmt.Println("Set GROQ_API_KEY or configure llm.api_key in config.yaml.")
		os.Exit(1)
	}

	fmt.Printf("Using model: %s\n\n", cfg.LLM.Model)

	result, err := diag.DiagnoseStream(context.Background(), question, askNamespace,
		func(step models.ReasoningStep) {
			if out := render.Step(step); out != "" {
				fmt.Println(out)
			}
		})
	if err != nil {
		fmt.Println(render.Errorf("Error: diagnosis failed: %v", err))
		os.Exit(1)
	}

	fmt.Println(render.Result(result.Answer, result.Outcome, result.ToolsUsed))
}
