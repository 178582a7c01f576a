package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kubesleuth/kubesleuth/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP diagnostic service",
	Long: `Start the HTTP service exposing the diagnostic agent.

Endpoints:
  POST /chat      one-shot diagnosis with the full reasoning trace
  GET  /ws/chat   websocket variant streaming steps as they complete
  GET  /health    liveness and agent readiness
  GET  /metrics   Prometheus metrics
  GET  /          service info and tool catalogue

The service starts even without a GROQ_API_KEY; chat endpoints answer
503 and /health reports degraded until one is provided.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	logger := createLogger(cfg)
	defer logger.Sync()

	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return fmt.Errorf("loading tools: %w", err)
	}

	opts := server.Options{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Registry:       registry,
		ModelName:      cfg.LLM.Model,
		Version:        Version,
		Logger:         logger,
	}

	// A missing API key degrades the service instead of killing it, so
	// health checks and the tool catalogue keep working.
	diag, err := buildAgent(cfg, logger)
	if err != nil {
		logger.Warn("starting degraded: agent unavailable", zap.Error(err))
	} else {
		opts.Agent = diag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(opts).Run(ctx)
}
