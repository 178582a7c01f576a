package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kubesleuth/kubesleuth/internal/metrics"
	"github.com/kubesleuth/kubesleuth/internal/tools"
	"github.com/kubesleuth/kubesleuth/pkg/models"
	"go.uber.org/zap"
)

// Dispatcher runs parsed actions against the tool registry. Every failure
// mode (unknown tool, bad arguments, tool error, timeout) becomes an error
// observation; nothing crosses this boundary as an error or panic.
type Dispatcher struct {
	registry *tools.Registry
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *tools.Registry, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Dispatch executes the named tool and normalizes its result into an
// observation. namespace is injected when the tool accepts one and the
// model omitted it.
func (d *Dispatcher) Dispatch(ctx context.Context, toolName string, args map[string]string, namespace string) models.Observation {
	tool, exists := d.registry.Get(toolName)
	if !exists {
		metrics.ToolCallsTotal.WithLabelValues(toolName, "unknown").Inc()
		return models.Observation{
			Text: fmt.Sprintf("Error: unknown tool %q. Available tools: %s",
				toolName, strings.Join(d.registry.List(), ", ")),
			IsError: true,
		}
	}

	params := d.resolveParams(tool, args, namespace)
	if err := validateParams(tool, params); err != nil {
		metrics.ToolCallsTotal.WithLabelValues(toolName, "invalid").Inc()
		return models.Observation{
			Text:    fmt.Sprintf("Error: %v", err),
			IsError: true,
		}
	}

	start := time.Now()
	result := tool.Execute(ctx, params)
	duration := time.Since(start)

	metrics.ToolCallDuration.WithLabelValues(toolName).Observe(duration.Seconds())
	d.logger.Info("tool executed",
		zap.String("tool", toolName),
		zap.Bool("success", result.Success),
		zap.Duration("duration", duration))

	if !result.Success {
		metrics.ToolCallsTotal.WithLabelValues(toolName, "error").Inc()
		detail := result.Error
		if detail == "" {
			detail = "tool failed without detail"
		}
		text, truncated := truncate(fmt.Sprintf("Error: %s", detail), tool.MaxOutput())
		return models.Observation{Text: text, Truncated: truncated, IsError: true}
	}

	metrics.ToolCallsTotal.WithLabelValues(toolName, "ok").Inc()
	text, truncated := truncate(result.Output, tool.MaxOutput())
	return models.Observation{Text: text, Truncated: truncated}
}

// resolveParams copies the parsed arguments and fills in declared defaults
// plus the request namespace.
func (d *Dispatcher) resolveParams(tool tools.Tool, args map[string]string, namespace string) map[string]string {
	params := make(map[string]string, len(args)+1)
	for k, v := range args {
		params[k] = v
	}

	for _, def := range tool.Parameters() {
		if _, ok := params[def.Name]; ok {
			continue
		}
		if def.Name == "namespace" && namespace != "" {
			params[def.Name] = namespace
			continue
		}
		if def.Default != "" {
			params[def.Name] = def.Default
		}
	}
	return params
}

func validateParams(tool tools.Tool, params map[string]string) error {
	for _, def := range tool.Parameters() {
		if def.Required && params[def.Name] == "" {
			return fmt.Errorf("missing required parameter %q for tool %s", def.Name, tool.Name())
		}
	}
	return nil
}

func truncate(s string, maxLen int) (string, bool) {
	if maxLen <= 0 || len(s) <= maxLen {
		return s, false
	}
	return s[:maxLen] + "...", true
}
