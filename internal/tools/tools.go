// Package tools provides the diagnostic tool framework for kubesleuth.
package tools

import (
	"context"
	"fmt"
	"sync"

	"github.com/kubesleuth/kubesleuth/pkg/models"
)

// Tool defines the interface that all diagnostic tools must implement.
// Implementations are read-only cluster inspections; they report failures
// through the ToolResult, never by panicking.
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description for the LLM.
	Description() string

	// Parameters returns the parameter schema for validation.
	Parameters() []Parameter

	// MaxOutput returns the output cap in bytes applied by the dispatcher.
	MaxOutput() int

	// Execute runs the tool with the given parameters.
	Execute(ctx context.Context, params map[string]string) models.ToolResult
}

// Parameter defines a tool parameter with validation rules.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "string", "int", "bool"
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Default     string `json:"default,omitempty"`
}

// PrimaryParam returns the parameter a bare unstructured payload binds to.
// The fallback only exists for tools with exactly one required parameter;
// tools with zero or several required parameters get no primary.
func PrimaryParam(t Tool) (string, bool) {
	primary := ""
	for _, p := range t.Parameters() {
		if !p.Required {
			continue
		}
		if primary != "" {
			return "", false
		}
		primary = p.Name
	}
	if primary == "" {
		return "", false
	}
	return primary, true
}

// Registry manages tool registration and lookup. It is populated once at
// startup and read-only afterwards; List preserves registration order so
// the prompt catalogue is stable.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates a new tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// MustRegister adds a tool to the registry, panicking on error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// List returns all registered tool names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// All returns all registered tools in registration order.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		tools = append(tools, r.tools[name])
	}
	return tools
}
