// Package models defines the shared data structures for kubesleuth.
package models

import "time"

// ToolResult represents the output of a single diagnostic tool execution.
type ToolResult struct {
	ToolName string        `json:"tool_name"`
	Success  bool          `json:"success"`
	Output   string        `json:"output"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// Observation is the text fed back to the model after a tool invocation.
// Truncated is set when the dispatcher capped the output to bound prompt
// growth across iterations.
type Observation struct {
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
	IsError   bool   `json:"is_error"`
}

// ReasoningStep is one completed thought/action/observation triple of the
// agent loop. Observation here is display-truncated; the loop keeps the
// longer version in its scratchpad.
type ReasoningStep struct {
	Thought     string `json:"thought"`
	Action      string `json:"action"`
	Observation string `json:"observation"`
}

// Outcome classifies how an agent run terminated.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeBudgetExceeded
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeBudgetExceeded:
		return "budget_exceeded"
	case OutcomeFatal:
		return "fatal"
	}
	return "unknown"
}

// ChatRequest is the inbound troubleshooting request.
type ChatRequest struct {
	Message   string `json:"message"`
	Namespace string `json:"namespace"`
}

// ChatResponse is the structured answer plus the trace of steps taken.
type ChatResponse struct {
	Response       string          `json:"response"`
	ToolsUsed      []string        `json:"tools_used"`
	ReasoningSteps []ReasoningStep `json:"reasoning_steps"`
}

// HealthResponse reports service liveness for GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	AgentReady bool   `json:"agent_ready"`
}

// InfoResponse describes the service for GET /.
type InfoResponse struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Model   string   `json:"model"`
	Pattern string   `json:"pattern"`
	Tools   []string `json:"tools"`
}

// ErrorResponse is the single error shape returned to callers.
type ErrorResponse struct {
	Error string `json:"error"`
}
