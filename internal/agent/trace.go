package agent

import "github.com/kubesleuth/kubesleuth/pkg/models"

// TraceRecorder accumulates the ordered reasoning steps of one request.
// Observations are display-truncated independently of the dispatcher's
// prompt-bound truncation; the loop's scratchpad keeps the longer text.
type TraceRecorder struct {
	displayLimit int
	steps        []models.ReasoningStep
	toolsUsed    []string
	seen         map[string]bool
}

// NewTraceRecorder creates a recorder with the given observation display
// limit (0 means no truncation).
func NewTraceRecorder(displayLimit int) *TraceRecorder {
	return &TraceRecorder{
		displayLimit: displayLimit,
		seen:         make(map[string]bool),
	}
}

// Record appends one step; tool names are collected deduplicated in
// first-use order.
func (t *TraceRecorder) Record(thought, action, observation string) models.ReasoningStep {
	display, _ := truncate(observation, t.displayLimit)
	step := models.ReasoningStep{
		Thought:     thought,
		Action:      action,
		Observation: display,
	}
	t.steps = append(t.steps, step)

	if action != "" && !t.seen[action] {
		t.seen[action] = true
		t.toolsUsed = append(t.toolsUsed, action)
	}
	return step
}

// RecordTerminal appends the terminal record without counting its label as
// a tool.
func (t *TraceRecorder) RecordTerminal(thought, label, observation string) models.ReasoningStep {
	display, _ := truncate(observation, t.displayLimit)
	step := models.ReasoningStep{
		Thought:     thought,
		Action:      label,
		Observation: display,
	}
	t.steps = append(t.steps, step)
	return step
}

// Steps returns the recorded steps in order.
func (t *TraceRecorder) Steps() []models.ReasoningStep {
	return t.steps
}

// ToolsUsed returns the deduplicated tool names in first-use order.
func (t *TraceRecorder) ToolsUsed() []string {
	if t.toolsUsed == nil {
		return []string{}
	}
	return t.toolsUsed
}
