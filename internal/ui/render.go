package ui

import (
	"fmt"
	"strings"

	"github.com/kubesleuth/kubesleuth/pkg/models"
)

// Renderer formats reasoning steps and results for terminal output.
type Renderer struct {
	styles Styles
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{styles: DefaultStyles()}
}

// Step renders one in-flight reasoning step. Terminal records render
// empty; the result rendering covers them.
func (r *Renderer) Step(step models.ReasoningStep) string {
	if step.Action == "final_answer" || step.Action == "inconclusive" {
		return ""
	}

	var b strings.Builder
	if step.Thought != "" {
		b.WriteString(r.styles.Thought.Render("Thought: " + step.Thought))
		b.WriteString("\n")
	}
	b.WriteString(r.styles.Action.Render("Action:  " + step.Action))
	b.WriteString("\n")
	b.WriteString(r.styles.Observation.Render(step.Observation))
	b.WriteString("\n")
	return b.String()
}

// Result renders the terminal outcome with the tool summary.
func (r *Renderer) Result(answer string, outcome models.Outcome, toolsUsed []string) string {
	var b strings.Builder

	switch outcome {
	case models.OutcomeSuccess:
		b.WriteString(r.styles.Answer.Render("Diagnosis"))
	default:
		b.WriteString(r.styles.Warning.Render("Inconclusive"))
	}
	b.WriteString("\n")
	b.WriteString(answer)
	b.WriteString("\n")

	if len(toolsUsed) > 0 {
		b.WriteString(r.styles.Muted.Render(
			fmt.Sprintf("\nTools used: %s", strings.Join(toolsUsed, ", "))))
		b.WriteString("\n")
	}
	return b.String()
}

// Errorf renders an error line.
func (r *Renderer) Errorf(format string, args ...any) string {
	return r.styles.Error.Render(fmt.Sprintf(format, args...))
}
