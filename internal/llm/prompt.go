package llm

import (
	"fmt"
	"strings"

	"github.com/kubesleuth/kubesleuth/internal/tools"
)

const reactTemplate = `Answer the following questions as best you can. You have access to the following tools:

{{TOOLS}}
Use the following format:

Question: the input question
Thought: think about what to do
Action: the action to take, one of [{{TOOL_NAMES}}]
Action Input: {"pod_name": "exact-name", "namespace": "default"}
Observation: the result
... (repeat Thought/Action/Observation as needed)
Thought: I now know the final answer
Final Answer: clear diagnosis with root cause and fix steps

IMPORTANT:
- Action Input must be valid JSON with double quotes!
- If the user asks about "cluster" or "all pods", use list_all_pods first
- Be concise and actionable in Final Answer

Begin!

Question: {{QUESTION}}
Thought:{{SCRATCHPAD}}`

// BuildPrompt renders the ReAct instruction template with the tool
// catalogue, the user's question, and the scratchpad of prior
// action/observation pairs.
func BuildPrompt(question, namespace string, registry *tools.Registry, scratchpad string) string {
	if namespace != "" {
		question = fmt.Sprintf("%s (namespace: %s)", question, namespace)
	}

	prompt := reactTemplate
	prompt = strings.ReplaceAll(prompt, "{{TOOLS}}", buildToolCatalogue(registry))
	prompt = strings.ReplaceAll(prompt, "{{TOOL_NAMES}}", strings.Join(registry.List(), ", "))
	prompt = strings.ReplaceAll(prompt, "{{QUESTION}}", question)
	prompt = strings.ReplaceAll(prompt, "{{SCRATCHPAD}}", scratchpad)
	return prompt
}

// buildToolCatalogue formats the registry including parameter details so
// the model knows exact names, defaults, and whether they are required.
func buildToolCatalogue(registry *tools.Registry) string {
	var sb strings.Builder
	for _, tool := range registry.All() {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", tool.Name(), tool.Description()))
		params := tool.Parameters()
		if len(params) == 0 {
			continue
		}
		sb.WriteString("  Parameters:\n")
		for _, p := range params {
			req := "optional"
			if p.Required {
				req = "required"
			}
			line := fmt.Sprintf("    - %s (%s, %s)", p.Name, p.Type, req)
			if p.Description != "" {
				line += ": " + p.Description
			}
			if p.Default != "" {
				line += fmt.Sprintf(" [default: %s]", p.Default)
			}
			sb.WriteString(line + "\n")
		}
	}
	return sb.String()
}
