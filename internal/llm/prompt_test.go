package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/kubesleuth/kubesleuth/internal/tools"
)

type nopRunner struct{}

func (nopRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	return "", "", nil
}

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry, err := tools.BuildRegistry(nopRunner{}, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	return registry
}

func TestBuildPrompt(t *testing.T) {
	registry := newTestRegistry(t)

	prompt := BuildPrompt("why is my-app-pod crashing", "prod", registry, "")

	if !strings.Contains(prompt, "why is my-app-pod crashing (namespace: prod)") {
		t.Error("expected question with namespace hint")
	}
	if !strings.Contains(prompt, "list_all_pods, get_pod_status, get_pod_logs, describe_pod") {
		t.Error("expected tool names in catalogue order")
	}
	if !strings.Contains(prompt, "- get_pod_logs:") {
		t.Error("expected tool descriptions in catalogue")
	}
	if !strings.Contains(prompt, "pod_name (string, required)") {
		t.Error("expected parameter details in catalogue")
	}
	if !strings.HasSuffix(prompt, "Thought:") {
		t.Errorf("prompt should end with an open Thought marker, got ...%q", prompt[len(prompt)-30:])
	}
}

func TestBuildPrompt_AppendsScratchpad(t *testing.T) {
	registry := newTestRegistry(t)

	scratchpad := " I should list the pods.\nAction: list_all_pods\nAction Input: {\"namespace\": \"prod\"}\nObservation: Pods in namespace \"prod\":\nThought:"
	prompt := BuildPrompt("list pods", "prod", registry, scratchpad)

	if !strings.Contains(prompt, "Observation: Pods in namespace") {
		t.Error("expected prior observation in rendered prompt")
	}
	if strings.Count(prompt, "Begin!") != 1 {
		t.Error("template should render exactly once")
	}
}
