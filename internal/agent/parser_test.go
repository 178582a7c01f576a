package agent

import (
	"context"
	"testing"

	"github.com/kubesleuth/kubesleuth/internal/tools"
	"github.com/kubesleuth/kubesleuth/pkg/models"
)

// scriptRunner replays canned kubectl responses keyed by subcommand.
type scriptRunner struct {
	calls   [][]string
	respond func(args []string) (string, string, error)
}

func (s *scriptRunner) Run(ctx context.Context, args ...string) (string, string, error) {
	s.calls = append(s.calls, args)
	if s.respond != nil {
		return s.respond(args)
	}
	return "{}", "", nil
}

// multiArgTool has two required parameters, so the bare-payload fallback
// must not apply to it.
type multiArgTool struct{}

func (multiArgTool) Name() string        { return "exec_in_container" }
func (multiArgTool) Description() string { return "test tool with two required params" }
func (multiArgTool) Parameters() []tools.Parameter {
	return []tools.Parameter{
		{Name: "pod_name", Type: "string", Required: true},
		{Name: "container", Type: "string", Required: true},
	}
}
func (multiArgTool) MaxOutput() int { return 1000 }
func (multiArgTool) Execute(ctx context.Context, params map[string]string) models.ToolResult {
	return models.ToolResult{Success: true, Output: "ok"}
}

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry, err := tools.BuildRegistry(&scriptRunner{}, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	registry.MustRegister(multiArgTool{})
	return registry
}

func TestParse_FinalAnswer(t *testing.T) {
	parser := NewParser(testRegistry(t))

	out := parser.Parse("Thought: I now know the final answer\nFinal Answer: CrashLoopBackOff due to OOMKilled. Raise the memory limit.")

	if out.Kind != ParseFinalAnswer {
		t.Fatalf("expected ParseFinalAnswer, got %v (reason: %s)", out.Kind, out.FailureReason)
	}
	if out.FinalAnswer != "CrashLoopBackOff due to OOMKilled. Raise the memory limit." {
		t.Errorf("unexpected final answer: %q", out.FinalAnswer)
	}
	if out.Thought != "I now know the final answer" {
		t.Errorf("unexpected thought: %q", out.Thought)
	}
}

func TestParse_FinalAnswerWithoutAction_NeverAction(t *testing.T) {
	parser := NewParser(testRegistry(t))

	// Mentions a tool name in prose but carries no Action: marker.
	out := parser.Parse("Final Answer: the pod is healthy, no need for get_pod_logs")

	if out.Kind != ParseFinalAnswer {
		t.Fatalf("expected ParseFinalAnswer, got %v", out.Kind)
	}
}

func TestParse_ActionWithJSONInput(t *testing.T) {
	parser := NewParser(testRegistry(t))

	out := parser.Parse(`Thought: need the pod status
Action: get_pod_status
Action Input: {"pod_name": "my-app-pod", "namespace": "prod"}`)

	if out.Kind != ParseAction {
		t.Fatalf("expected ParseAction, got %v (reason: %s)", out.Kind, out.FailureReason)
	}
	if out.Tool != "get_pod_status" {
		t.Errorf("expected get_pod_status, got %s", out.Tool)
	}
	if out.Args["pod_name"] != "my-app-pod" || out.Args["namespace"] != "prod" {
		t.Errorf("unexpected args: %v", out.Args)
	}
}

func TestParse_ActionInputWithTrailingProse(t *testing.T) {
	parser := NewParser(testRegistry(t))

	out := parser.Parse(`Action: get_pod_logs
Action Input: {"pod_name": "my-app-pod"} and then I will check the events`)

	if out.Kind != ParseAction {
		t.Fatalf("expected ParseAction, got %v", out.Kind)
	}
	if out.Args["pod_name"] != "my-app-pod" {
		t.Errorf("unexpected args: %v", out.Args)
	}
}

func TestParse_BareStringFallsBackToPrimaryParam(t *testing.T) {
	parser := NewParser(testRegistry(t))

	tests := []struct {
		name    string
		payload string
	}{
		{"unquoted", "Action: get_pod_status\nAction Input: my-app-pod"},
		{"quoted", "Action: get_pod_status\nAction Input: \"my-app-pod\""},
		{"backticked", "Action: get_pod_status\nAction Input: `my-app-pod`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := parser.Parse(tt.payload)
			if out.Kind != ParseAction {
				t.Fatalf("expected ParseAction, got %v (reason: %s)", out.Kind, out.FailureReason)
			}
			if out.Args["pod_name"] != "my-app-pod" {
				t.Errorf("expected pod_name bound to payload, got %v", out.Args)
			}
		})
	}
}

func TestParse_MalformedJSONBindsWholePayload(t *testing.T) {
	parser := NewParser(testRegistry(t))

	out := parser.Parse("Action: get_pod_status\nAction Input: {pod_name: my-app-pod}")

	if out.Kind != ParseAction {
		t.Fatalf("expected ParseAction, got %v (reason: %s)", out.Kind, out.FailureReason)
	}
	// The entire unparseable payload becomes the primary argument, exactly
	// like a bare string; the tool then reports the pod as not found and
	// the model gets to correct itself.
	if out.Args["pod_name"] != "{pod_name: my-app-pod}" {
		t.Errorf("expected raw payload bound to pod_name, got %v", out.Args)
	}
}

func TestParse_BareStringNotExtendedToMultiArgTools(t *testing.T) {
	parser := NewParser(testRegistry(t))

	out := parser.Parse("Action: exec_in_container\nAction Input: my-app-pod")

	if out.Kind != ParseFailure {
		t.Fatalf("expected ParseFailure for multi-required-arg tool, got %v", out.Kind)
	}
}

func TestParse_UnknownToolStaysAction(t *testing.T) {
	parser := NewParser(testRegistry(t))

	// The dispatcher reports unknown tools as error observations; the
	// parser must not turn them into parse failures.
	out := parser.Parse("Action: restart_pod\nAction Input: my-app-pod")

	if out.Kind != ParseAction {
		t.Fatalf("expected ParseAction, got %v", out.Kind)
	}
	if out.Tool != "restart_pod" {
		t.Errorf("expected restart_pod, got %s", out.Tool)
	}
}

func TestParse_NoActionInput(t *testing.T) {
	parser := NewParser(testRegistry(t))

	out := parser.Parse("Thought: list everything\nAction: list_all_pods")

	if out.Kind != ParseAction {
		t.Fatalf("expected ParseAction, got %v", out.Kind)
	}
	if len(out.Args) != 0 {
		t.Errorf("expected empty args, got %v", out.Args)
	}
}

func TestParse_NeitherMarker(t *testing.T) {
	parser := NewParser(testRegistry(t))

	out := parser.Parse("The pod is probably fine, I think.")

	if out.Kind != ParseFailure {
		t.Fatalf("expected ParseFailure, got %v", out.Kind)
	}
	if out.FailureReason == "" {
		t.Error("expected a failure reason")
	}
}

func TestParse_ImplicitThought(t *testing.T) {
	parser := NewParser(testRegistry(t))

	// The prompt ends with "Thought:", so completions often begin with the
	// thought body directly.
	out := parser.Parse("I should inspect the pod first.\nAction: get_pod_status\nAction Input: {\"pod_name\": \"web-1\"}")

	if out.Thought != "I should inspect the pod first." {
		t.Errorf("unexpected thought: %q", out.Thought)
	}
}

func TestParse_NestedJSONInput(t *testing.T) {
	parser := NewParser(testRegistry(t))

	out := parser.Parse(`Action: get_pod_status
Action Input: {"pod_name": "my-app-pod", "namespace": "prod", "selector": {"app": "web"}}`)

	if out.Kind != ParseAction {
		t.Fatalf("expected ParseAction for nested JSON, got %v", out.Kind)
	}
	if out.Args["pod_name"] != "my-app-pod" {
		t.Errorf("unexpected args: %v", out.Args)
	}
}

func TestParse_NumericArgCoercedToString(t *testing.T) {
	parser := NewParser(testRegistry(t))

	out := parser.Parse(`Action: get_pod_logs
Action Input: {"pod_name": "web-1", "tail": 100}`)

	if out.Kind != ParseAction {
		t.Fatalf("expected ParseAction, got %v", out.Kind)
	}
	if out.Args["tail"] != "100" {
		t.Errorf("expected numeric arg coerced to string, got %v", out.Args)
	}
}
