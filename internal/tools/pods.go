package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kubesleuth/kubesleuth/pkg/models"
)

// Output caps per tool. Logs and describe output dominate prompt growth,
// so they get explicit limits; everything else uses the default.
const (
	maxOutputDefault  = 1200
	maxOutputLogs     = 2000
	maxOutputDescribe = 1500
)

// PodTools returns the read-only pod diagnostics in catalogue order.
// logTail bounds how many log lines are fetched per call.
func PodTools(runner Runner, logTail int) []Tool {
	if logTail <= 0 {
		logTail = 50
	}
	return []Tool{
		&ListAllPodsTool{runner: runner},
		&PodStatusTool{runner: runner},
		&PodLogsTool{runner: runner, tail: logTail},
		&DescribePodTool{runner: runner},
	}
}

// RegisterPodTools registers the pod diagnostics on the registry.
func RegisterPodTools(registry *Registry, runner Runner, logTail int) {
	for _, t := range PodTools(runner, logTail) {
		registry.MustRegister(t)
	}
}

// Minimal slices of the kubectl JSON output. Only the fields the summaries
// need are decoded.
type podList struct {
	Items []podObject `json:"items"`
}

type podObject struct {
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Status podStatus `json:"status"`
}

type podStatus struct {
	Phase             string            `json:"phase"`
	ContainerStatuses []containerStatus `json:"containerStatuses"`
}

type containerStatus struct {
	Name         string         `json:"name"`
	RestartCount int            `json:"restartCount"`
	State        containerState `json:"state"`
}

type containerState struct {
	Waiting    *stateDetail `json:"waiting,omitempty"`
	Terminated *stateDetail `json:"terminated,omitempty"`
	Running    *struct{}    `json:"running,omitempty"`
}

type stateDetail struct {
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	ExitCode int    `json:"exitCode"`
}

func failure(name, detail string) models.ToolResult {
	return models.ToolResult{ToolName: name, Success: false, Error: detail}
}

func success(name, output string) models.ToolResult {
	return models.ToolResult{ToolName: name, Success: true, Output: output}
}

func kubectlError(stderr string, err error) string {
	msg := strings.TrimSpace(stderr)
	if msg == "" {
		msg = err.Error()
	}
	return msg
}

// ─── list_all_pods ────────────────────────────────────────────────────────────

// ListAllPodsTool lists every pod in a namespace with a one-line health
// summary per pod.
type ListAllPodsTool struct {
	runner Runner
}

func (t *ListAllPodsTool) Name() string { return "list_all_pods" }

func (t *ListAllPodsTool) Description() string {
	return "List all pods in a namespace with phase and health issues. Use this first when no specific pod is named."
}

func (t *ListAllPodsTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "namespace", Type: "string", Description: "Kubernetes namespace", Default: "default"},
	}
}

func (t *ListAllPodsTool) MaxOutput() int { return maxOutputDefault }

func (t *ListAllPodsTool) Execute(ctx context.Context, params map[string]string) models.ToolResult {
	namespace := params["namespace"]

	stdout, stderr, err := t.runner.Run(ctx, "get", "pods", "-n", namespace, "-o", "json")
	if err != nil {
		return failure(t.Name(), kubectlError(stderr, err))
	}

	var list podList
	if err := json.Unmarshal([]byte(stdout), &list); err != nil {
		return failure(t.Name(), fmt.Sprintf("parse pod list: %v", err))
	}

	if len(list.Items) == 0 {
		return success(t.Name(), fmt.Sprintf("No pods found in namespace %q", namespace))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Pods in namespace %q:\n", namespace)
	for _, pod := range list.Items {
		var issues []string
		for _, cs := range pod.Status.ContainerStatuses {
			if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
				issues = append(issues, cs.State.Waiting.Reason)
			}
			if cs.State.Terminated != nil && cs.State.Terminated.Reason != "" {
				issues = append(issues, "Terminated: "+cs.State.Terminated.Reason)
			}
		}
		status := "Healthy"
		if len(issues) > 0 {
			status = "Issues: " + strings.Join(issues, ", ")
		}
		fmt.Fprintf(&sb, "  - %s: %s - %s\n", pod.Metadata.Name, pod.Status.Phase, status)
	}
	return success(t.Name(), sb.String())
}

// ─── get_pod_status ───────────────────────────────────────────────────────────

// PodStatusTool reports phase, restart counts, and per-container state for
// one pod.
type PodStatusTool struct {
	runner Runner
}

func (t *PodStatusTool) Name() string { return "get_pod_status" }

func (t *PodStatusTool) Description() string {
	return "Get the phase, restart counts, and container states of a specific pod."
}

func (t *PodStatusTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "pod_name", Type: "string", Description: "Exact pod name", Required: true},
		{Name: "namespace", Type: "string", Description: "Kubernetes namespace", Default: "default"},
	}
}

func (t *PodStatusTool) MaxOutput() int { return maxOutputDefault }

func (t *PodStatusTool) Execute(ctx context.Context, params map[string]string) models.ToolResult {
	podName := params["pod_name"]
	namespace := params["namespace"]

	stdout, stderr, err := t.runner.Run(ctx, "get", "pod", podName, "-n", namespace, "-o", "json")
	if err != nil {
		return failure(t.Name(), kubectlError(stderr, err))
	}

	var pod podObject
	if err := json.Unmarshal([]byte(stdout), &pod); err != nil {
		return failure(t.Name(), fmt.Sprintf("parse pod: %v", err))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Pod: %s\nPhase: %s\n", podName, pod.Status.Phase)
	for _, cs := range pod.Status.ContainerStatuses {
		fmt.Fprintf(&sb, "Container %q: restarts=%d", cs.Name, cs.RestartCount)
		switch {
		case cs.State.Waiting != nil:
			fmt.Fprintf(&sb, ", Waiting - %s", cs.State.Waiting.Reason)
			if msg := cs.State.Waiting.Message; msg != "" {
				if len(msg) > 200 {
					msg = msg[:200]
				}
				fmt.Fprintf(&sb, "\n  %s", msg)
			}
		case cs.State.Terminated != nil:
			fmt.Fprintf(&sb, ", Terminated - %s (exit code: %d)",
				cs.State.Terminated.Reason, cs.State.Terminated.ExitCode)
		case cs.State.Running != nil:
			sb.WriteString(", Running")
		}
		sb.WriteString("\n")
	}
	return success(t.Name(), sb.String())
}

// ─── get_pod_logs ─────────────────────────────────────────────────────────────

// PodLogsTool fetches recent logs, falling back to the previous container
// instance when the live one has none (typical for crash loops).
type PodLogsTool struct {
	runner Runner
	tail   int
}

func (t *PodLogsTool) Name() string { return "get_pod_logs" }

func (t *PodLogsTool) Description() string {
	return "Fetch recent logs of a specific pod, falling back to the previous container on restart loops."
}

func (t *PodLogsTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "pod_name", Type: "string", Description: "Exact pod name", Required: true},
		{Name: "namespace", Type: "string", Description: "Kubernetes namespace", Default: "default"},
	}
}

func (t *PodLogsTool) MaxOutput() int { return maxOutputLogs }

func (t *PodLogsTool) Execute(ctx context.Context, params map[string]string) models.ToolResult {
	podName := params["pod_name"]
	namespace := params["namespace"]
	tailArg := fmt.Sprintf("--tail=%d", t.tail)

	stdout, stderr, err := t.runner.Run(ctx, "logs", podName, "-n", namespace, tailArg)
	if err != nil {
		// The live container may have no logs yet; try the previous one.
		stdout, stderr, err = t.runner.Run(ctx, "logs", podName, "-n", namespace, "--previous", tailArg)
	}
	if err != nil {
		return failure(t.Name(), "get logs: "+kubectlError(stderr, err))
	}

	if strings.TrimSpace(stdout) == "" {
		return success(t.Name(), "No logs available")
	}
	return success(t.Name(), fmt.Sprintf("Logs for %s:\n%s", podName, stdout))
}

// ─── describe_pod ─────────────────────────────────────────────────────────────

// DescribePodTool returns the Events section of kubectl describe, which
// carries scheduling, image pull, and probe failures.
type DescribePodTool struct {
	runner Runner
}

func (t *DescribePodTool) Name() string { return "describe_pod" }

func (t *DescribePodTool) Description() string {
	return "Get recent events for a specific pod (scheduling, image pulls, probe failures, OOM kills)."
}

func (t *DescribePodTool) Parameters() []Parameter {
	return []Parameter{
		{Name: "pod_name", Type: "string", Description: "Exact pod name", Required: true},
		{Name: "namespace", Type: "string", Description: "Kubernetes namespace", Default: "default"},
	}
}

func (t *DescribePodTool) MaxOutput() int { return maxOutputDescribe }

func (t *DescribePodTool) Execute(ctx context.Context, params map[string]string) models.ToolResult {
	podName := params["pod_name"]
	namespace := params["namespace"]

	stdout, stderr, err := t.runner.Run(ctx, "describe", "pod", podName, "-n", namespace)
	if err != nil {
		return failure(t.Name(), kubectlError(stderr, err))
	}

	_, events, found := strings.Cut(stdout, "Events:")
	if !found || strings.TrimSpace(events) == "" {
		return success(t.Name(), "No events found")
	}
	return success(t.Name(), fmt.Sprintf("Events for %s:%s", podName, events))
}
