package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kubesleuth/kubesleuth/internal/tools"
)

func TestDispatch_UnknownTool(t *testing.T) {
	dispatcher := NewDispatcher(testRegistry(t), nil)

	obs := dispatcher.Dispatch(context.Background(), "restart_pod", nil, "default")

	if !obs.IsError {
		t.Fatal("expected error observation for unknown tool")
	}
	if !strings.Contains(obs.Text, "restart_pod") {
		t.Errorf("expected unknown tool name in observation, got %q", obs.Text)
	}
	if !strings.Contains(obs.Text, "list_all_pods") {
		t.Errorf("expected available tools listed, got %q", obs.Text)
	}
}

func TestDispatch_InjectsNamespaceAndDefaults(t *testing.T) {
	runner := &scriptRunner{
		respond: func(args []string) (string, string, error) {
			return `{"items": []}`, "", nil
		},
	}
	registry, err := tools.BuildRegistry(runner, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	dispatcher := NewDispatcher(registry, nil)

	obs := dispatcher.Dispatch(context.Background(), "list_all_pods", map[string]string{}, "prod")

	if obs.IsError {
		t.Fatalf("expected success, got %q", obs.Text)
	}
	// The request namespace must reach kubectl when the model omitted it.
	args := runner.calls[0]
	found := false
	for i, a := range args {
		if a == "-n" && i+1 < len(args) && args[i+1] == "prod" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected -n prod in kubectl args, got %v", args)
	}
}

func TestDispatch_ModelNamespaceWins(t *testing.T) {
	runner := &scriptRunner{
		respond: func(args []string) (string, string, error) {
			return `{"items": []}`, "", nil
		},
	}
	registry, err := tools.BuildRegistry(runner, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	dispatcher := NewDispatcher(registry, nil)

	dispatcher.Dispatch(context.Background(), "list_all_pods",
		map[string]string{"namespace": "staging"}, "prod")

	args := runner.calls[0]
	for i, a := range args {
		if a == "-n" && args[i+1] != "staging" {
			t.Errorf("expected model-specified namespace staging, got %s", args[i+1])
		}
	}
}

func TestDispatch_MissingRequiredParam(t *testing.T) {
	dispatcher := NewDispatcher(testRegistry(t), nil)

	obs := dispatcher.Dispatch(context.Background(), "get_pod_status", map[string]string{}, "default")

	if !obs.IsError {
		t.Fatal("expected error observation for missing pod_name")
	}
	if !strings.Contains(obs.Text, "pod_name") {
		t.Errorf("expected missing parameter named, got %q", obs.Text)
	}
}

func TestDispatch_ToolFailureBecomesObservation(t *testing.T) {
	runner := &scriptRunner{
		respond: func(args []string) (string, string, error) {
			return "", "connection to the server refused", errors.New("exit status 1")
		},
	}
	registry, err := tools.BuildRegistry(runner, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	dispatcher := NewDispatcher(registry, nil)

	obs := dispatcher.Dispatch(context.Background(), "get_pod_status",
		map[string]string{"pod_name": "web-1"}, "default")

	if !obs.IsError {
		t.Fatal("expected error observation")
	}
	if !strings.HasPrefix(obs.Text, "Error:") {
		t.Errorf("expected Error: prefix, got %q", obs.Text)
	}
	if !strings.Contains(obs.Text, "connection to the server refused") {
		t.Errorf("expected failure detail, got %q", obs.Text)
	}
}

func TestDispatch_TruncatesLongOutput(t *testing.T) {
	long := strings.Repeat("log line\n", 1000)
	runner := &scriptRunner{
		respond: func(args []string) (string, string, error) {
			return long, "", nil
		},
	}
	registry, err := tools.BuildRegistry(runner, 50, "")
	if err != nil {
		t.Fatal(err)
	}
	dispatcher := NewDispatcher(registry, nil)

	obs := dispatcher.Dispatch(context.Background(), "get_pod_logs",
		map[string]string{"pod_name": "web-1"}, "default")

	if obs.IsError {
		t.Fatalf("expected success, got %q", obs.Text)
	}
	if !obs.Truncated {
		t.Error("expected truncated flag for long output")
	}
	// 2000-byte cap plus the ellipsis marker.
	if len(obs.Text) > 2100 {
		t.Errorf("expected output capped near 2000 bytes, got %d", len(obs.Text))
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input     string
		maxLen    int
		expected  string
		truncated bool
	}{
		{"hello", 10, "hello", false},
		{"hello world", 5, "hello...", true},
		{"", 5, "", false},
		{"abc", 3, "abc", false},
		{"abcd", 3, "abc...", true},
		{"anything", 0, "anything", false},
	}

	for _, tt := range tests {
		result, truncated := truncate(tt.input, tt.maxLen)
		if result != tt.expected || truncated != tt.truncated {
			t.Errorf("truncate(%q, %d) = (%q, %v), want (%q, %v)",
				tt.input, tt.maxLen, result, truncated, tt.expected, tt.truncated)
		}
	}
}
