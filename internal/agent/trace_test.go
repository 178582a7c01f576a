package agent

import (
	"strings"
	"testing"
)

func TestTraceRecorder_DeduplicatesToolsInFirstUseOrder(t *testing.T) {
	trace := NewTraceRecorder(200)

	trace.Record("check status", "get_pod_status", "restarts=7")
	trace.Record("need logs", "get_pod_logs", "out of memory")
	trace.Record("check again", "get_pod_status", "restarts=8")

	tools := trace.ToolsUsed()
	if len(tools) != 2 {
		t.Fatalf("expected 2 deduplicated tools, got %v", tools)
	}
	if tools[0] != "get_pod_status" || tools[1] != "get_pod_logs" {
		t.Errorf("expected first-use order, got %v", tools)
	}
	if len(trace.Steps()) != 3 {
		t.Errorf("dedup must not collapse steps, got %d", len(trace.Steps()))
	}
}

func TestTraceRecorder_DisplayTruncation(t *testing.T) {
	trace := NewTraceRecorder(10)

	step := trace.Record("thought", "get_pod_logs", strings.Repeat("x", 50))

	if step.Observation != strings.Repeat("x", 10)+"..." {
		t.Errorf("expected 10-char display truncation, got %q", step.Observation)
	}
}

func TestTraceRecorder_TerminalRecordNotCountedAsTool(t *testing.T) {
	trace := NewTraceRecorder(200)

	trace.Record("listing", "list_all_pods", "1 pod")
	trace.RecordTerminal("done", "final_answer", "all healthy")

	tools := trace.ToolsUsed()
	if len(tools) != 1 || tools[0] != "list_all_pods" {
		t.Errorf("terminal label must not appear in tools_used, got %v", tools)
	}
	steps := trace.Steps()
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[1].Action != "final_answer" {
		t.Errorf("expected terminal record last, got %q", steps[1].Action)
	}
}

func TestTraceRecorder_EmptyToolsUsedIsNotNil(t *testing.T) {
	trace := NewTraceRecorder(200)

	if trace.ToolsUsed() == nil {
		t.Error("tools_used must serialize as [], never null")
	}
}
