package tools

import (
	"context"
	"testing"

	"github.com/kubesleuth/kubesleuth/pkg/models"
)

// MockTool for testing the framework
type MockTool struct {
	name        string
	description string
	params      []Parameter
	maxOutput   int
	execFunc    func(ctx context.Context, params map[string]string) models.ToolResult
}

func (m *MockTool) Name() string            { return m.name }
func (m *MockTool) Description() string     { return m.description }
func (m *MockTool) Parameters() []Parameter { return m.params }
func (m *MockTool) MaxOutput() int {
	if m.maxOutput > 0 {
		return m.maxOutput
	}
	return maxOutputDefault
}
func (m *MockTool) Execute(ctx context.Context, params map[string]string) models.ToolResult {
	if m.execFunc != nil {
		return m.execFunc(ctx, params)
	}
	return models.ToolResult{Success: true, Output: "mock output"}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	tool := &MockTool{name: "test-tool", description: "A test tool"}

	if err := registry.Register(tool); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := registry.Register(tool); err == nil {
		t.Fatal("expected error for duplicate registration")
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	tool := &MockTool{name: "test-tool"}
	registry.Register(tool)

	found, ok := registry.Get("test-tool")
	if !ok {
		t.Fatal("expected to find tool")
	}
	if found.Name() != "test-tool" {
		t.Fatalf("expected 'test-tool', got %s", found.Name())
	}

	_, ok = registry.Get("nonexistent")
	if ok {
		t.Fatal("expected not to find nonexistent tool")
	}
}

func TestRegistry_List_PreservesOrder(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockTool{name: "tool-c"})
	registry.Register(&MockTool{name: "tool-a"})
	registry.Register(&MockTool{name: "tool-b"})

	names := registry.List()
	expected := []string{"tool-c", "tool-a", "tool-b"}
	if len(names) != len(expected) {
		t.Fatalf("expected %d tools, got %d", len(expected), len(names))
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("position %d: expected %s, got %s", i, name, names[i])
		}
	}
}

func TestPrimaryParam(t *testing.T) {
	tests := []struct {
		name     string
		params   []Parameter
		expected string
		ok       bool
	}{
		{
			name: "single required param",
			params: []Parameter{
				{Name: "pod_name", Required: true},
				{Name: "namespace", Default: "default"},
			},
			expected: "pod_name",
			ok:       true,
		},
		{
			name: "no required params",
			params: []Parameter{
				{Name: "namespace", Default: "default"},
			},
			ok: false,
		},
		{
			name: "multiple required params",
			params: []Parameter{
				{Name: "pod_name", Required: true},
				{Name: "container", Required: true},
			},
			ok: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := &MockTool{name: "t", params: tt.params}
			primary, ok := PrimaryParam(tool)
			if ok != tt.ok {
				t.Fatalf("PrimaryParam ok = %v, want %v", ok, tt.ok)
			}
			if ok && primary != tt.expected {
				t.Errorf("PrimaryParam = %q, want %q", primary, tt.expected)
			}
		})
	}
}

func TestRegisterPodTools(t *testing.T) {
	registry := NewRegistry()
	RegisterPodTools(registry, &fakeRunner{}, 50)

	expectedTools := []string{"list_all_pods", "get_pod_status", "get_pod_logs", "describe_pod"}

	names := registry.List()
	if len(names) != len(expectedTools) {
		t.Fatalf("expected %d tools, got %d", len(expectedTools), len(names))
	}
	for i, name := range expectedTools {
		if names[i] != name {
			t.Errorf("position %d: expected %s, got %s", i, name, names[i])
		}
	}
}
