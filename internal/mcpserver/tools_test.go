package mcpserver

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// toolSpec describes the expected shape of a tool definition for table-driven
// testing. requiredParams lists parameter names that MUST appear in the
// schema's "required" array. allParams lists every parameter name that MUST
// exist in the schema's "properties" map.
type toolSpec struct {
	name           string
	wantName       string
	buildFunc      func() mcp.Tool
	requiredParams []string
	allParams      []string
}

// assertToolSpec is a test helper that verifies a tool matches its spec.
func assertToolSpec(t *testing.T, tool mcp.Tool, spec toolSpec) {
	t.Helper()

	// 1. Name
	if tool.Name != spec.wantName {
		t.Errorf("tool Name = %q, want %q", tool.Name, spec.wantName)
	}

	// 2. Description must be non-empty
	if tool.Description == "" {
		t.Errorf("tool %q has empty Description", tool.Name)
	}

	// 3. InputSchema type should be "object"
	if tool.InputSchema.Type != "object" {
		t.Errorf("tool %q InputSchema.Type = %q, want %q", tool.Name, tool.InputSchema.Type, "object")
	}

	// 4. All expected params exist in Properties
	for _, param := range spec.allParams {
		if _, ok := tool.InputSchema.Properties[param]; !ok {
			t.Errorf("tool %q missing expected parameter %q in Properties", tool.Name, param)
		}
	}

	// 5. Required params are in the Required array
	requiredSet := make(map[string]bool, len(tool.InputSchema.Required))
	for _, r := range tool.InputSchema.Required {
		requiredSet[r] = true
	}
	for _, param := range spec.requiredParams {
		if !requiredSet[param] {
			t.Errorf("tool %q: parameter %q should be required but is not in Required array %v",
				tool.Name, param, tool.InputSchema.Required)
		}
	}

	// 6. Params that are NOT in requiredParams should NOT be in Required
	optionalParams := make(map[string]bool)
	for _, p := range spec.allParams {
		optionalParams[p] = true
	}
	for _, r := range spec.requiredParams {
		delete(optionalParams, r)
	}
	for param := range optionalParams {
		if requiredSet[param] {
			t.Errorf("tool %q: parameter %q should be optional but appears in Required array %v",
				tool.Name, param, tool.InputSchema.Required)
		}
	}
}

// ---------------------------------------------------------------------------
// Tool definition tests: table-driven
// ---------------------------------------------------------------------------

func Test_ToolDefinitions_Cases(t *testing.T) {
	t.Parallel()

	tests := []toolSpec{
		{
			name:           "listTasksTool",
			wantName:       "list_tasks",
			buildFunc:      listTasksTool,
			requiredParams: nil,
			allParams:      []string{"date"},
		},
		{
			name:           "addTaskTool",
			wantName:       "add_task",
			buildFunc:      addTaskTool,
			requiredParams: []string{"text"},
			allParams:      []string{"text", "date"},
		},
		{
			name:           "deleteTaskTool",
			wantName:       "delete_task",
			buildFunc:      deleteTaskTool,
			requiredParams: []string{"text"},
			allParams:      []string{"text", "date"},
		},
		{
			name:           "editTaskTool",
			wantName:       "edit_task",
			buildFunc:      editTaskTool,
			requiredParams: []string{"text", "new_text"},
			allParams:      []string{"text", "new_text", "date"},
		},
		{
			name:           "taskSummaryTool",
			wantName:       "task_summary",
			buildFunc:      taskSummaryTool,
			requiredParams: nil,
			allParams:      nil,
		},
		{
			name:           "searchTasksTool",
			wantName:       "search_tasks",
			buildFunc:      searchTasksTool,
			requiredParams: nil,
			allParams:      []string{"query", "from", "to", "page", "page_size"},
		},
		{
			name:           "clearTasksTool",
			wantName:       "clear_tasks",
			buildFunc:      clearTasksTool,
			requiredParams: []string{"confirm"},
			allParams:      []string{"confirm"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tool := tt.buildFunc()
			assertToolSpec(t, tool, tt)
		})
	}
}

func Test_ToolDefinitions_UniqueNames(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for _, build := range []func() mcp.Tool{
		listTasksTool, addTaskTool, deleteTaskTool, editTaskTool,
		taskSummaryTool, searchTasksTool, clearTasksTool,
	} {
		name := build().Name
		if seen[name] {
			t.Errorf("duplicate tool name %q", name)
		}
		seen[name] = true
	}
}
