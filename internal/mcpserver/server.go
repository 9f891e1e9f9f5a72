package mcpserver

import (
	"errors"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// NewServer creates and configures a new MCP server with all task tools
// registered against backend.
func NewServer(backend storage.Backend, logger zerolog.Logger) (*server.MCPServer, error) {
	if backend == nil {
		return nil, errors.New("mcpserver: nil storage backend")
	}

	h := NewTaskTools(backend, logger)

	s := server.NewMCPServer(
		"calendar-todo",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Per-date tools
	s.AddTool(listTasksTool(), h.HandleListTasks)
	s.AddTool(addTaskTool(), h.HandleAddTask)
	s.AddTool(deleteTaskTool(), h.HandleDeleteTask)
	s.AddTool(editTaskTool(), h.HandleEditTask)

	// Whole-store tools
	s.AddTool(taskSummaryTool(), h.HandleTaskSummary)
	s.AddTool(searchTasksTool(), h.HandleSearchTasks)
	s.AddTool(clearTasksTool(), h.HandleClearTasks)

	return s, nil
}
