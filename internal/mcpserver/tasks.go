package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/JamesPrial/calendar-todo/internal/agenda"
	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// TaskTools holds the backend the tool handlers operate on.
type TaskTools struct {
	backend storage.Backend
	logger  zerolog.Logger
}

// NewTaskTools creates a handler set for backend.
func NewTaskTools(backend storage.Backend, logger zerolog.Logger) *TaskTools {
	return &TaskTools{backend: backend, logger: logger}
}

// dateList is the JSON body returned by list, add, delete and edit.
type dateList struct {
	Date    string   `json:"date"`
	Tasks   []string `json:"tasks"`
	Removed *int     `json:"removed,omitempty"`
	Edited  *int     `json:"edited,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func dateArg(request mcp.CallToolRequest) string {
	date := strings.TrimSpace(request.GetString("date", ""))
	if date == "" {
		return storage.Today()
	}
	return date
}

// relist reads date back after a mutation. Read failures are logged and
// reported as an empty list since the mutation itself already succeeded.
func (h *TaskTools) relist(date string) []string {
	tasks, err := h.backend.ListForDate(date)
	if err != nil {
		h.logger.Warn().Err(err).Str("date", date).Msg("failed to refresh task list")
		return []string{}
	}
	return tasks
}

// HandleListTasks returns the tasks for the requested date.
func (h *TaskTools) HandleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := dateArg(request)

	tasks, err := h.backend.ListForDate(date)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
	}
	return jsonResult(dateList{Date: date, Tasks: tasks})
}

// HandleAddTask appends a task and returns the refreshed list.
func (h *TaskTools) HandleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: text"), nil
	}
	date := dateArg(request)

	if err := h.backend.AddTask(date, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to add task: %v", err)), nil
	}
	h.logger.Info().Str("op", "add").Str("date", date).Msg("task added")

	return jsonResult(dateList{Date: date, Tasks: h.relist(date)})
}

// HandleDeleteTask removes every exact match and returns the refreshed list.
func (h *TaskTools) HandleDeleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: text"), nil
	}
	date := dateArg(request)

	removed, err := h.backend.DeleteTask(date, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete task: %v", err)), nil
	}
	h.logger.Info().Str("op", "delete").Str("date", date).Int("removed", removed).Msg("task deleted")

	return jsonResult(dateList{Date: date, Tasks: h.relist(date), Removed: &removed})
}

// HandleEditTask rewrites every exact match and returns the refreshed list.
func (h *TaskTools) HandleEditTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: text"), nil
	}
	newText, err := request.RequireString("new_text")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: new_text"), nil
	}
	date := dateArg(request)

	edited, err := h.backend.EditTask(date, text, newText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit task: %v", err)), nil
	}
	h.logger.Info().Str("op", "edit").Str("date", date).Int("edited", edited).Msg("task edited")

	return jsonResult(dateList{Date: date, Tasks: h.relist(date), Edited: &edited})
}

// HandleTaskSummary returns per-date counts for the whole store.
func (h *TaskTools) HandleTaskSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := h.backend.LoadAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load tasks: %v", err)), nil
	}
	return jsonResult(agenda.Summarize(tasks))
}

// HandleSearchTasks filters the store and returns one page of matches.
func (h *TaskTools) HandleSearchTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, err := h.backend.LoadAll()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load tasks: %v", err)), nil
	}

	query := agenda.Query{
		Text: request.GetString("query", ""),
		From: request.GetString("from", ""),
		To:   request.GetString("to", ""),
	}
	matches := agenda.Search(tasks, query)

	return jsonResult(agenda.Paginate(matches, request.GetInt("page", 1), request.GetInt("page_size", agenda.DefaultPageSize)))
}

// HandleClearTasks removes every task after an explicit confirmation.
func (h *TaskTools) HandleClearTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	confirm, err := request.RequireString("confirm")
	if err != nil || !strings.EqualFold(strings.TrimSpace(confirm), "yes") {
		return mcp.NewToolResultError("Refusing to clear tasks: confirm must be \"yes\""), nil
	}

	if err := h.backend.Clear(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to clear tasks: %v", err)), nil
	}
	h.logger.Info().Str("op", "clear").Msg("all tasks cleared")

	return mcp.NewToolResultText("All tasks cleared."), nil
}
