// Package mcpserver exposes the task store as Model Context Protocol tools.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

const dateDescription = "Calendar date in YYYY-MM-DD form (defaults to today)"

// listTasksTool returns a tool definition for listing the tasks on one date.
func listTasksTool() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List the tasks stored for a calendar date, in insertion order."),
		mcp.WithString("date",
			mcp.Description(dateDescription)),
	)
}

// addTaskTool returns a tool definition for adding a task.
func addTaskTool() mcp.Tool {
	return mcp.NewTool("add_task",
		mcp.WithDescription("Add a task to a calendar date. Blank text is ignored. Returns the refreshed list for that date."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Single-line task text")),
		mcp.WithString("date",
			mcp.Description(dateDescription)),
	)
}

// deleteTaskTool returns a tool definition for deleting a task.
func deleteTaskTool() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription("Delete every task on a date whose text matches exactly. Returns the number removed and the refreshed list."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Task text to remove (exact match)")),
		mcp.WithString("date",
			mcp.Description(dateDescription)),
	)
}

// editTaskTool returns a tool definition for changing a task's text.
func editTaskTool() mcp.Tool {
	return mcp.NewTool("edit_task",
		mcp.WithDescription("Replace the text of every task on a date whose text matches exactly, keeping their positions. Blank new_text is ignored. Returns the number edited and the refreshed list."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Current task text (exact match)")),
		mcp.WithString("new_text",
			mcp.Required(),
			mcp.Description("Replacement single-line task text")),
		mcp.WithString("date",
			mcp.Description(dateDescription)),
	)
}

// taskSummaryTool returns a tool definition for the per-date summary.
func taskSummaryTool() mcp.Tool {
	return mcp.NewTool("task_summary",
		mcp.WithDescription("Summarize the store: total tasks, number of dates with tasks, and a count per date."),
	)
}

// searchTasksTool returns a tool definition for searching tasks.
func searchTasksTool() mcp.Tool {
	return mcp.NewTool("search_tasks",
		mcp.WithDescription("Search tasks by case-insensitive text and an optional inclusive date range. Results are paginated."),
		mcp.WithString("query",
			mcp.Description("Substring to look for in task text")),
		mcp.WithString("from",
			mcp.Description("First date to include (YYYY-MM-DD)")),
		mcp.WithString("to",
			mcp.Description("Last date to include (YYYY-MM-DD)")),
		mcp.WithNumber("page",
			mcp.Description("1-based page number (defaults to 1)")),
		mcp.WithNumber("page_size",
			mcp.Description("Results per page (defaults to 25)")),
	)
}

// clearTasksTool returns a tool definition for removing every task.
func clearTasksTool() mcp.Tool {
	return mcp.NewTool("clear_tasks",
		mcp.WithDescription("Remove every task on every date. Requires confirm to be \"yes\"."),
		mcp.WithString("confirm",
			mcp.Required(),
			mcp.Description("Must be \"yes\" to proceed")),
	)
}
