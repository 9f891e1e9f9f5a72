// Package agenda derives calendar views from the flat task list: per-date
// summaries, text search over a date range, and pagination.
package agenda

import (
	"sort"
	"strings"

	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// DefaultPageSize is the page size used when a caller passes zero or less.
const DefaultPageSize = 25

// DateCount is the number of tasks on one date.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary aggregates the whole store.
type Summary struct {
	TotalTasks  int         `json:"total_tasks"`
	ActiveDates int         `json:"active_dates"`
	Dates       []DateCount `json:"dates"`
}

// Summarize counts tasks per date. Dates are sorted ascending.
func Summarize(tasks []storage.Task) Summary {
	counts := make(map[string]int)
	for _, task := range tasks {
		counts[task.Date]++
	}

	dates := make([]DateCount, 0, len(counts))
	for date, n := range counts {
		dates = append(dates, DateCount{Date: date, Count: n})
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Date < dates[j].Date })

	return Summary{
		TotalTasks:  len(tasks),
		ActiveDates: len(dates),
		Dates:       dates,
	}
}

// Query filters tasks for Search. Zero fields match everything.
type Query struct {
	// Text is matched case-insensitively as a substring of the task text.
	Text string `json:"text,omitempty"`

	// From is the first date included (inclusive, YYYY-MM-DD).
	From string `json:"from,omitempty"`

	// To is the last date included (inclusive, YYYY-MM-DD).
	To string `json:"to,omitempty"`
}

// Match reports whether task satisfies the query.
//
// Date bounds compare lexically, which is chronological for YYYY-MM-DD.
func (q Query) Match(task storage.Task) bool {
	if q.From != "" && task.Date < q.From {
		return false
	}
	if q.To != "" && task.Date > q.To {
		return false
	}
	if q.Text != "" && !strings.Contains(strings.ToLower(task.Text), strings.ToLower(q.Text)) {
		return false
	}
	return true
}

// Search returns the tasks matching q sorted by date. Tasks on the same
// date keep their store order.
func Search(tasks []storage.Task, q Query) []storage.Task {
	result := make([]storage.Task, 0)
	for _, task := range tasks {
		if q.Match(task) {
			result = append(result, task)
		}
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

// Page is one slice of a paginated result.
type Page struct {
	Items      []storage.Task `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
}

// Paginate returns page number page (1-based) of size items.
//
// The page is clamped to [1, TotalPages]; an empty list has one empty page.
func Paginate(tasks []storage.Task, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}

	totalPages := (len(tasks) + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * size
	end := min(start+size, len(tasks))

	items := make([]storage.Task, 0, end-start)
	items = append(items, tasks[start:end]...)

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
		Total:      len(tasks),
	}
}
