// Package storage provides interfaces and types for date-keyed task persistence.
//
// This package defines the task record and the storage backend contracts
// shared by every front-end (CLI, stdin command stream, MCP server, HTTP API).
// The canonical backend is a plain text file with one "date|text" line per
// task; SQL backends implement the same contract for users who want a database.
package storage

import (
	"errors"
	"time"
)

// DateLayout is the canonical on-disk date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// Delimiter separates the date from the task text on each line.
const Delimiter = "|"

var (
	// ErrInvalidText is returned when task text contains a line break and
	// would break the one-record-per-line file format.
	ErrInvalidText = errors.New("task text must be a single line")

	// ErrUnknownBackend is returned by NewBackend for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Task is a single to-do record keyed by calendar date.
//
// Two tasks with the same Date and Text are indistinguishable; there is no
// per-record identity.
type Task struct {
	// Date is the calendar day in YYYY-MM-DD form.
	Date string `json:"date" yaml:"date"`

	// Text is the single-line task description.
	Text string `json:"text" yaml:"text"`
}

// Line encodes the task as it appears in the text file, without the trailing newline.
func (t Task) Line() string {
	return t.Date + Delimiter + t.Text
}

// FormatDate renders a time as a canonical task date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current local date in canonical form.
func Today() string {
	return FormatDate(time.Now())
}

// TaskStore is the narrow surface front-ends consume.
//
// Front-ends supply the selected date on every call and re-list after
// each mutation to refresh their display.
type TaskStore interface {
	// ListForDate returns the texts of all tasks on date, in store order.
	//
	// Returns an empty slice when no tasks match.
	ListForDate(date string) ([]string, error)

	// AddTask appends a task for date.
	//
	// Text is trimmed of surrounding whitespace; an empty result is a
	// silent no-op. Duplicates are permitted.
	AddTask(date, text string) error

	// DeleteTask removes every task exactly matching (date, text).
	//
	// Text is compared as given, without trimming, so a value returned by
	// ListForDate always matches its own line. Returns the number of
	// records removed.
	DeleteTask(date, text string) (int, error)
}

// Backend extends TaskStore with task editing and the whole-store
// operations used by the summary, search, export and import features.
type Backend interface {
	TaskStore

	// EditTask replaces the text of every task exactly matching
	// (date, oldText) with newText, keeping each task's position.
	//
	// oldText is matched as given; newText is trimmed like AddTask and a
	// blank result is a silent no-op. Returns the number of records changed.
	EditTask(date, oldText, newText string) (int, error)

	// LoadAll returns every task in store order.
	LoadAll() ([]Task, error)

	// Clear removes all tasks.
	Clear() error

	// Close releases any resources held by the backend.
	Close() error
}
