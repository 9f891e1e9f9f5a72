// Package command decodes task commands from a JSON stream and runs them
// against a storage backend.
//
// Each command is one JSON object, typically one per line:
//
//	{"action":"add","date":"2024-03-01","text":"Buy milk"}
//	{"action":"list","date":"2024-03-01"}
//
// Every mutation re-lists the affected date so the result carries the
// refreshed view, the same way an interactive front-end redraws after a change.
package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JamesPrial/calendar-todo/internal/agenda"
	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// Actions understood by Dispatch.
const (
	ActionList    = "list"
	ActionAdd     = "add"
	ActionDelete  = "delete"
	ActionEdit    = "edit"
	ActionSummary = "summary"
	ActionSearch  = "search"
	ActionExport  = "export"
	ActionClear   = "clear"
)

// ErrUnknownAction is returned by Dispatch for an unrecognized action.
var ErrUnknownAction = errors.New("unknown action")

// Command is one request decoded from the stream.
type Command struct {
	// Action is one of the Action* names (case-insensitive).
	Action string `json:"action"`

	// Date is the calendar day (YYYY-MM-DD). Empty means today.
	Date string `json:"date,omitempty"`

	// Text is the task text for add and delete, and the text to replace for edit.
	Text string `json:"text,omitempty"`

	// NewText is the replacement text for edit.
	NewText string `json:"new_text,omitempty"`

	// Query, From and To filter search results.
	Query string `json:"query,omitempty"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`

	// Page and PageSize select a page of search results.
	Page     int `json:"page,omitempty"`
	PageSize int `json:"page_size,omitempty"`

	// Format is the export format (json, yaml or csv).
	Format string `json:"format,omitempty"`
}

// Result is the outcome of a dispatched command.
//
// Tasks is always encoded so an emptied date reads as [] rather than as a
// missing field. Removed and Edited are set only by their own actions.
type Result struct {
	Action   string          `json:"action"`
	Date     string          `json:"date,omitempty"`
	Tasks    []string        `json:"tasks"`
	Removed  *int            `json:"removed,omitempty"`
	Edited   *int            `json:"edited,omitempty"`
	Summary  *agenda.Summary `json:"summary,omitempty"`
	Page     *agenda.Page    `json:"page,omitempty"`
	Document string          `json:"document,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// ReadCommands decodes every command in r.
//
// Returns an error naming the position of the first malformed command.
// An empty stream yields an empty slice.
func ReadCommands(r io.Reader) ([]Command, error) {
	cmds := make([]Command, 0)

	decoder := json.NewDecoder(r)
	for {
		var cmd Command
		err := decoder.Decode(&cmd)
		if errors.Is(err, io.EOF) {
			return cmds, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode command %d: %w", len(cmds)+1, err)
		}
		cmds = append(cmds, cmd)
	}
}

// Dispatch runs cmd against store.
func Dispatch(store storage.Backend, cmd Command) (Result, error) {
	action := strings.ToLower(strings.TrimSpace(cmd.Action))
	date := strings.TrimSpace(cmd.Date)
	if date == "" {
		date = storage.Today()
	}

	switch action {
	case ActionList:
		return relist(store, Result{Action: action, Date: date})

	case ActionAdd:
		if err := store.AddTask(date, cmd.Text); err != nil {
			return Result{}, err
		}
		return relist(store, Result{Action: action, Date: date})

	case ActionDelete:
		removed, err := store.DeleteTask(date, cmd.Text)
		if err != nil {
			return Result{}, err
		}
		return relist(store, Result{Action: action, Date: date, Removed: &removed})

	case ActionEdit:
		edited, err := store.EditTask(date, cmd.Text, cmd.NewText)
		if err != nil {
			return Result{}, err
		}
		return relist(store, Result{Action: action, Date: date, Edited: &edited})

	case ActionSummary:
		tasks, err := store.LoadAll()
		if err != nil {
			return Result{}, err
		}
		summary := agenda.Summarize(tasks)
		return Result{Action: action, Summary: &summary}, nil

	case ActionSearch:
		tasks, err := store.LoadAll()
		if err != nil {
			return Result{}, err
		}
		matches := agenda.Search(tasks, agenda.Query{Text: cmd.Query, From: cmd.From, To: cmd.To})
		page := agenda.Paginate(matches, cmd.Page, cmd.PageSize)
		return Result{Action: action, Page: &page}, nil

	case ActionExport:
		if strings.EqualFold(strings.TrimSpace(cmd.Format), agenda.FormatPDF) {
			return Result{}, fmt.Errorf("%w: pdf cannot be embedded in a command result", agenda.ErrUnknownFormat)
		}
		tasks, err := store.LoadAll()
		if err != nil {
			return Result{}, err
		}
		var buf bytes.Buffer
		if err := agenda.Export(&buf, tasks, cmd.Format); err != nil {
			return Result{}, err
		}
		return Result{Action: action, Document: buf.String()}, nil

	case ActionClear:
		if err := store.Clear(); err != nil {
			return Result{}, err
		}
		return Result{Action: action}, nil

	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}

func relist(store storage.TaskStore, res Result) (Result, error) {
	tasks, err := store.ListForDate(res.Date)
	if err != nil {
		return Result{}, err
	}
	res.Tasks = tasks
	return res, nil
}

// Run decodes commands from r and dispatches each in order, writing one JSON
// result per line to w.
//
// A failing command produces a result with Error set and does not stop the
// stream. Returns the number of failed commands, or an error if the stream
// itself cannot be decoded or written.
func Run(store storage.Backend, r io.Reader, w io.Writer) (int, error) {
	cmds, err := ReadCommands(r)
	if err != nil {
		return 0, err
	}

	encoder := json.NewEncoder(w)
	failed := 0
	for _, cmd := range cmds {
		res, err := Dispatch(store, cmd)
		if err != nil {
			failed++
			res = Result{Action: cmd.Action, Date: cmd.Date, Error: err.Error()}
		}
		if err := encoder.Encode(res); err != nil {
			return failed, fmt.Errorf("failed to write result: %w", err)
		}
	}
	return failed, nil
}
