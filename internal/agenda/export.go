package agenda

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// Export/import formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// ErrUnknownFormat is returned for an unsupported export or import format.
var ErrUnknownFormat = errors.New("unknown format")

var csvHeader = []string{"Date", "Text"}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	switch normalizeFormat(format) {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "yml" {
		return FormatYAML
	}
	if f == "" {
		return FormatJSON
	}
	return f
}

// byDate groups task texts by date, keeping store order within each date.
func byDate(tasks []storage.Task) map[string][]string {
	grouped := make(map[string][]string)
	for _, task := range tasks {
		grouped[task.Date] = append(grouped[task.Date], task.Text)
	}
	return grouped
}

// flatten turns a date-keyed map back into tasks, dates ascending.
func flatten(grouped map[string][]string) []storage.Task {
	dates := make([]string, 0, len(grouped))
	for date := range grouped {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	tasks := make([]storage.Task, 0)
	for _, date := range dates {
		for _, text := range grouped[date] {
			tasks = append(tasks, storage.Task{Date: date, Text: text})
		}
	}
	return tasks
}

// Export writes tasks to w in the given format.
//
// JSON and YAML produce an object keyed by date whose values are the task
// texts for that date. CSV writes a "Date,Text" header and one row per task.
// PDF renders a printable agenda grouped by date.
func Export(w io.Writer, tasks []storage.Task, format string) error {
	switch normalizeFormat(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(byDate(tasks))

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(byDate(tasks)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()

	case FormatCSV:
		cw := csv.NewWriter(w)
		_ = cw.Write(csvHeader)
		for _, task := range tasks {
			_ = cw.Write([]string{task.Date, task.Text})
		}
		cw.Flush()
		return cw.Error()

	case FormatPDF:
		return exportPDF(w, tasks)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// exportPDF renders tasks as an A4 agenda with one heading per date.
func exportPDF(w io.Writer, tasks []storage.Task) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate UTF-8 input
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Calendar Agenda")
	pdf.Ln(14)

	sorted := flatten(byDate(tasks))
	if len(sorted) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(40, 8, "No tasks")
	}

	current := ""
	for _, task := range sorted {
		if task.Date != current {
			current = task.Date
			pdf.Ln(2)
			pdf.SetFont("Arial", "B", 12)
			pdf.Cell(40, 8, tr(current))
			pdf.Ln(8)
			pdf.SetFont("Arial", "", 11)
		}
		pdf.MultiCell(0, 6, tr("- "+task.Text), "0", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// Import parses tasks from r in the given format (json, yaml or csv).
//
// JSON and YAML expect the date-keyed object written by Export; tasks come
// back sorted by date. CSV rows are returned in file order; a leading
// "Date,Text" header row is optional.
func Import(r io.Reader, format string) ([]storage.Task, error) {
	switch normalizeFormat(format) {
	case FormatJSON:
		var grouped map[string][]string
		if err := json.NewDecoder(r).Decode(&grouped); err != nil {
			return nil, fmt.Errorf("failed to decode json: %w", err)
		}
		return flatten(grouped), nil

	case FormatYAML:
		var grouped map[string][]string
		if err := yaml.NewDecoder(r).Decode(&grouped); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
		return flatten(grouped), nil

	case FormatCSV:
		return importCSV(r)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func importCSV(r io.Reader) ([]storage.Task, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to decode csv: %w", err)
	}

	tasks := make([]storage.Task, 0, len(records))
	for i, rec := range records {
		if i == 0 && len(rec) >= 2 &&
			strings.EqualFold(rec[0], csvHeader[0]) && strings.EqualFold(rec[1], csvHeader[1]) {
			continue
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("failed to decode csv: row %d has %d fields, want 2", i+1, len(rec))
		}
		tasks = append(tasks, storage.Task{Date: rec[0], Text: rec[1]})
	}
	return tasks, nil
}

// ImportInto appends tasks to store, merging with what is already there.
//
// Blank texts are skipped; duplicates are kept. Returns the number of tasks
// added. Stops at the first storage error.
func ImportInto(store storage.TaskStore, tasks []storage.Task) (int, error) {
	added := 0
	for _, task := range tasks {
		if strings.TrimSpace(task.Text) == "" {
			continue
		}
		if err := store.AddTask(task.Date, task.Text); err != nil {
			return added, fmt.Errorf("failed to import task %q on %s: %w", task.Text, task.Date, err)
		}
		added++
	}
	return added, nil
}
