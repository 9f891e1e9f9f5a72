package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

// DefaultFileName is the name of the text store inside the data directory.
const DefaultFileName = "todo.txt"

// TextBackend implements Backend using a line-oriented text file.
//
// Each task is one line of the form "YYYY-MM-DD|text". The file is created
// on first append, read in full on every query and rewritten in full on
// every delete or edit. Rewrites go through a synced temporary file renamed
// over the original and keep the original's permission bits.
//
// Operations are serialized within a process; nothing guards against a second
// process editing the same file.
type TextBackend struct {
	// FilePath is the path to the text file.
	FilePath string

	mu sync.Mutex
}

// NewTextBackend creates a new TextBackend for the given file path.
//
// Parent directories are created automatically when appending tasks.
func NewTextBackend(filePath string) *TextBackend {
	return &TextBackend{
		FilePath: filePath,
	}
}

// checkSingleLine rejects text that would split a record across lines.
func checkSingleLine(text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return ErrInvalidText
	}
	return nil
}

// normalizeText trims surrounding whitespace and rejects embedded line breaks.
//
// Returns "" (and no error) for blank input so callers can treat it as a no-op.
func normalizeText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if err := checkSingleLine(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// readLines returns every line of the file with line terminators removed.
//
// A trailing newline does not produce an empty final line. CRLF endings
// written by Windows editors are accepted.
func (b *TextBackend) readLines() ([]string, error) {
	data, err := os.ReadFile(b.FilePath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	lines := strings.Split(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines, nil
}

// ListForDate returns the texts of all lines starting with date + "|".
//
// Matching is against the full "date|" prefix, so "2024-03-1" never matches
// lines for "2024-03-10". Returns an empty slice if the file is missing or
// cannot be read; never returns an error.
func (b *TextBackend) ListForDate(date string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]string, 0)

	lines, err := b.readLines()
	if err != nil {
		// Missing or unreadable file means no tasks
		return result, nil
	}

	prefix := date + Delimiter
	for _, line := range lines {
		if text, ok := strings.CutPrefix(line, prefix); ok {
			result = append(result, text)
		}
	}

	return result, nil
}

// AddTask appends "date|text\n" to the end of the file.
//
// Creates the file and its parent directories if absent. Blank text is
// ignored. If the existing file does not end with a newline (for example
// after a manual edit), one is inserted first so records never merge.
func (b *TextBackend) AddTask(date, text string) error {
	text, err := normalizeText(text)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(b.FilePath), 0o755); err != nil {
		return fmt.Errorf("failed to create task directory: %w", err)
	}

	f, err := os.OpenFile(b.FilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open task file: %w", err)
	}

	record := Task{Date: date, Text: text}.Line() + "\n"
	if missing, err := missingTrailingNewline(f); err == nil && missing {
		record = "\n" + record
	}

	_, writeErr := f.WriteString(record)
	closeErr := f.Close()

	if writeErr != nil {
		return fmt.Errorf("failed to append task: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close task file: %w", closeErr)
	}

	return nil
}

// missingTrailingNewline reports whether a non-empty file lacks a final '\n'.
func missingTrailingNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil && err != io.EOF {
		return false, err
	}
	return last[0] != '\n', nil
}

// DeleteTask removes every line exactly equal to date + "|" + text.
//
// The whole file is read, retained lines are written to a temporary file in
// the same directory, and the temporary file is renamed over the original.
// If nothing matches the file is left untouched. A missing file is not an
// error. The text is compared untrimmed, so padded lines written by other
// tools can still be removed.
func (b *TextBackend) DeleteTask(date, text string) (int, error) {
	if err := checkSingleLine(text); err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	lines, err := b.readLines()
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read task file: %w", err)
	}

	target := Task{Date: date, Text: text}.Line()
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != target {
			kept = append(kept, line)
		}
	}

	removed := len(lines) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	if err := b.rewrite(kept); err != nil {
		return 0, err
	}

	return removed, nil
}

// EditTask replaces every line exactly equal to date + "|" + oldText with
// date + "|" + newText in a single rewrite. Lines keep their positions.
func (b *TextBackend) EditTask(date, oldText, newText string) (int, error) {
	if err := checkSingleLine(oldText); err != nil {
		return 0, err
	}
	newText, err := normalizeText(newText)
	if err != nil {
		return 0, err
	}
	if newText == "" {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	lines, err := b.readLines()
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read task file: %w", err)
	}

	target := Task{Date: date, Text: oldText}.Line()
	replacement := Task{Date: date, Text: newText}.Line()
	edited := 0
	for i, line := range lines {
		if line == target {
			lines[i] = replacement
			edited++
		}
	}

	if edited == 0 {
		return 0, nil
	}

	if err := b.rewrite(lines); err != nil {
		return 0, err
	}

	return edited, nil
}

// rewrite replaces the file contents with lines via a temp file and rename.
//
// The replacement keeps the permission bits of the file it replaces.
func (b *TextBackend) rewrite(lines []string) error {
	var buf strings.Builder
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if err := atomic.WriteFile(b.FilePath, strings.NewReader(buf.String())); err != nil {
		return fmt.Errorf("failed to replace task file: %w", err)
	}

	return nil
}

// LoadAll returns every well-formed record in file order.
//
// Lines without a delimiter are skipped. Returns an empty slice if the file
// is missing or unreadable.
func (b *TextBackend) LoadAll() ([]Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]Task, 0)

	lines, err := b.readLines()
	if err != nil {
		return result, nil
	}

	for _, line := range lines {
		date, text, ok := strings.Cut(line, Delimiter)
		if !ok {
			continue
		}
		result = append(result, Task{Date: date, Text: text})
	}

	return result, nil
}

// Clear truncates the store to an empty file. A missing file stays missing.
func (b *TextBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := os.Stat(b.FilePath); os.IsNotExist(err) {
		return nil
	}

	return b.rewrite(nil)
}

// Close is a no-op; the text backend holds no open handles between calls.
func (b *TextBackend) Close() error {
	return nil
}
