// Package pathutil resolves user-supplied store locations.
//
// Custom file paths from the environment (TODO_FILE_PATH, TODO_SQLITE_PATH)
// are resolved against the data directory and must not escape it, even via
// symlinks or "..".
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmptyPath is returned for empty or whitespace-only paths.
	ErrEmptyPath = errors.New("path is empty or whitespace-only")

	// ErrNullByte is returned for paths containing a NUL byte.
	ErrNullByte = errors.New("path contains null byte")

	// ErrEscapesBase is returned when the resolved path lies outside the base directory.
	ErrEscapesBase = errors.New("path escapes base directory")
)

// ResolveSafePath resolves userPath against baseDir and returns an absolute
// path that is guaranteed to lie inside baseDir after symlink resolution.
//
// Relative paths are joined with baseDir; absolute paths are accepted only
// if they already point inside it. The target file (and any number of its
// parent directories) need not exist yet, so a fresh data directory works.
//
// Example:
//
//	path, err := ResolveSafePath("/home/user/calendar", "lists/todo.txt")
//	// path == "/home/user/calendar/lists/todo.txt"
func ResolveSafePath(baseDir, userPath string) (string, error) {
	if strings.TrimSpace(userPath) == "" {
		return "", ErrEmptyPath
	}
	if strings.ContainsRune(userPath, 0) {
		return "", ErrNullByte
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	base, err := filepath.EvalSymlinks(absBase)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	candidate := userPath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(absBase, candidate)
	}

	resolved, err := resolvePartial(filepath.Clean(candidate))
	if err != nil {
		return "", err
	}

	if !within(base, resolved) {
		return "", fmt.Errorf("%w: %s", ErrEscapesBase, userPath)
	}

	return resolved, nil
}

// within reports whether target equals base or lies beneath it.
func within(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolvePartial resolves symlinks in the longest existing prefix of path
// and re-appends the components that do not exist yet.
func resolvePartial(path string) (string, error) {
	current := path
	var missing []string

	for {
		if _, err := os.Lstat(current); err == nil {
			resolved, err := filepath.EvalSymlinks(current)
			if err != nil {
				return "", fmt.Errorf("failed to resolve symlinks: %w", err)
			}
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to stat %s: %w", current, err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing parent directory found for %s", path)
		}

		missing = append(missing, filepath.Base(current))
		current = parent
	}
}
