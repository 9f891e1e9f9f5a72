package storage_test

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// ---------------------------------------------------------------------------
// Behavior shared by every backend
// ---------------------------------------------------------------------------

// backendFactory returns a fresh, empty backend for one subtest.
type backendFactory func(t *testing.T) storage.Backend

// runBackendContract exercises the TaskStore and Backend contract against
// backends produced by newBackend. Subtests are sequential so SQL backends
// that share a database can truncate between cases.
func runBackendContract(t *testing.T, newBackend backendFactory) {
	t.Helper()

	t.Run("empty store lists nothing", func(t *testing.T) {
		b := newBackend(t)
		assertList(t, b, "2024-03-01", []string{})
	})

	t.Run("add then list", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "Buy milk")
		assertList(t, b, "2024-03-01", []string{"Buy milk"})
	})

	t.Run("add increases count by exactly one", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "one")
		before := mustList(t, b, "2024-03-01")
		mustAdd(t, b, "2024-03-01", "two")
		after := mustList(t, b, "2024-03-01")
		if len(after) != len(before)+1 {
			t.Errorf("count after add = %d, want %d", len(after), len(before)+1)
		}
	})

	t.Run("blank text is a no-op", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "keep")
		for _, text := range []string{"", "   ", "\t"} {
			if err := b.AddTask("2024-03-01", text); err != nil {
				t.Errorf("AddTask(%q) error = %v, want nil", text, err)
			}
		}
		assertList(t, b, "2024-03-01", []string{"keep"})
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "  padded  ")
		assertList(t, b, "2024-03-01", []string{"padded"})
	})

	t.Run("embedded newline is rejected", func(t *testing.T) {
		b := newBackend(t)
		err := b.AddTask("2024-03-01", "line one\nline two")
		if !errors.Is(err, storage.ErrInvalidText) {
			t.Errorf("AddTask() error = %v, want ErrInvalidText", err)
		}
		assertList(t, b, "2024-03-01", []string{})
	})

	t.Run("insertion order preserved scenario", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "Buy milk")
		assertList(t, b, "2024-03-01", []string{"Buy milk"})
		mustAdd(t, b, "2024-03-01", "Call Bob")
		assertList(t, b, "2024-03-01", []string{"Buy milk", "Call Bob"})
		if n := mustDelete(t, b, "2024-03-01", "Buy milk"); n != 1 {
			t.Errorf("DeleteTask() removed %d, want 1", n)
		}
		assertList(t, b, "2024-03-01", []string{"Call Bob"})
	})

	t.Run("delete removes every duplicate", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "dup")
		mustAdd(t, b, "2024-03-01", "other")
		mustAdd(t, b, "2024-03-01", "dup")
		if n := mustDelete(t, b, "2024-03-01", "dup"); n != 2 {
			t.Errorf("DeleteTask() removed %d, want 2", n)
		}
		assertList(t, b, "2024-03-01", []string{"other"})
	})

	t.Run("delete only touches the given date", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "same")
		mustAdd(t, b, "2024-03-02", "same")
		mustDelete(t, b, "2024-03-01", "same")
		assertList(t, b, "2024-03-01", []string{})
		assertList(t, b, "2024-03-02", []string{"same"})
	})

	t.Run("delete with no match removes nothing", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "Buy milk")
		if n := mustDelete(t, b, "2024-03-01", "buy milk"); n != 0 {
			t.Errorf("DeleteTask() removed %d, want 0 (match is case-sensitive)", n)
		}
		if n := mustDelete(t, b, "2024-03-01", "Buy"); n != 0 {
			t.Errorf("DeleteTask() removed %d, want 0 (match is exact)", n)
		}
		assertList(t, b, "2024-03-01", []string{"Buy milk"})
	})

	t.Run("delete on empty store", func(t *testing.T) {
		b := newBackend(t)
		if n := mustDelete(t, b, "2024-03-01", "anything"); n != 0 {
			t.Errorf("DeleteTask() removed %d, want 0", n)
		}
	})

	t.Run("date prefixes never leak", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-1", "short")
		mustAdd(t, b, "2024-03-10", "long")
		assertList(t, b, "2024-03-1", []string{"short"})
		assertList(t, b, "2024-03-10", []string{"long"})
		assertList(t, b, "2024-03", []string{})
	})

	t.Run("delimiter inside text", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "a|b|c")
		assertList(t, b, "2024-03-01", []string{"a|b|c"})
		if n := mustDelete(t, b, "2024-03-01", "a|b|c"); n != 1 {
			t.Errorf("DeleteTask() removed %d, want 1", n)
		}
	})

	t.Run("delete compares text untrimmed", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "x")
		if n := mustDelete(t, b, "2024-03-01", " x "); n != 0 {
			t.Errorf("DeleteTask(\" x \") removed %d, want 0", n)
		}
		assertList(t, b, "2024-03-01", []string{"x"})
	})

	t.Run("delete rejects embedded newline", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "a")
		if _, err := b.DeleteTask("2024-03-01", "a\nb"); !errors.Is(err, storage.ErrInvalidText) {
			t.Errorf("DeleteTask() error = %v, want ErrInvalidText", err)
		}
		assertList(t, b, "2024-03-01", []string{"a"})
	})

	t.Run("edit replaces text in place", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "first")
		mustAdd(t, b, "2024-03-01", "Buy milk")
		mustAdd(t, b, "2024-03-01", "last")
		if n := mustEdit(t, b, "2024-03-01", "Buy milk", "  Buy oat milk "); n != 1 {
			t.Errorf("EditTask() edited %d, want 1", n)
		}
		assertList(t, b, "2024-03-01", []string{"first", "Buy oat milk", "last"})
	})

	t.Run("edit changes every duplicate on that date only", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "dup")
		mustAdd(t, b, "2024-03-01", "dup")
		mustAdd(t, b, "2024-03-02", "dup")
		if n := mustEdit(t, b, "2024-03-01", "dup", "done"); n != 2 {
			t.Errorf("EditTask() edited %d, want 2", n)
		}
		assertList(t, b, "2024-03-01", []string{"done", "done"})
		assertList(t, b, "2024-03-02", []string{"dup"})
	})

	t.Run("edit to the same text counts matches", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "same")
		if n := mustEdit(t, b, "2024-03-01", "same", "same"); n != 1 {
			t.Errorf("EditTask() edited %d, want 1", n)
		}
		assertList(t, b, "2024-03-01", []string{"same"})
	})

	t.Run("edit with blank or missing text is a no-op", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "keep")
		if n := mustEdit(t, b, "2024-03-01", "keep", "   "); n != 0 {
			t.Errorf("EditTask(blank) edited %d, want 0", n)
		}
		if n := mustEdit(t, b, "2024-03-01", "absent", "new"); n != 0 {
			t.Errorf("EditTask(absent) edited %d, want 0", n)
		}
		assertList(t, b, "2024-03-01", []string{"keep"})
	})

	t.Run("edit rejects embedded newline", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "keep")
		if _, err := b.EditTask("2024-03-01", "keep", "one\ntwo"); !errors.Is(err, storage.ErrInvalidText) {
			t.Errorf("EditTask(new with newline) error = %v, want ErrInvalidText", err)
		}
		if _, err := b.EditTask("2024-03-01", "ke\rep", "x"); !errors.Is(err, storage.ErrInvalidText) {
			t.Errorf("EditTask(old with CR) error = %v, want ErrInvalidText", err)
		}
		assertList(t, b, "2024-03-01", []string{"keep"})
	})

	t.Run("unicode text", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "Café ☕ 日本語")
		assertList(t, b, "2024-03-01", []string{"Café ☕ 日本語"})
	})

	t.Run("load all in store order", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-02", "b")
		mustAdd(t, b, "2024-03-01", "a")
		mustAdd(t, b, "2024-03-02", "c")

		got, err := b.LoadAll()
		if err != nil {
			t.Fatalf("LoadAll() error: %v", err)
		}
		want := []storage.Task{
			{Date: "2024-03-02", Text: "b"},
			{Date: "2024-03-01", Text: "a"},
			{Date: "2024-03-02", Text: "c"},
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("LoadAll() = %v, want %v", got, want)
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		b := newBackend(t)
		mustAdd(t, b, "2024-03-01", "a")
		mustAdd(t, b, "2024-03-02", "b")
		if err := b.Clear(); err != nil {
			t.Fatalf("Clear() error: %v", err)
		}
		all, err := b.LoadAll()
		if err != nil {
			t.Fatalf("LoadAll() error: %v", err)
		}
		if len(all) != 0 {
			t.Errorf("LoadAll() after Clear = %v, want empty", all)
		}
		mustAdd(t, b, "2024-03-01", "fresh")
		assertList(t, b, "2024-03-01", []string{"fresh"})
	})

	t.Run("concurrent adds are not lost", func(t *testing.T) {
		b := newBackend(t)

		const workers = 8
		const perWorker = 10

		var wg sync.WaitGroup
		errCh := make(chan error, workers*perWorker)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					if err := b.AddTask("2024-03-01", fmt.Sprintf("w%d-%d", id, i)); err != nil {
						errCh <- err
					}
				}
			}(w)
		}
		wg.Wait()
		close(errCh)

		for err := range errCh {
			t.Errorf("concurrent AddTask error: %v", err)
		}
		if got := mustList(t, b, "2024-03-01"); len(got) != workers*perWorker {
			t.Errorf("ListForDate() returned %d tasks, want %d", len(got), workers*perWorker)
		}
	})
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func mustAdd(t *testing.T, b storage.TaskStore, date, text string) {
	t.Helper()
	if err := b.AddTask(date, text); err != nil {
		t.Fatalf("AddTask(%q, %q) error: %v", date, text, err)
	}
}

func mustDelete(t *testing.T, b storage.TaskStore, date, text string) int {
	t.Helper()
	n, err := b.DeleteTask(date, text)
	if err != nil {
		t.Fatalf("DeleteTask(%q, %q) error: %v", date, text, err)
	}
	return n
}

func mustEdit(t *testing.T, b storage.Backend, date, oldText, newText string) int {
	t.Helper()
	n, err := b.EditTask(date, oldText, newText)
	if err != nil {
		t.Fatalf("EditTask(%q, %q, %q) error: %v", date, oldText, newText, err)
	}
	return n
}

func mustList(t *testing.T, b storage.TaskStore, date string) []string {
	t.Helper()
	got, err := b.ListForDate(date)
	if err != nil {
		t.Fatalf("ListForDate(%q) error: %v", date, err)
	}
	return got
}

func assertList(t *testing.T, b storage.TaskStore, date string, want []string) {
	t.Helper()
	got := mustList(t, b, date)
	if got == nil {
		t.Errorf("ListForDate(%q) returned nil, want non-nil slice", date)
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListForDate(%q) = %q, want %q", date, got, want)
	}
}
