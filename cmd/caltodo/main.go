// Package main implements caltodo, the command-line front-end for the
// date-keyed task store.
//
// Usage:
//
//	caltodo list    [-date YYYY-MM-DD]
//	caltodo add     [-date YYYY-MM-DD] text...
//	caltodo delete  [-date YYYY-MM-DD] text...
//	caltodo edit    [-date YYYY-MM-DD] -old text new text...
//	caltodo summary
//	caltodo search  [-q text] [-from date] [-to date] [-page n] [-page-size n]
//	caltodo export  [-format json|yaml|csv|pdf] [-o file]
//	caltodo import  [-format json|yaml|csv] [file]
//	caltodo clear   -yes
//	caltodo exec    < commands.jsonl
//
// Exit codes:
//   - 0: Success
//   - 1: Error (bad usage, invalid configuration, storage failure)
//
// Environment variables (also read from ./.env):
//   - CALTODO_DATA_DIR: Base directory for store files (default ".").
//   - TODO_STORAGE_BACKEND: "text" (default), "sqlite", "postgres" or "mysql".
//   - TODO_FILE_PATH, TODO_SQLITE_PATH: Custom paths inside CALTODO_DATA_DIR.
//   - TODO_POSTGRES_URL, TODO_MYSQL_DSN: Connection strings for SQL servers.
//   - TODO_LOG_LEVEL: zerolog level for stderr logging (default "info").
//   - DEBUG: Optional. Forces debug logging.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/JamesPrial/calendar-todo/internal/agenda"
	"github.com/JamesPrial/calendar-todo/internal/command"
	"github.com/JamesPrial/calendar-todo/internal/config"
	"github.com/JamesPrial/calendar-todo/internal/logging"
	"github.com/JamesPrial/calendar-todo/internal/storage"
)

const usage = "usage: caltodo <list|add|delete|edit|summary|search|export|import|clear|exec> [flags]"

// errUsage marks errors already explained to the user by a flag set.
var errUsage = errors.New("invalid usage")

// app carries what every subcommand needs.
type app struct {
	backend storage.Backend
	logger  zerolog.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// run contains the main logic, returning an exit code.
//
// Accepts its streams as parameters so tests can drive it without touching
// the process's real stdin and stdout.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}
	logger := logging.New(stderr, cfg.LogLevel)

	backend, err := cfg.OpenBackend()
	if err != nil {
		logger.Error().Err(err).Str("backend", cfg.StorageConfig().BackendName()).Msg("failed to open storage backend")
		return 1
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close storage backend")
		}
	}()

	a := &app{backend: backend, logger: logger, stdin: stdin, stdout: stdout, stderr: stderr}

	name, rest := args[0], args[1:]
	var cmdErr error
	switch name {
	case "list":
		cmdErr = a.list(rest)
	case "add":
		cmdErr = a.add(rest)
	case "delete":
		cmdErr = a.delete(rest)
	case "edit":
		cmdErr = a.edit(rest)
	case "summary":
		cmdErr = a.summary(rest)
	case "search":
		cmdErr = a.search(rest)
	case "export":
		cmdErr = a.export(rest)
	case "import":
		cmdErr = a.importTasks(rest)
	case "clear":
		cmdErr = a.clear(rest)
	case "exec":
		cmdErr = a.exec(rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n%s\n", name, usage)
		return 1
	}

	if cmdErr != nil {
		if !errors.Is(cmdErr, errUsage) {
			logger.Error().Err(cmdErr).Str("command", name).Msg("command failed")
		}
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	return nil
}

func dateFlag(fs *flag.FlagSet) *string {
	return fs.String("date", storage.Today(), "calendar date (YYYY-MM-DD)")
}

func (a *app) printTasks(tasks []string) {
	for _, task := range tasks {
		fmt.Fprintln(a.stdout, task)
	}
}

func (a *app) list(args []string) error {
	fs := a.flags("list")
	date := dateFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	tasks, err := a.backend.ListForDate(*date)
	if err != nil {
		return err
	}
	a.printTasks(tasks)
	return nil
}

func (a *app) add(args []string) error {
	fs := a.flags("add")
	date := dateFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	text := strings.Join(fs.Args(), " ")
	if err := a.backend.AddTask(*date, text); err != nil {
		return err
	}
	a.logger.Debug().Str("op", "add").Str("date", *date).Msg("task added")

	tasks, err := a.backend.ListForDate(*date)
	if err != nil {
		return err
	}
	a.printTasks(tasks)
	return nil
}

func (a *app) delete(args []string) error {
	fs := a.flags("delete")
	date := dateFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}

	removed, err := a.backend.DeleteTask(*date, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	a.logger.Debug().Str("op", "delete").Str("date", *date).Int("removed", removed).Msg("task deleted")

	tasks, err := a.backend.ListForDate(*date)
	if err != nil {
		return err
	}
	a.printTasks(tasks)
	return nil
}

func (a *app) edit(args []string) error {
	fs := a.flags("edit")
	date := dateFlag(fs)
	old := fs.String("old", "", "current task text (exact match)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *old == "" {
		fmt.Fprintln(a.stderr, "edit requires -old")
		return errUsage
	}

	edited, err := a.backend.EditTask(*date, *old, strings.Join(fs.Args(), " "))
	if err != nil {
		return err
	}
	a.logger.Debug().Str("op", "edit").Str("date", *date).Int("edited", edited).Msg("task edited")

	tasks, err := a.backend.ListForDate(*date)
	if err != nil {
		return err
	}
	a.printTasks(tasks)
	return nil
}

func (a *app) summary(args []string) error {
	if err := parse(a.flags("summary"), args); err != nil {
		return err
	}

	tasks, err := a.backend.LoadAll()
	if err != nil {
		return err
	}

	s := agenda.Summarize(tasks)
	for _, dc := range s.Dates {
		fmt.Fprintf(a.stdout, "%s\t%d\n", dc.Date, dc.Count)
	}
	fmt.Fprintf(a.stdout, "%d tasks on %d dates\n", s.TotalTasks, s.ActiveDates)
	return nil
}

func (a *app) search(args []string) error {
	fs := a.flags("search")
	q := fs.String("q", "", "case-insensitive text to match")
	from := fs.String("from", "", "first date to include")
	to := fs.String("to", "", "last date to include")
	page := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", agenda.DefaultPageSize, "results per page")
	if err := parse(fs, args); err != nil {
		return err
	}

	tasks, err := a.backend.LoadAll()
	if err != nil {
		return err
	}

	p := agenda.Paginate(agenda.Search(tasks, agenda.Query{Text: *q, From: *from, To: *to}), *page, *pageSize)
	for _, task := range p.Items {
		fmt.Fprintf(a.stdout, "%s\t%s\n", task.Date, task.Text)
	}
	fmt.Fprintf(a.stdout, "page %d/%d (%d matches)\n", p.Page, p.TotalPages, p.Total)
	return nil
}

func (a *app) export(args []string) error {
	fs := a.flags("export")
	format := fs.String("format", agenda.FormatJSON, "json, yaml, csv or pdf")
	out := fs.String("o", "", "output file (default stdout)")
	if err := parse(fs, args); err != nil {
		return err
	}

	tasks, err := a.backend.LoadAll()
	if err != nil {
		return err
	}

	if *out == "" {
		return agenda.Export(a.stdout, tasks, *format)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", *out, err)
	}
	if err := agenda.Export(f, tasks, *format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (a *app) importTasks(args []string) error {
	fs := a.flags("import")
	format := fs.String("format", agenda.FormatJSON, "json, yaml or csv")
	if err := parse(fs, args); err != nil {
		return err
	}

	in := a.stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", fs.Arg(0), err)
		}
		defer f.Close()
		in = f
	}

	tasks, err := agenda.Import(in, *format)
	if err != nil {
		return err
	}
	n, err := agenda.ImportInto(a.backend, tasks)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Imported %d tasks\n", n)
	return nil
}

func (a *app) clear(args []string) error {
	fs := a.flags("clear")
	yes := fs.Bool("yes", false, "confirm removing every task")
	if err := parse(fs, args); err != nil {
		return err
	}
	if !*yes {
		fmt.Fprintln(a.stderr, "Refusing to clear tasks without -yes")
		return errUsage
	}

	if err := a.backend.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "All tasks cleared")
	return nil
}

func (a *app) exec(args []string) error {
	if err := parse(a.flags("exec"), args); err != nil {
		return err
	}

	failed, err := command.Run(a.backend, a.stdin, a.stdout)
	if err != nil {
		return err
	}
	if failed > 0 {
		a.logger.Warn().Int("failed", failed).Msg("some commands failed")
	}
	return nil
}
