package httpapi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/JamesPrial/calendar-todo/internal/agenda"
	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// DateTasks is the body returned by the /api/tasks routes.
type DateTasks struct {
	Date    string   `json:"date"`
	Tasks   []string `json:"tasks"`
	Removed *int     `json:"removed,omitempty"`
	Edited  *int     `json:"edited,omitempty"`
}

// TaskRequest is the body accepted by POST /api/tasks.
type TaskRequest struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// EditRequest is the body accepted by PUT /api/tasks.
type EditRequest struct {
	Date    string `json:"date"`
	Text    string `json:"text"`
	NewText string `json:"new_text"`
}

// ImportResult is the body returned by POST /api/import.
type ImportResult struct {
	Imported int `json:"imported"`
}

func dateOrToday(date string) string {
	if d := strings.TrimSpace(date); d != "" {
		return d
	}
	return storage.Today()
}

// relist reads date back after a mutation. A failed read is logged and
// degrades to an empty list since the mutation already happened.
func (s *Server) relist(c *fiber.Ctx, date string) []string {
	tasks, err := s.backend.ListForDate(date)
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestIDFrom(c)).Str("date", date).Msg("failed to refresh task list")
		return []string{}
	}
	return tasks
}

func (s *Server) listTasks(c *fiber.Ctx) error {
	date := dateOrToday(c.Query("date"))

	tasks, err := s.backend.ListForDate(date)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	return c.JSON(DateTasks{Date: date, Tasks: tasks})
}

func (s *Server) addTask(c *fiber.Ctx) error {
	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	date := dateOrToday(req.Date)

	if err := s.backend.AddTask(date, req.Text); err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	s.logger.Info().Str("request_id", requestIDFrom(c)).Str("op", "add").Str("date", date).Msg("task added")

	return c.Status(fiber.StatusCreated).JSON(DateTasks{Date: date, Tasks: s.relist(c, date)})
}

func (s *Server) deleteTask(c *fiber.Ctx) error {
	date := dateOrToday(c.Query("date"))
	text := c.Query("text")
	if strings.TrimSpace(text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing query parameter: text")
	}

	removed, err := s.backend.DeleteTask(date, text)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Info().Str("request_id", requestIDFrom(c)).Str("op", "delete").Str("date", date).Int("removed", removed).Msg("task deleted")

	return c.JSON(DateTasks{Date: date, Tasks: s.relist(c, date), Removed: &removed})
}

func (s *Server) editTask(c *fiber.Ctx) error {
	var req EditRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing field: text")
	}
	date := dateOrToday(req.Date)

	edited, err := s.backend.EditTask(date, req.Text, req.NewText)
	if err != nil {
		return fmt.Errorf("failed to edit task: %w", err)
	}
	s.logger.Info().Str("request_id", requestIDFrom(c)).Str("op", "edit").Str("date", date).Int("edited", edited).Msg("task edited")

	return c.JSON(DateTasks{Date: date, Tasks: s.relist(c, date), Edited: &edited})
}

func (s *Server) summary(c *fiber.Ctx) error {
	tasks, err := s.backend.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	return c.JSON(agenda.Summarize(tasks))
}

func (s *Server) search(c *fiber.Ctx) error {
	tasks, err := s.backend.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	matches := agenda.Search(tasks, agenda.Query{
		Text: c.Query("q"),
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	return c.JSON(agenda.Paginate(matches, c.QueryInt("page", 1), c.QueryInt("page_size", agenda.DefaultPageSize)))
}

func (s *Server) export(c *fiber.Ctx) error {
	format := strings.ToLower(c.Query("format", agenda.FormatJSON))
	if format == "yml" {
		format = agenda.FormatYAML
	}

	tasks, err := s.backend.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}

	var buf bytes.Buffer
	if err := agenda.Export(&buf, tasks, format); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, agenda.ContentType(format))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "tasks."+format))
	return c.Send(buf.Bytes())
}

func (s *Server) importTasks(c *fiber.Ctx) error {
	tasks, err := agenda.Import(bytes.NewReader(c.Body()), c.Query("format", agenda.FormatJSON))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	n, err := agenda.ImportInto(s.backend, tasks)
	if err != nil {
		return err
	}
	s.logger.Info().Str("request_id", requestIDFrom(c)).Str("op", "import").Int("count", n).Msg("tasks imported")

	return c.JSON(ImportResult{Imported: n})
}
