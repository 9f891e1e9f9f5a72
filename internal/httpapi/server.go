// Package httpapi serves the task store over a small JSON HTTP API.
//
// Routes:
//
//	GET    /api/tasks?date=YYYY-MM-DD       list one date
//	POST   /api/tasks                       {"date","text"} add, returns refreshed list
//	PUT    /api/tasks                       {"date","text","new_text"} edit exact matches in place
//	DELETE /api/tasks?date=&text=           delete exact matches, returns refreshed list
//	GET    /api/summary                     per-date counts
//	GET    /api/search?q=&from=&to=&page=&page_size=
//	GET    /api/export?format=json|yaml|csv|pdf
//	POST   /api/import?format=json|yaml|csv merge tasks from the request body
package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JamesPrial/calendar-todo/internal/agenda"
	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Server wires a storage backend to a fiber app.
type Server struct {
	app     *fiber.App
	backend storage.Backend
	logger  zerolog.Logger
}

// New builds the HTTP API for backend.
func New(backend storage.Backend, logger zerolog.Logger) *Server {
	s := &Server{backend: backend, logger: logger}

	s.app = fiber.New(fiber.Config{
		AppName:               "calendar-todo",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	s.app.Use(requestID)
	s.app.Use(s.requestLogger)

	api := s.app.Group("/api")
	api.Get("/tasks", s.listTasks)
	api.Post("/tasks", s.addTask)
	api.Put("/tasks", s.editTask)
	api.Delete("/tasks", s.deleteTask)
	api.Get("/summary", s.summary)
	api.Get("/search", s.search)
	api.Get("/export", s.export)
	api.Post("/import", s.importTasks)

	return s
}

// App exposes the underlying fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("http server listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requestID assigns every request an ID, reusing a client-supplied one.
func requestID(c *fiber.Ctx) error {
	id := c.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Locals(requestIDKey, id)
	c.Set(RequestIDHeader, id)
	return c.Next()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	err := c.Next()
	if err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	event := s.logger.Info()
	if status >= fiber.StatusInternalServerError {
		event = s.logger.Warn().Err(err)
	}
	event.
		Str("request_id", requestIDFrom(c)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("latency", time.Since(start)).
		Msg("request")

	return nil
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey).(string)
	return id
}

// errorHandler renders every error as {"error": "..."} with a status that
// reflects whether the caller or the store was at fault.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	var ferr *fiber.Error
	switch {
	case errors.As(err, &ferr):
		status = ferr.Code
	case errors.Is(err, storage.ErrInvalidText), errors.Is(err, agenda.ErrUnknownFormat):
		status = fiber.StatusBadRequest
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
