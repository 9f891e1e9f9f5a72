// Package main implements the HTTP front-end for the calendar task store.
//
// Listens on TODO_HTTP_ADDR (default ":8080") and shuts down gracefully on
// SIGINT or SIGTERM. Storage is selected with the same environment variables
// as the caltodo CLI.
package main

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/JamesPrial/calendar-todo/internal/config"
	"github.com/JamesPrial/calendar-todo/internal/httpapi"
	"github.com/JamesPrial/calendar-todo/internal/logging"
)

// run starts the server and returns the process exit code. Logs go to stderr.
func run(stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New(stderr, "")
		l.Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	logger := logging.New(stderr, cfg.LogLevel).With().Str("component", "caltodo-http").Logger()

	backend, err := cfg.OpenBackend()
	if err != nil {
		logger.Error().Err(err).Msg("failed to open storage backend")
		return 1
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close storage backend")
		}
	}()

	srv := httpapi.New(backend, logger)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info().Msg("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Warn().Err(err).Msg("shutdown failed")
		}
	}()

	if err := srv.Listen(cfg.HTTPAddr); err != nil {
		logger.Error().Err(err).Str("addr", cfg.HTTPAddr).Msg("server error")
		return 1
	}

	return 0
}

func main() {
	os.Exit(run(os.Stderr))
}
