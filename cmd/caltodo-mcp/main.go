// Package main implements the MCP server for the calendar task store.
//
// This server exposes list, add, delete, edit, summary, search and clear tools over
// stdio JSON-RPC (Model Context Protocol). Storage is selected with the same
// environment variables as the caltodo CLI.
package main

import (
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/JamesPrial/calendar-todo/internal/config"
	"github.com/JamesPrial/calendar-todo/internal/logging"
	"github.com/JamesPrial/calendar-todo/internal/mcpserver"
)

// run starts the server and returns the process exit code. Logs go to stderr.
func run(stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		l := logging.New(stderr, "")
		l.Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	// stdout carries the protocol; all logging goes to stderr
	logger := logging.New(stderr, cfg.LogLevel).With().Str("component", "caltodo-mcp").Logger()
	errLogger := logging.StdLogger(logger, "mcp-go")

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

	srv, err := mcpserver.NewServer(backend, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create MCP server")
		return 1
	}

	logger.Info().Str("backend", cfg.StorageConfig().BackendName()).Msg("serving MCP on stdio")
	if err := server.ServeStdio(srv, server.WithErrorLogger(errLogger)); err != nil {
		logger.Error().Err(err).Msg("server error")
		return 1
	}

	return 0
}

func main() {
	os.Exit(run(os.Stderr))
}
