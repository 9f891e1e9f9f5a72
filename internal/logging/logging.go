// Package logging builds the zerolog loggers shared by the front-ends.
package logging

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON lines to w at the named level.
//
// Unknown or empty levels fall back to info. A non-empty DEBUG environment
// variable forces debug level regardless of level.
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	if os.Getenv("DEBUG") != "" {
		return zerolog.DebugLevel
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// StdLogger adapts logger to the *log.Logger that mcp-go and other
// stdlib-minded APIs accept. Every line is logged at error level.
func StdLogger(logger zerolog.Logger, component string) *log.Logger {
	return log.New(errorWriter{logger.With().Str("component", component).Logger()}, "", 0)
}

type errorWriter struct {
	logger zerolog.Logger
}

func (w errorWriter) Write(p []byte) (int, error) {
	w.logger.Error().Msg(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
