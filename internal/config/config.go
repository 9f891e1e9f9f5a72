// Package config reads front-end settings from the environment.
//
// A .env file in the working directory, when present, seeds variables that
// are not already set. Real environment variables always win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// Environment variable names.
const (
	EnvDataDir     = "CALTODO_DATA_DIR"
	EnvBackend     = "TODO_STORAGE_BACKEND"
	EnvFilePath    = "TODO_FILE_PATH"
	EnvSQLitePath  = "TODO_SQLITE_PATH"
	EnvPostgresURL = "TODO_POSTGRES_URL"
	EnvMySQLDSN    = "TODO_MYSQL_DSN"
	EnvLogLevel    = "TODO_LOG_LEVEL"
	EnvHTTPAddr    = "TODO_HTTP_ADDR"
)

// Defaults applied when a variable is unset or blank.
const (
	DefaultDataDir  = "."
	DefaultLogLevel = "info"
	DefaultHTTPAddr = ":8080"
)

// Config holds every setting the binaries need.
type Config struct {
	DataDir     string
	Backend     string
	FilePath    string
	SQLitePath  string
	PostgresURL string
	MySQLDSN    string
	LogLevel    string
	HTTPAddr    string
}

// Load seeds the environment from envFiles (".env" when none are given),
// then reads the configuration. Missing env files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	return FromEnv(), nil
}

// FromEnv reads the configuration from the current environment only.
func FromEnv() Config {
	return Config{
		DataDir:     getenv(EnvDataDir, DefaultDataDir),
		Backend:     getenv(EnvBackend, storage.BackendText),
		FilePath:    getenv(EnvFilePath, ""),
		SQLitePath:  getenv(EnvSQLitePath, ""),
		PostgresURL: getenv(EnvPostgresURL, ""),
		MySQLDSN:    getenv(EnvMySQLDSN, ""),
		LogLevel:    getenv(EnvLogLevel, DefaultLogLevel),
		HTTPAddr:    getenv(EnvHTTPAddr, DefaultHTTPAddr),
	}
}

// StorageConfig returns the subset NewBackend consumes.
func (c Config) StorageConfig() storage.Config {
	return storage.Config{
		Backend:     c.Backend,
		DataDir:     c.DataDir,
		FilePath:    c.FilePath,
		SQLitePath:  c.SQLitePath,
		PostgresURL: c.PostgresURL,
		MySQLDSN:    c.MySQLDSN,
	}
}

// OpenBackend builds the configured storage backend.
func (c Config) OpenBackend() (storage.Backend, error) {
	return storage.NewBackend(c.StorageConfig())
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
