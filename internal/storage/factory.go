package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JamesPrial/calendar-todo/internal/pathutil"
)

// Backend names accepted by NewBackend.
const (
	BackendText     = "text"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

// Config selects and locates a storage backend.
type Config struct {
	// Backend is one of the Backend* names; empty means BackendText.
	Backend string

	// DataDir is the base directory. Custom file paths must stay inside it.
	DataDir string

	// FilePath is an optional custom path for the text file.
	FilePath string

	// SQLitePath is an optional custom path for the SQLite database.
	SQLitePath string

	// PostgresURL is the pgx connection string, required for BackendPostgres.
	PostgresURL string

	// MySQLDSN is the go-sql-driver DSN, required for BackendMySQL.
	MySQLDSN string
}

// BackendName returns the normalized backend name, defaulting to text.
func (c Config) BackendName() string {
	name := strings.ToLower(strings.TrimSpace(c.Backend))
	if name == "" {
		return BackendText
	}
	return name
}

// NewBackend returns the backend described by cfg.
//
// Returns ErrUnknownBackend (wrapped) for unrecognized names, and an error if a
// custom path escapes DataDir or a required connection string is missing.
func NewBackend(cfg Config) (Backend, error) {
	switch cfg.BackendName() {
	case BackendText:
		path, err := resolveDataPath(cfg.DataDir, cfg.FilePath, DefaultFileName)
		if err != nil {
			return nil, fmt.Errorf("invalid TODO_FILE_PATH: %w", err)
		}
		return NewTextBackend(path), nil

	case BackendSQLite:
		path, err := resolveDataPath(cfg.DataDir, cfg.SQLitePath, DefaultSQLiteFileName)
		if err != nil {
			return nil, fmt.Errorf("invalid TODO_SQLITE_PATH: %w", err)
		}
		return NewSQLiteBackend(path)

	case BackendPostgres:
		if strings.TrimSpace(cfg.PostgresURL) == "" {
			return nil, fmt.Errorf("TODO_POSTGRES_URL is required for the postgres backend")
		}
		return NewPostgresBackend(cfg.PostgresURL)

	case BackendMySQL:
		if strings.TrimSpace(cfg.MySQLDSN) == "" {
			return nil, fmt.Errorf("TODO_MYSQL_DSN is required for the mysql backend")
		}
		return NewMySQLBackend(cfg.MySQLDSN)

	default:
		return nil, fmt.Errorf("%w: %q. Expected 'text', 'sqlite', 'postgres' or 'mysql'", ErrUnknownBackend, cfg.Backend)
	}
}

// resolveDataPath returns customPath validated against dataDir, or
// dataDir/defaultName when customPath is blank.
func resolveDataPath(dataDir, customPath, defaultName string) (string, error) {
	if dataDir == "" {
		dataDir = "."
	}

	if strings.TrimSpace(customPath) != "" {
		return pathutil.ResolveSafePath(dataDir, customPath)
	}

	return filepath.Join(dataDir, defaultName), nil
}
