package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/go-sql-driver/mysql" // register mysql driver
	_ "modernc.org/sqlite"             // register sqlite driver
)

// DefaultSQLiteFileName is the name of the SQLite database inside the data directory.
const DefaultSQLiteFileName = "todo.db"

// sqlDialect captures the per-driver differences of SQLBackend.
//
// Schema statements are executed one at a time because the MySQL driver
// rejects multi-statement Exec calls by default.
type sqlDialect struct {
	name   string
	driver string
	setup  []string
	schema []string
}

// sqliteDialect stores tasks in a single table with an id column that
// preserves insertion order. WAL mode improves concurrent readers.
var sqliteDialect = sqlDialect{
	name:   "sqlite",
	driver: "sqlite",
	setup:  []string{"PRAGMA journal_mode=WAL"},
	schema: []string{
		`CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    task_date TEXT NOT NULL,
    task_text TEXT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(task_date)`,
	},
}

// mysqlDialect uses binary collation so text matching is exact and
// case-sensitive, like the text backend.
var mysqlDialect = sqlDialect{
	name:   "mysql",
	driver: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS tasks (
    id BIGINT PRIMARY KEY AUTO_INCREMENT,
    task_date VARCHAR(64) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
    task_text TEXT CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
    INDEX idx_tasks_date (task_date)
)`,
	},
}

// SQLBackend implements Backend on database/sql.
//
// Each task is a row (id, task_date, task_text); ordering by id reproduces
// the append order of the text file. Both supported drivers use "?"
// placeholders so the queries are shared.
type SQLBackend struct {
	dialect sqlDialect
	db      *sql.DB
}

// NewSQLiteBackend opens (or creates) a SQLite database at dbPath and
// initializes the schema.
//
// Parent directories are created automatically.
func NewSQLiteBackend(dbPath string) (*SQLBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open(sqliteDialect.driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	return newSQLBackend(sqliteDialect, db)
}

// NewMySQLBackend connects to MySQL using a go-sql-driver DSN
// (e.g. "user:pass@tcp(127.0.0.1:3306)/todo") and initializes the schema.
func NewMySQLBackend(dsn string) (*SQLBackend, error) {
	db, err := sql.Open(mysqlDialect.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newSQLBackend(mysqlDialect, db)
}

func newSQLBackend(dialect sqlDialect, db *sql.DB) (*SQLBackend, error) {
	backend := &SQLBackend{
		dialect: dialect,
		db:      db,
	}

	if err := backend.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return backend, nil
}

// ensureSchema runs the dialect's setup and CREATE ... IF NOT EXISTS statements.
func (b *SQLBackend) ensureSchema() error {
	for _, stmt := range b.dialect.setup {
		if _, err := b.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to configure %s: %w", b.dialect.name, err)
		}
	}

	for _, stmt := range b.dialect.schema {
		if _, err := b.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema DDL: %w", err)
		}
	}

	return nil
}

// Dialect returns the backend's SQL flavor ("sqlite" or "mysql").
func (b *SQLBackend) Dialect() string {
	return b.dialect.name
}

// ListForDate returns task texts for date in insertion order.
func (b *SQLBackend) ListForDate(date string) ([]string, error) {
	rows, err := b.db.Query(
		`SELECT task_text FROM tasks WHERE task_date = ? ORDER BY id`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks by date: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]string, 0)
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result = append(result, text)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// AddTask inserts a row for (date, text). Blank text is ignored.
func (b *SQLBackend) AddTask(date, text string) error {
	text, err := normalizeText(text)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}

	if _, err := b.db.Exec(
		`INSERT INTO tasks (task_date, task_text) VALUES (?, ?)`,
		date, text,
	); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// DeleteTask deletes every row matching (date, text) exactly.
func (b *SQLBackend) DeleteTask(date, text string) (int, error) {
	if err := checkSingleLine(text); err != nil {
		return 0, err
	}

	res, err := b.db.Exec(
		`DELETE FROM tasks WHERE task_date = ? AND task_text = ?`,
		date, text,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted tasks: %w", err)
	}

	return int(n), nil
}

// EditTask updates the text of every row matching (date, oldText).
//
// Rows are counted before the update because MySQL reports only rows whose
// value actually changed.
func (b *SQLBackend) EditTask(date, oldText, newText string) (int, error) {
	if err := checkSingleLine(oldText); err != nil {
		return 0, err
	}
	newText, err := normalizeText(newText)
	if err != nil {
		return 0, err
	}
	if newText == "" {
		return 0, nil
	}

	tx, err := b.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE task_date = ? AND task_text = ?`,
		date, oldText,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	if n == 0 {
		return 0, nil
	}

	if _, err := tx.Exec(
		`UPDATE tasks SET task_text = ? WHERE task_date = ? AND task_text = ?`,
		newText, date, oldText,
	); err != nil {
		return 0, fmt.Errorf("failed to edit task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit edit: %w", err)
	}

	return n, nil
}

// LoadAll returns every task ordered by insertion.
func (b *SQLBackend) LoadAll() ([]Task, error) {
	rows, err := b.db.Query(`SELECT task_date, task_text FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]Task, 0)
	for rows.Next() {
		var task Task
		if err := rows.Scan(&task.Date, &task.Text); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result = append(result, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return result, nil
}

// Clear deletes all rows.
func (b *SQLBackend) Clear() error {
	if _, err := b.db.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("failed to clear tasks: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (b *SQLBackend) Close() error {
	return b.db.Close()
}
