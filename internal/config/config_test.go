package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JamesPrial/calendar-todo/internal/storage"
)

// clearEnv blanks every variable Config reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvDataDir, EnvBackend, EnvFilePath, EnvSQLitePath,
		EnvPostgresURL, EnvMySQLDSN, EnvLogLevel, EnvHTTPAddr,
	} {
		t.Setenv(key, "")
	}
}

func Test_FromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	want := Config{
		DataDir:  DefaultDataDir,
		Backend:  storage.BackendText,
		LogLevel: DefaultLogLevel,
		HTTPAddr: DefaultHTTPAddr,
	}
	if cfg != want {
		t.Errorf("FromEnv() = %+v, want %+v", cfg, want)
	}
}

func Test_FromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDataDir, "/srv/caltodo")
	t.Setenv(EnvBackend, "sqlite")
	t.Setenv(EnvSQLitePath, "db/tasks.db")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvHTTPAddr, "  127.0.0.1:9000  ")

	cfg := FromEnv()
	if cfg.DataDir != "/srv/caltodo" || cfg.Backend != "sqlite" || cfg.SQLitePath != "db/tasks.db" {
		t.Errorf("FromEnv() storage fields = %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.HTTPAddr != "127.0.0.1:9000" {
		t.Errorf("HTTPAddr = %q, want trimmed value", cfg.HTTPAddr)
	}
}

func Test_Load_DotEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLogLevel, "warn")

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "TODO_STORAGE_BACKEND=sqlite\nTODO_LOG_LEVEL=debug\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// godotenv.Load does not override variables that are already set, and
	// t.Setenv("") counts as set, so unset the one we expect the file to fill.
	os.Unsetenv(EnvBackend)

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite from .env", cfg.Backend)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want environment to win over .env", cfg.LogLevel)
	}
}

func Test_Load_MissingFileIgnored(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != storage.BackendText {
		t.Errorf("Backend = %q, want default", cfg.Backend)
	}
}

func Test_Load_UnreadableFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "env"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	if _, err := Load(filepath.Join(dir, "env")); err == nil {
		t.Error("Load(directory) error = nil, want error")
	}
}

func Test_StorageConfig_OpenBackend(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvDataDir, dir)

	backend, err := FromEnv().OpenBackend()
	if err != nil {
		t.Fatalf("OpenBackend() error: %v", err)
	}
	defer backend.Close()

	text, ok := backend.(*storage.TextBackend)
	if !ok {
		t.Fatalf("OpenBackend() = %T, want *storage.TextBackend", backend)
	}
	if want := filepath.Join(dir, storage.DefaultFileName); text.FilePath != want {
		t.Errorf("FilePath = %q, want %q", text.FilePath, want)
	}
}
