package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Web.Port != 3000 || cfg.SSH.Port != 2222 {
		t.Errorf("unexpected ports web=%d ssh=%d", cfg.Web.Port, cfg.SSH.Port)
	}
	if cfg.Store.Driver != DriverMemory {
		t.Errorf("expected memory store, got %q", cfg.Store.Driver)
	}
	if cfg.API.BaseURL != "http://localhost:3000" {
		t.Errorf("unexpected api base url %q", cfg.API.BaseURL)
	}
	if cfg.Log.LogLevel() != log.InfoLevel {
		t.Errorf("expected info level, got %v", cfg.Log.LogLevel())
	}
	if got := cfg.SSH.Addr(); got != "[::]:2222" {
		t.Errorf("unexpected ssh addr %q", got)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bugzapper.yaml")
	data := []byte("web:\n  port: 8081\nstore:\n  driver: sqlite\n  dsn: scores.db\nlog:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BUGZAPPER_WEB_PORT", "9090")
	t.Setenv("BUGZAPPER_API_BASE_URL", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Web.Port != 9090 {
		t.Errorf("env should override file, got port %d", cfg.Web.Port)
	}
	if cfg.Store.Driver != DriverSQLite || cfg.Store.DSN != "scores.db" {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if cfg.Log.LogLevel() != log.DebugLevel {
		t.Errorf("expected debug level, got %v", cfg.Log.LogLevel())
	}
	if cfg.API.BaseURL != "" {
		t.Errorf("empty env value should disable the api, got %q", cfg.API.BaseURL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("BUGZAPPER_STORE_DRIVER", "redis")
	if _, err := Load(""); err == nil {
		t.Error("expected unknown driver to be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestOpenLogFile(t *testing.T) {
	logger, closeFn, err := OpenLogFile(LogConfig{Level: "info"}, "game")
	if err != nil || logger == nil {
		t.Fatalf("discarding logger: %v", err)
	}
	closeFn()

	path := filepath.Join(t.TempDir(), "game.log")
	logger, closeFn, err = OpenLogFile(LogConfig{Level: "info", File: path}, "game")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hello", "score", 42)
	closeFn()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") || !strings.Contains(string(data), "score=42") {
		t.Errorf("unexpected log output %q", data)
	}
}
