package database

import (
	"os"
	"path/filepath"
	"testing"

	"photobroom/internal/config"
)

func TestNewBackendFromConfig(t *testing.T) {
	t.Run("memory database", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "memory"}
		got, info, err := NewBackendFromConfig(cfg, "test-project")
		if err != nil {
			t.Fatalf("NewBackendFromConfig() unexpected error: %v", err)
		}
		if info.Path != ":memory:" {
			t.Errorf("Path = %q, want :memory:", info.Path)
		}
		if err := got.Init(info); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		got.Close()
	})

	t.Run("sqlite database", func(t *testing.T) {
		dir := t.TempDir()
		cfg := config.DatabaseConfig{Type: "sqlite", DataDir: dir}
		got, info, err := NewBackendFromConfig(cfg, "test-project")
		if err != nil {
			t.Fatalf("NewBackendFromConfig() unexpected error: %v", err)
		}

		want := filepath.Join(dir, "test-project.db")
		if info.Path != want {
			t.Errorf("Path = %q, want %q", info.Path, want)
		}
		if err := got.Init(info); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		got.Close()

		if _, err := os.Stat(want); err != nil {
			t.Errorf("database file not created: %v", err)
		}
	})

	t.Run("postgres dialect", func(t *testing.T) {
		cfg := config.DatabaseConfig{Type: "postgres", DSN: "postgres://localhost/photos"}
		got, info, err := NewBackendFromConfig(cfg, "p")
		if err != nil {
			t.Fatalf("NewBackendFromConfig() unexpected error: %v", err)
		}
		if got.dialect.Name() != "postgres" || info.Path != cfg.DSN {
			t.Errorf("got dialect %s path %q, want postgres with the DSN", got.dialect.Name(), info.Path)
		}
	})

	for _, cfg := range []config.DatabaseConfig{
		{Type: "sqlite"},
		{Type: "postgres"},
		{Type: "unknown"},
	} {
		t.Run("invalid "+cfg.Type, func(t *testing.T) {
			got, _, err := NewBackendFromConfig(cfg, "p")
			if err == nil {
				t.Error("NewBackendFromConfig() expected error, got nil")
			}
			if got != nil {
				t.Error("NewBackendFromConfig() should return nil on error")
			}
		})
	}
}
