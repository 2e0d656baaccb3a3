package app

import (
	"os"
	"path/filepath"
	"testing"

	"photobroom/internal/config"
)

func clearPathEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PHOTOBROOM_CONFIG_PATH", "PHOTOBROOM_HOME", "PHOTOBROOM_LOG_DIR",
		"XDG_CONFIG_HOME", "XDG_DATA_HOME",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaultPaths(t *testing.T) {
	t.Run("explicit env vars", func(t *testing.T) {
		clearPathEnv(t)
		t.Setenv("PHOTOBROOM_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("PHOTOBROOM_HOME", "/custom/photobroom")
		t.Setenv("XDG_DATA_HOME", "/ignored")

		p, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		want := Paths{
			ConfigPath: "/custom/config.toml",
			BaseDir:    "/custom/photobroom",
			DataDir:    "/custom/photobroom/db",
			LogDir:     "/custom/photobroom/log",
		}
		if p != want {
			t.Errorf("DefaultPaths() = %+v, want %+v", p, want)
		}
	})

	t.Run("xdg dirs", func(t *testing.T) {
		clearPathEnv(t)
		t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
		t.Setenv("XDG_DATA_HOME", "/xdg/data")

		p, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		if p.ConfigPath != "/xdg/config/photobroom.toml" {
			t.Errorf("ConfigPath = %q", p.ConfigPath)
		}
		if p.DataDir != "/xdg/data/photobroom/db" {
			t.Errorf("DataDir = %q", p.DataDir)
		}
	})

	t.Run("home dir fallback", func(t *testing.T) {
		clearPathEnv(t)

		p, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths() error = %v", err)
		}
		home, _ := os.UserHomeDir()
		if want := filepath.Join(home, ".config", "photobroom.toml"); p.ConfigPath != want {
			t.Errorf("ConfigPath = %q, want %q", p.ConfigPath, want)
		}
		if want := filepath.Join(home, ".local", "share", "photobroom", "log"); p.LogDir != want {
			t.Errorf("LogDir = %q, want %q", p.LogDir, want)
		}
	})
}

func TestPaths_Config(t *testing.T) {
	clearPathEnv(t)
	t.Setenv("PHOTOBROOM_HOME", "/photos")

	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	cfg := p.NewConfig("pid")
	if cfg.Database.DataDir != "/photos/db" || cfg.Log.Dir != "/photos/log" {
		t.Errorf("NewConfig() dirs = %q, %q", cfg.Database.DataDir, cfg.Log.Dir)
	}

	// Without an override the config file decides.
	read := &config.Config{Log: config.LogConfig{Dir: "/from/file"}}
	p.Apply(read)
	if read.Log.Dir != "/from/file" {
		t.Errorf("Apply() changed log dir to %q", read.Log.Dir)
	}

	t.Setenv("PHOTOBROOM_LOG_DIR", "/tmp/photobroom-logs")
	p, err = DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	p.Apply(read)
	if read.Log.Dir != "/tmp/photobroom-logs" {
		t.Errorf("Apply() log dir = %q, want env override", read.Log.Dir)
	}
}
