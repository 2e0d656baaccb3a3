package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		ProjectID: "3f1c2b9e-0000-4000-8000-000000000001",
		BaseDir:   "/home/user/.local/share/photobroom",
		Project:   ProjectConfig{Name: "holidays"},
		Database:  DatabaseConfig{Type: "postgres", DSN: "postgres://localhost/photos"},
		Executor:  ExecutorConfig{QueueSize: 64, Workers: 3},
		Import:    ImportConfig{Ignore: []string{"*.xmp", "thumbs"}},
		Log:       LogConfig{Dir: "/var/log/photobroom", Level: "debug"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if !reflect.DeepEqual(got, original) {
		t.Errorf("Read() = %+v, want %+v", got, original)
	}
}

func TestManager_Read_Sections(t *testing.T) {
	input := `
project_id = "p-1"

[project]
name = "family"

[database]
type = "sqlite"
data_dir = "/data/db"

[executor]
queue_size = 16

[log]
level = "warn"
`
	m := &Manager{}
	cfg, err := m.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if cfg.Project.Name != "family" {
		t.Errorf("Project.Name = %q, want family", cfg.Project.Name)
	}
	if cfg.Database.DataDir != "/data/db" {
		t.Errorf("Database.DataDir = %q, want /data/db", cfg.Database.DataDir)
	}
	if cfg.Executor.QueueSize != 16 || cfg.Executor.Workers != 0 {
		t.Errorf("Executor = %+v, want queue_size 16 and default workers", cfg.Executor)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want warn", cfg.Log.Level)
	}
}

func TestManager_Read_Invalid(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("[database\ntype=")); err == nil {
		t.Error("Read() expected error for malformed TOML")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("project-1", "/data/photobroom")

	if cfg.ProjectID != "project-1" {
		t.Errorf("ProjectID = %q, want %q", cfg.ProjectID, "project-1")
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
	if cfg.Database.DataDir != "/data/photobroom/db" {
		t.Errorf("Database.DataDir = %q, want %q", cfg.Database.DataDir, "/data/photobroom/db")
	}
	if cfg.Log.Dir != "/data/photobroom/log" {
		t.Errorf("Log.Dir = %q, want %q", cfg.Log.Dir, "/data/photobroom/log")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v on default config", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"memory", func(c *Config) { c.Database = DatabaseConfig{Type: "memory"} }, false},
		{"postgres with dsn", func(c *Config) { c.Database = DatabaseConfig{Type: "postgres", DSN: "postgres://x"} }, false},
		{"postgres without dsn", func(c *Config) { c.Database = DatabaseConfig{Type: "postgres"} }, true},
		{"sqlite without data_dir", func(c *Config) { c.Database.DataDir = "" }, true},
		{"unknown database", func(c *Config) { c.Database.Type = "mysql" }, true},
		{"negative queue", func(c *Config) { c.Executor.QueueSize = -1 }, true},
		{"negative workers", func(c *Config) { c.Executor.Workers = -2 }, true},
		{"unknown level", func(c *Config) { c.Log.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("p", "/base")
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "photobroom.toml")
		cfg := NewConfig("p1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "photobroom.toml")
		cfg := NewConfig("p1", dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "photobroom.toml")
		cfg := NewConfig("read-test", dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.ProjectID != "read-test" {
			t.Errorf("ProjectID = %q, want %q", got.ProjectID, "read-test")
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want memory", got.Database.Type)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/photobroom.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
