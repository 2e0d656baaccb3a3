package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for photobroom.
type Config struct {
	ProjectID string         `toml:"project_id"`
	BaseDir   string         `toml:"base_dir"`
	Project   ProjectConfig  `toml:"project"`
	Database  DatabaseConfig `toml:"database"`
	Executor  ExecutorConfig `toml:"executor"`
	Import    ImportConfig   `toml:"import"`
	Log       LogConfig      `toml:"log"`
}

// ProjectConfig names the photo collection.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// DatabaseConfig represents configuration for the catalog database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory" or "postgres"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
	DSN     string `toml:"dsn,omitempty"`      // only used for type=postgres
}

// ExecutorConfig sizes the parallel task pool: how many tasks may wait and
// how many run at once. Zero values select the defaults. The database
// worker queue is not bounded.
type ExecutorConfig struct {
	QueueSize int `toml:"queue_size"`
	Workers   int `toml:"workers"`
}

// ImportConfig controls how photos are discovered on disk.
type ImportConfig struct {
	Ignore []string `toml:"ignore"`
}

// LogConfig controls where and how verbosely photobroom logs.
type LogConfig struct {
	Dir   string `toml:"dir"`
	Level string `toml:"level"` // "debug", "info", "warn" or "error"
}

// NewConfig creates a new Config for a SQLite catalog under baseDir.
func NewConfig(projectID, baseDir string) *Config {
	return &Config{
		ProjectID: projectID,
		BaseDir:   baseDir,
		Project:   ProjectConfig{Name: "photos"},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Log: LogConfig{
			Dir:   filepath.Join(baseDir, "log"),
			Level: "info",
		},
	}
}

// Validate reports configuration errors that would only surface later.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
		if c.Database.DataDir == "" {
			return fmt.Errorf("database: data_dir required for sqlite database")
		}
	case "memory":
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database: dsn required for postgres database")
		}
	default:
		return fmt.Errorf("database: unknown type %q", c.Database.Type)
	}

	if c.Executor.QueueSize < 0 {
		return fmt.Errorf("executor: queue_size must not be negative")
	}
	if c.Executor.Workers < 0 {
		return fmt.Errorf("executor: workers must not be negative")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: unknown level %q", c.Log.Level)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path, creating its
// directory.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
