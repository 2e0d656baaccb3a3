package app

import (
	"fmt"
	"os"
	"path/filepath"

	"photobroom/internal/config"
)

// Paths locates the config file and the catalog data on this machine.
type Paths struct {
	ConfigPath string
	BaseDir    string
	// DataDir holds the SQLite catalog file.
	DataDir string
	LogDir  string

	logOverride bool
}

// DefaultPaths resolves Paths from the environment:
//   - PHOTOBROOM_CONFIG_PATH, else $XDG_CONFIG_HOME/photobroom.toml, else ~/.config/photobroom.toml
//   - PHOTOBROOM_HOME, else $XDG_DATA_HOME/photobroom, else ~/.local/share/photobroom
//   - PHOTOBROOM_LOG_DIR, else <base>/log. When set it also wins over the config file.
//
// The catalog lives in <base>/db.
func DefaultPaths() (Paths, error) {
	configPath, err := configPath()
	if err != nil {
		return Paths{}, err
	}
	baseDir, err := baseDir()
	if err != nil {
		return Paths{}, err
	}

	p := Paths{
		ConfigPath: configPath,
		BaseDir:    baseDir,
		DataDir:    filepath.Join(baseDir, "db"),
		LogDir:     filepath.Join(baseDir, "log"),
	}
	if dir := os.Getenv("PHOTOBROOM_LOG_DIR"); dir != "" {
		p.LogDir = dir
		p.logOverride = true
	}
	return p, nil
}

// NewConfig returns a SQLite configuration laid out under p.
func (p Paths) NewConfig(projectID string) *config.Config {
	cfg := config.NewConfig(projectID, p.BaseDir)
	cfg.Database.DataDir = p.DataDir
	cfg.Log.Dir = p.LogDir
	return cfg
}

// Apply overrides the parts of cfg the environment pins.
func (p Paths) Apply(cfg *config.Config) {
	if p.logOverride {
		cfg.Log.Dir = p.LogDir
	}
}

func configPath() (string, error) {
	if path := os.Getenv("PHOTOBROOM_CONFIG_PATH"); path != "" {
		return path, nil
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "photobroom.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "photobroom.toml"), nil
}

func baseDir() (string, error) {
	if path := os.Getenv("PHOTOBROOM_HOME"); path != "" {
		return path, nil
	}
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "photobroom"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "photobroom"), nil
}
