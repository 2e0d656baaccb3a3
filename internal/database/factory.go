package database

import (
	"fmt"
	"path/filepath"

	"photobroom/internal/catalog"
	"photobroom/internal/config"
)

// NewBackendFromConfig creates a Backend for the configured database type
// together with the ProjectInfo its Init expects.
func NewBackendFromConfig(cfg config.DatabaseConfig, project string, opts ...Option) (*Backend, catalog.ProjectInfo, error) {
	info := catalog.ProjectInfo{Name: project, Backend: cfg.Type}

	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, catalog.ProjectInfo{}, fmt.Errorf("data_dir required for sqlite database")
		}
		info.Path = filepath.Join(cfg.DataDir, project+".db")
		return NewBackend(SQLiteDialect{}, opts...), info, nil
	case "memory":
		info.Path = ":memory:"
		return NewBackend(SQLiteDialect{}, opts...), info, nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, catalog.ProjectInfo{}, fmt.Errorf("dsn required for postgres database")
		}
		info.Path = cfg.DSN
		return NewBackend(PostgresDialect{}, opts...), info, nil
	default:
		return nil, catalog.ProjectInfo{}, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
