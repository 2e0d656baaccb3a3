package testutil

import (
	"testing"

	"photobroom/internal/catalog"
	"photobroom/internal/database"
)

// NewTestBackend creates an initialized in-memory SQLite backend with the
// schema migrated. The backend is closed when the test completes.
func NewTestBackend(t *testing.T, opts ...database.Option) *database.Backend {
	t.Helper()

	opts = append([]database.Option{database.WithClock(FixedClock())}, opts...)
	b := database.NewBackend(database.SQLiteDialect{}, opts...)
	info := catalog.ProjectInfo{Name: "test", Path: ":memory:", Backend: "sqlite"}
	if err := b.Init(info); err != nil {
		t.Fatalf("failed to init backend: %v", err)
	}

	t.Cleanup(func() {
		b.Close()
	})

	return b
}
