package db

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrateSQLite_CreatesSchemaIdempotently(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	handle, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "nested", "coursehub.db"))
	require.NoError(t, err)
	defer handle.Close()

	require.NoError(t, MigrateSQLite(ctx, log, handle))
	// second run is a no-op
	require.NoError(t, MigrateSQLite(ctx, log, handle))

	var tables int
	err = handle.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'courses')`,
	).Scan(&tables)
	require.NoError(t, err)
	require.Equal(t, 2, tables)
}

func TestOpenSQLite_EnforcesForeignKeys(t *testing.T) {
	ctx := context.Background()

	handle, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	defer handle.Close()

	var enabled int
	require.NoError(t, handle.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled))
	require.Equal(t, 1, enabled)
}
