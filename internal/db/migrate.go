package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// MigratePostgres applies the embedded postgres migrations through a
// database/sql view of the pool.
func MigratePostgres(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	return migrate(ctx, log, goose.DialectPostgres, sqlDB, "migrations/postgres")
}

func MigrateSQLite(ctx context.Context, log *slog.Logger, handle *sql.DB) error {
	return migrate(ctx, log, goose.DialectSQLite3, handle, "migrations/sqlite")
}

func migrate(ctx context.Context, log *slog.Logger, dialect goose.Dialect, handle *sql.DB, dir string) error {
	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("migration fs: %w", err)
	}

	provider, err := goose.NewProvider(dialect, handle, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	for _, r := range results {
		log.Info("migration applied", "dialect", string(dialect), "version", r.Source.Version, "duration_ms", r.Duration.Milliseconds())
	}

	return nil
}
