package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// OpenSQLite opens (or creates) the sqlite database at path. ":memory:" is
// accepted for throwaway databases.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := path
	if strings.ContainsRune(dsn, '?') {
		dsn += "&"
	} else {
		dsn += "?"
	}
	// pragmas are applied per connection by the driver
	dsn += "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"

	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// single writer; also keeps a ":memory:" database alive on one connection
	handle.SetMaxOpenConns(1)
	handle.SetMaxIdleConns(1)

	if err := handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return handle, nil
}
