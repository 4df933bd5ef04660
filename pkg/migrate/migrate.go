package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// Dialect maps the configured database driver onto a goose dialect name.
func Dialect(driver string) string {
	if driver == config.DBDriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Run executes a goose command against migrations on disk under dir.
func Run(ctx context.Context, db *sql.DB, dialect, dir string, command string, args ...string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return run(ctx, db, dialect, dir, command, args...)
}

// RunEmbedded executes a goose command against the migrations compiled into the binary.
func RunEmbedded(ctx context.Context, db *sql.DB, dialect string, command string, args ...string) error {
	goose.SetBaseFS(Embedded)
	defer goose.SetBaseFS(nil)
	return run(ctx, db, dialect, embeddedDir, command, args...)
}

func run(ctx context.Context, db *sql.DB, dialect, dir, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	// goose prints status output to stdout
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dialect, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	current, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
	case current > target:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
	}
	return nil
}
