package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/nuvemflow/orderdesk-backend/pkg/config"
	"github.com/nuvemflow/orderdesk-backend/pkg/db"
	"github.com/nuvemflow/orderdesk-backend/pkg/logger"
	"github.com/nuvemflow/orderdesk-backend/pkg/migrate"
)

type options struct {
	cmd      string
	dir      string
	name     string
	version  string
	embedded bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.BoolVar(&opts.embedded, "embedded", false, "use the migrations compiled into the binary (up|down|status)")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// create and validate only touch files; they must work without a configured environment
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dialect := migrate.Dialect(cfg.DB.Driver)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"cmd":      opts.cmd,
		"dir":      opts.dir,
		"embedded": opts.embedded,
		"dialect":  dialect,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()
	sqlDB, err := dbClient.SQL()
	if err != nil {
		return err
	}

	if err := apply(ctx, sqlDB, dialect, opts); err != nil {
		return err
	}
	logg.Info(ctx, "migrate.done")
	return nil
}

func apply(ctx context.Context, sqlDB *sql.DB, dialect string, opts options) error {
	switch opts.cmd {
	case "up", "down", "status":
		if opts.embedded {
			return migrate.RunEmbedded(ctx, sqlDB, dialect, opts.cmd)
		}
		return migrate.Run(ctx, sqlDB, dialect, opts.dir, opts.cmd)
	case "version":
		if opts.version == "" {
			return errors.New("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, dialect, opts.dir, opts.version)
	default:
		return fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
}
