package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"physiotrack/backend/internal/config"
	"physiotrack/backend/internal/db"
	"physiotrack/backend/internal/logging"
)

type CLI struct {
	DBPath        string `help:"SQLite database file (DB_PATH)" name:"db"`
	MigrationsDir string `help:"Directory with .sql migrations (MIGRATIONS_DIR)" name:"migrations"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("physiotrack-migrate"),
		kong.Description("Apply pending database migrations"),
		kong.UsageOnError(),
	)

	cfg := config.Load()
	if cli.DBPath != "" {
		cfg.DBPath = cli.DBPath
	}
	if cli.MigrationsDir != "" {
		cfg.MigrationsDir = cli.MigrationsDir
	}
	logging.Initialize(cfg.LogLevel)

	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	applied, err := db.RunMigrations(context.Background(), database, cfg.MigrationsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: run migrations: %v\n", err)
		os.Exit(1)
	}

	logging.Logger.Info("migrations applied", "count", len(applied), "versions", applied)
}
