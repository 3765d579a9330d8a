package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/subcommands"

	"github.com/MrJamesThe3rd/fiado/internal/config"
	"github.com/MrJamesThe3rd/fiado/internal/database"
	"github.com/MrJamesThe3rd/fiado/internal/export"
	"github.com/MrJamesThe3rd/fiado/internal/importer"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
	"github.com/MrJamesThe3rd/fiado/internal/ledger/store"
	"github.com/MrJamesThe3rd/fiado/internal/logger"
)

var commands = []subcommands.Command{
	&backupCmd{},
	&restoreCmd{},
	&importProductsCmd{},
	&statementCmd{},
	&workbookCmd{},
	&summaryCmd{},
}

// app holds the services a command works with.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	ledger   *ledger.Service
	export   *export.Service
	importer *importer.Service
}

// openApp loads the configuration and opens the database. dbPath overrides the
// configured path when set.
func openApp(dbPath string) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if dbPath != "" {
		cfg.DB.Path = dbPath
	}

	logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", cfg.DB.Path, err)
	}

	svc := ledger.NewService(store.New(db))

	return &app{
		cfg:      cfg,
		db:       db,
		ledger:   svc,
		export:   export.NewService(svc, cfg.App.Currency),
		importer: importer.NewService(svc),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

// run opens the app, hands it to fn and reports fn's error on stderr.
func run(dbPath string, fn func(a *app) error) subcommands.ExitStatus {
	a, err := openApp(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := fn(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	return subcommands.ExitSuccess
}
