package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/fiado/internal/categorize"
	categorizeStore "github.com/MrJamesThe3rd/fiado/internal/categorize/store"
	"github.com/MrJamesThe3rd/fiado/internal/config"
	"github.com/MrJamesThe3rd/fiado/internal/database"
	"github.com/MrJamesThe3rd/fiado/internal/export"
	fiadoHttp "github.com/MrJamesThe3rd/fiado/internal/http"
	"github.com/MrJamesThe3rd/fiado/internal/http/collection"
	"github.com/MrJamesThe3rd/fiado/internal/http/expense"
	"github.com/MrJamesThe3rd/fiado/internal/http/party"
	"github.com/MrJamesThe3rd/fiado/internal/http/product"
	"github.com/MrJamesThe3rd/fiado/internal/http/report"
	"github.com/MrJamesThe3rd/fiado/internal/http/sale"
	"github.com/MrJamesThe3rd/fiado/internal/importer"
	"github.com/MrJamesThe3rd/fiado/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/fiado/internal/ledger/store"
	"github.com/MrJamesThe3rd/fiado/internal/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DB.Path, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		ledgerService   = ledger.NewService(ledgerStore.New(db))
		categoryService = categorize.NewService(categorizeStore.New(db))
		importService   = importer.NewService(ledgerService)
		exportService   = export.NewService(ledgerService, cfg.App.Currency)
	)

	router := fiadoHttp.New(fiadoHttp.Handlers{
		Clients:     party.NewClientHandler(ledgerService, exportService),
		Creditors:   party.NewCreditorHandler(ledgerService, exportService),
		Sales:       sale.NewHandler(ledgerService),
		Expenses:    expense.NewHandler(ledgerService, categoryService),
		Products:    product.NewHandler(ledgerService, importService),
		Purchases:   product.NewPurchaseHandler(ledgerService),
		Reports:     report.NewHandler(ledgerService, exportService),
		Collections: collection.NewHandler(ledgerService),
	}, fiadoHttp.Options{
		Timeout:     cfg.Server.Timeout,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "db", cfg.DB.Path, "currency", cfg.App.Currency)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
