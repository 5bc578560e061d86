package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/ledgerbook/internal/account"
	accountStore "github.com/MrJamesThe3rd/ledgerbook/internal/account/store"
	"github.com/MrJamesThe3rd/ledgerbook/internal/config"
	"github.com/MrJamesThe3rd/ledgerbook/internal/database"
	ledgerHttp "github.com/MrJamesThe3rd/ledgerbook/internal/http"
	accountHandler "github.com/MrJamesThe3rd/ledgerbook/internal/http/account"
	importHandler "github.com/MrJamesThe3rd/ledgerbook/internal/http/importcsv"
	payeeHandler "github.com/MrJamesThe3rd/ledgerbook/internal/http/payee"
	txHandler "github.com/MrJamesThe3rd/ledgerbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/ledgerbook/internal/importer"
	"github.com/MrJamesThe3rd/ledgerbook/internal/payee"
	payeeStore "github.com/MrJamesThe3rd/ledgerbook/internal/payee/store"
	"github.com/MrJamesThe3rd/ledgerbook/internal/transaction"
	txStore "github.com/MrJamesThe3rd/ledgerbook/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	var (
		accountService     = account.NewService(accountStore.New(db))
		transactionService = transaction.NewService(txStore.New(db))
		payeeService       = payee.NewService(payeeStore.New(db))
		importService      = importer.NewService(accountService, transactionService, payeeService, importer.Options{
			PreviewRows:     cfg.Import.PreviewRows,
			KeepZeroAmounts: cfg.Import.KeepZeroAmounts,
		})
	)

	var (
		accountH     = accountHandler.NewHandler(accountService)
		importH      = importHandler.NewHandler(importService, cfg.Import.MaxUploadBytes)
		transactionH = txHandler.NewHandler(transactionService)
		payeeH       = payeeHandler.NewHandler(payeeService)
	)

	router := ledgerHttp.New(cfg.Server.AllowedOrigins, accountH, importH, transactionH, payeeH)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
