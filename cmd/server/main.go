package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mholloway/tally/internal/automatch"
	"github.com/mholloway/tally/internal/config"
	"github.com/mholloway/tally/internal/database"
	"github.com/mholloway/tally/internal/events"
	"github.com/mholloway/tally/internal/ingest"
	"github.com/mholloway/tally/internal/money"
	"github.com/mholloway/tally/internal/notify"
	"github.com/mholloway/tally/internal/repository"
	"github.com/mholloway/tally/internal/server"
	"github.com/mholloway/tally/internal/sheets"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}
	if cfg.DatabaseURI == "" {
		logger.Fatal("DATABASE_URI is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		logger.Fatal("failed to connect to database", "err", err)
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := db.Migrate(ctx, logger); err != nil {
		logger.Fatal("failed to run migrations", "err", err)
	}
	logger.Info("database migrations completed")

	store := repository.NewStore(db)
	notifier := notify.New(cfg.TelegramToken, cfg.TelegramChatID, logger)
	if notifier.Enabled() {
		logger.Info("telegram notifications enabled")
	}

	srv := server.New(cfg, logger, store,
		ingest.New(store, logger),
		automatch.New(store, logger),
		money.New(store),
		events.NewService(store),
		sheets.NewClient(),
		notifier,
	)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}

	go func() {
		logger.Info("listening", "addr", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", "err", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
