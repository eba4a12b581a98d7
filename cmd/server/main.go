// Package main is the entry point for the Evergreen strategy server. It
// exposes backtest runs over HTTP, keeps the market-data store on disk, and
// emails a weekly summary of the latest completed run.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mwalczak/evergreen/internal/config"
	"github.com/mwalczak/evergreen/internal/database"
	"github.com/mwalczak/evergreen/internal/marketdata"
	"github.com/mwalczak/evergreen/internal/modules/scoring"
	"github.com/mwalczak/evergreen/internal/notify"
	"github.com/mwalczak/evergreen/internal/scheduler"
	"github.com/mwalczak/evergreen/internal/server"
	"github.com/mwalczak/evergreen/internal/strategy"
	"github.com/mwalczak/evergreen/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Evergreen server")

	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "marketdata.db"),
		Profile: database.ProfileHistory,
		Name:    "marketdata",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open market data database")
	}
	defer db.Close()

	store := marketdata.NewStore(db.Conn(), log)
	if err := store.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize market data store")
	}

	loader := &marketdata.Loader{
		Prices:       store,
		Fundamentals: store,
		Membership:   store,
		FX:           store,
	}

	runner := strategy.New(loader, scoring.DefaultRules(), cfg.Strategy, strategy.Options{
		Benchmark: "SPY",
		Index:     "SP500",
	}, log)

	registry := server.NewRunRegistry()

	srv := server.New(server.Config{
		Log:      log,
		Port:     cfg.Port,
		DevMode:  cfg.DevMode,
		Runner:   runner,
		Registry: registry,
	})

	sched := scheduler.New(log)
	if cfg.Email.Enabled() {
		notifier := notify.NewEmailNotifier(cfg.Email, log)
		job := scheduler.NewWeeklyReportJob(notifier, registry, log)
		if err := sched.AddJob(scheduler.WeeklySchedule(cfg.Email.WeeklyDay), job); err != nil {
			log.Fatal().Err(err).Msg("Failed to register weekly report job")
		}
	} else {
		log.Info().Msg("Email not configured, weekly report disabled")
	}
	sched.Start()

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
