// Package main runs one full backtest from the on-disk market data store
// and writes the report artifacts.
package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/mwalczak/evergreen/internal/config"
	"github.com/mwalczak/evergreen/internal/database"
	"github.com/mwalczak/evergreen/internal/marketdata"
	"github.com/mwalczak/evergreen/internal/modules/report"
	"github.com/mwalczak/evergreen/internal/modules/scoring"
	"github.com/mwalczak/evergreen/internal/strategy"
	"github.com/mwalczak/evergreen/pkg/logger"
)

func main() {
	benchmark := flag.String("benchmark", "SPY", "benchmark symbol for the trading calendar and regime")
	index := flag.String("index", "SP500", "membership index to build the universe from")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

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
		Benchmark: *benchmark,
		Index:     *index,
	}, log)

	result, err := runner.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Backtest failed")
	}

	exporter := report.NewExporter(cfg.ReportsDir, log)
	if _, err := exporter.ExportEquityCurve(result); err != nil {
		log.Error().Err(err).Msg("Failed to export equity curve")
	}
	if _, err := exporter.ExportSummary(result); err != nil {
		log.Error().Err(err).Msg("Failed to export summary")
	}

	fmt.Print(report.Summary(result))
}
