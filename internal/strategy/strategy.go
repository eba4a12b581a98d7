// Package strategy wires the full pipeline: load, enrich, score, select,
// and simulate. One facade serving both the CLI runner and the HTTP API.
package strategy

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/config"
	"github.com/mwalczak/evergreen/internal/domain"
	"github.com/mwalczak/evergreen/internal/marketdata"
	"github.com/mwalczak/evergreen/internal/modules/backtest"
	"github.com/mwalczak/evergreen/internal/modules/currency"
	"github.com/mwalczak/evergreen/internal/modules/execution"
	"github.com/mwalczak/evergreen/internal/modules/metrics"
	"github.com/mwalczak/evergreen/internal/modules/portfolio"
	"github.com/mwalczak/evergreen/internal/modules/scoring"
	"github.com/mwalczak/evergreen/internal/modules/universe"
)

// Options select the benchmark and index a Strategy runs against.
type Options struct {
	Benchmark string // benchmark symbol driving calendar and regime, e.g. SPY
	Index     string // membership index name, e.g. SP500
}

// Strategy aggregates every pipeline component behind one Run call.
type Strategy struct {
	loader      *marketdata.Loader
	raw         *metrics.RawEnricher
	percentiles *metrics.PercentileEnricher
	scorer      *scoring.Scorer
	universe    *universe.Builder
	backtester  *backtest.Backtester
	cfg         config.StrategyConfig
	opts        Options
	log         zerolog.Logger
}

// New creates a new strategy facade
func New(loader *marketdata.Loader, rules scoring.Rules, cfg config.StrategyConfig,
	opts Options, log zerolog.Logger) *Strategy {
	manager := portfolio.NewManager(cfg.Portfolio, cfg.Rebalancing, log)
	engine := execution.NewEngine(cfg.Portfolio, log)
	fx := currency.NewEngine(cfg.Backtest.BaseCurrency, log)

	return &Strategy{
		loader:      loader,
		raw:         metrics.NewRawEnricher(log),
		percentiles: metrics.NewPercentileEnricher(log),
		scorer:      scoring.NewScorer(rules, log),
		universe:    universe.NewBuilder(loader, cfg.UniverseTop, log),
		backtester:  backtest.New(manager, engine, fx, cfg, log),
		cfg:         cfg,
		opts:        opts,
		log:         log.With().Str("component", "strategy").Logger(),
	}
}

// Run loads all inputs, scores the universe, and executes the simulation.
// A symbol whose data fails to load is skipped with a warning; only missing
// benchmark or membership data fails the run.
func (s *Strategy) Run() (domain.BacktestReport, error) {
	benchmark, err := s.loader.LoadPriceHistory(s.opts.Benchmark)
	if err != nil {
		return domain.BacktestReport{}, fmt.Errorf("failed to load benchmark %s: %w", s.opts.Benchmark, err)
	}
	benchmark = filterDates(benchmark, s.cfg.Backtest.StartDate, s.cfg.Backtest.EndDate)

	members, err := s.loader.LoadMembers(s.opts.Index)
	if err != nil {
		return domain.BacktestReport{}, fmt.Errorf("failed to load %s membership: %w", s.opts.Index, err)
	}

	symbols := memberSymbols(members)
	fundamentals := make(map[string][]domain.FundamentalSnapshot, len(symbols))
	prices := make(map[string][]domain.PriceBar, len(symbols))
	for _, symbol := range symbols {
		snaps, err := s.loader.LoadFundamentals(symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Skipping symbol, fundamentals unavailable")
			continue
		}
		fundamentals[symbol] = snaps

		bars, err := s.loader.LoadPriceHistory(symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("No price history for symbol")
			continue
		}
		prices[symbol] = filterDates(bars, "", s.cfg.Backtest.EndDate)
	}

	// Defensive ETFs trade outside the index; load their prices separately.
	for _, symbol := range s.cfg.Portfolio.BearETFs {
		if _, ok := prices[symbol]; ok {
			continue
		}
		bars, err := s.loader.LoadPriceHistory(symbol)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("No price history for defensive ETF")
			continue
		}
		prices[symbol] = filterDates(bars, "", s.cfg.Backtest.EndDate)
	}

	enriched := s.percentiles.Enrich(s.raw.Enrich(fundamentals))
	scores := s.scorer.ScoreAll(enriched)

	universeByYear, err := s.universe.TopByMarketCap(s.opts.Index)
	if err != nil {
		return domain.BacktestReport{}, fmt.Errorf("failed to build universe: %w", err)
	}

	fx := s.loadFXHistory()

	return s.backtester.Run(backtest.MarketData{
		Benchmark: benchmark,
		Prices:    prices,
		Scores:    scores,
		Universe:  universeByYear,
		FX:        fx,
	})
}

// loadFXHistory pulls every currency pair against the base. Pairs with no
// history are omitted; the currency engine values them at zero rates.
func (s *Strategy) loadFXHistory() map[string][]domain.PriceBar {
	base := s.cfg.Backtest.BaseCurrency
	fx := make(map[string][]domain.PriceBar)
	for _, c := range []domain.Currency{domain.CurrencyPLN, domain.CurrencyEUR, domain.CurrencyUSD} {
		if c == base {
			continue
		}
		pair := string(c) + string(base)
		bars, err := s.loader.LoadFXHistory(pair)
		if err != nil || len(bars) == 0 {
			s.log.Warn().Str("pair", pair).Msg("No FX history for pair")
			continue
		}
		fx[pair] = bars
	}
	return fx
}

// memberSymbols flattens per-year membership into a sorted unique list.
func memberSymbols(members map[string][]string) []string {
	seen := make(map[string]struct{})
	for _, symbols := range members {
		for _, symbol := range symbols {
			seen[symbol] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for symbol := range seen {
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}

// filterDates keeps bars inside [from, to]; empty bounds are open.
func filterDates(bars []domain.PriceBar, from, to string) []domain.PriceBar {
	out := make([]domain.PriceBar, 0, len(bars))
	for _, bar := range bars {
		if from != "" && bar.Date < from {
			continue
		}
		if to != "" && bar.Date > to {
			continue
		}
		out = append(out, bar)
	}
	return out
}
