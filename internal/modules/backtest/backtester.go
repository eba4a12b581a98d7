// Package backtest runs the day-by-day strategy simulation over a fixed
// benchmark calendar and produces the summary report.
package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/config"
	"github.com/mwalczak/evergreen/internal/domain"
	"github.com/mwalczak/evergreen/internal/modules/currency"
	"github.com/mwalczak/evergreen/internal/modules/execution"
	"github.com/mwalczak/evergreen/internal/modules/portfolio"
	"github.com/mwalczak/evergreen/pkg/formulas"
)

// MarketData is the pre-loaded, read-only input of one simulation run. The
// loop performs no I/O; everything it touches lives in these maps.
type MarketData struct {
	Benchmark []domain.PriceBar                 // drives the trading calendar and the regime
	Prices    map[string][]domain.PriceBar      // per-symbol daily closes, ascending
	Scores    map[string][]domain.ScoredCompany // per-symbol scored periods
	Universe  map[string][]string               // year -> eligible symbols, ranked
	FX        map[string][]domain.PriceBar      // pair (e.g. USDPLN) -> rate history
}

// Backtester owns the sequential simulation loop. Holdings and cash are
// mutated only inside Run; no other actor touches them mid-run.
type Backtester struct {
	manager  *portfolio.Manager
	engine   *execution.Engine
	fx       *currency.Engine
	strategy config.StrategyConfig
	log      zerolog.Logger
}

// New creates a new backtester
func New(manager *portfolio.Manager, engine *execution.Engine, fx *currency.Engine,
	strategy config.StrategyConfig, log zerolog.Logger) *Backtester {
	return &Backtester{
		manager:  manager,
		engine:   engine,
		fx:       fx,
		strategy: strategy,
		log:      log.With().Str("component", "backtester").Logger(),
	}
}

// priceCursor walks a sorted price history alongside the ascending
// simulation calendar and yields the latest close at or before each date.
type priceCursor struct {
	bars []domain.PriceBar
	next int
	last float64
}

func (c *priceCursor) closeAt(date string) float64 {
	for c.next < len(c.bars) && c.bars[c.next].Date <= date {
		c.last = c.bars[c.next].Close
		c.next++
	}
	return c.last
}

// Run executes the simulation over the benchmark calendar and returns the
// completed report. Missing data degrades through documented fallbacks; the
// only failure is an empty benchmark, rejected before the loop starts.
func (b *Backtester) Run(data MarketData) (domain.BacktestReport, error) {
	if len(data.Benchmark) == 0 {
		return domain.BacktestReport{}, fmt.Errorf("benchmark price history is empty")
	}

	lookback := b.strategy.Portfolio.SMALookback
	regimeMap := execution.BullBear(data.Benchmark, lookback)

	smaCache := make(map[string]execution.TrendSeries, len(data.Prices))
	cursors := make(map[string]*priceCursor, len(data.Prices))
	for symbol, bars := range data.Prices {
		smaCache[symbol] = execution.Trend(bars, lookback)
		cursors[symbol] = &priceCursor{bars: bars}
	}

	calendar := make([]string, len(data.Benchmark))
	for i, bar := range data.Benchmark {
		calendar[i] = bar.Date
	}
	rebalanceDates := RebalanceDates(calendar)
	bearSymbol, bearCurrency := b.engine.BearAsset(b.strategy.Backtest.BaseCurrency)

	holdings := make(map[string]domain.Position)
	cash := b.strategy.Backtest.InitialCapital
	prevValue := cash

	equityCurve := make([]domain.EquityPoint, 0, len(calendar))
	dailyReturns := make([]float64, 0, len(calendar))
	bullDays, bearDays := 0, 0
	transactions := 0
	holdingDaysTotal, holdingsClosed := 0, 0

	for _, date := range calendar {
		regime, hasRegime := regimeMap[date]
		if hasRegime {
			if regime == execution.RegimeBull {
				bullDays++
			} else {
				bearDays++
			}
		} else {
			// Warm-up days have no trend signal; the engine treats them
			// defensively as bear while exposure tallies skip them.
			regime = execution.RegimeBear
		}

		if contribution, ok := b.strategy.Backtest.Contributions[date]; ok {
			cash += contribution
		}

		_, rebalanceDue := rebalanceDates[date]

		year := date[:4]
		universe := data.Universe[year]
		scoredToday := scoredAsOf(data.Scores, year)
		picks := b.manager.PickTop(scoredToday)

		priceMap := b.buildPriceMap(date, cursors, universe, holdings, bearSymbol)

		orders := b.engine.GenerateOrders(date, picks, universe, regime, priceMap,
			smaCache, holdings, bearSymbol, bearCurrency, rebalanceDue)

		for _, order := range orders {
			price := order.Price
			if price == 0 {
				price = priceMap[order.Symbol]
			}
			if price == 0 {
				continue
			}

			if order.Action == domain.ActionSell {
				pos, ok := holdings[order.Symbol]
				if !ok {
					continue
				}
				held := daysBetween(pos.EntryDate, date)
				if !execution.FundamentalExit(order.Reason) && held < b.strategy.Rebalancing.MinHoldingDays {
					continue
				}
				cash += pos.Quantity * price
				delete(holdings, order.Symbol)
				holdingDaysTotal += held
				holdingsClosed++
				transactions++
				continue
			}

			quantity := cash * b.strategy.Rebalancing.MaxPosition / price
			if quantity <= 0 {
				continue
			}
			holdings[order.Symbol] = domain.Position{
				Symbol:    order.Symbol,
				Quantity:  quantity,
				Currency:  order.Currency,
				Weight:    b.strategy.Rebalancing.MaxPosition,
				CostBasis: price,
				EntryDate: date,
			}
			cash -= quantity * price
			transactions++
		}

		values := make(map[string]float64, len(holdings))
		currencies := make(map[string]domain.Currency, len(holdings))
		for symbol, pos := range holdings {
			price := 0.0
			if cursor, ok := cursors[symbol]; ok {
				price = cursor.closeAt(date)
			}
			if price == 0 {
				price = pos.CostBasis
			}
			values[symbol] = pos.Quantity * price
			currencies[symbol] = pos.Currency
		}
		value := cash + b.fx.PortfolioToBase(values, data.FX, date, currencies)

		equityCurve = append(equityCurve, domain.EquityPoint{Date: date, Value: value})
		if prevValue > 0 {
			dailyReturns = append(dailyReturns, (value-prevValue)/prevValue)
		}
		prevValue = value
	}

	finalDate := calendar[len(calendar)-1]
	for _, pos := range holdings {
		holdingDaysTotal += daysBetween(pos.EntryDate, finalDate)
		holdingsClosed++
	}
	avgHoldingDays := 0.0
	if holdingsClosed > 0 {
		avgHoldingDays = float64(holdingDaysTotal) / float64(holdingsClosed)
	}

	values := make([]float64, len(equityCurve))
	for i, point := range equityCurve {
		values[i] = point.Value
	}

	regimeDays := bullDays + bearDays
	bullExposure, bearExposure := 0.0, 0.0
	if regimeDays > 0 {
		bullExposure = float64(bullDays) / float64(regimeDays)
		bearExposure = float64(bearDays) / float64(regimeDays)
	}

	report := domain.BacktestReport{
		CAGR:           formulas.CAGR(values[0], values[len(values)-1], len(values)),
		MaxDrawdown:    formulas.MaxDrawdown(values),
		Sharpe:         formulas.Sharpe(dailyReturns, b.strategy.Backtest.RiskFreeRate),
		Transactions:   transactions,
		AvgHoldingDays: avgHoldingDays,
		BullExposure:   bullExposure,
		BearExposure:   bearExposure,
		EquityCurve:    equityCurve,
	}

	b.log.Info().
		Int("days", len(calendar)).
		Int("transactions", transactions).
		Float64("cagr", report.CAGR).
		Float64("max_drawdown", report.MaxDrawdown).
		Float64("sharpe", report.Sharpe).
		Msg("Backtest complete")

	return report, nil
}

// buildPriceMap resolves the latest known close for every symbol the engine
// may act on today: the eligible universe, current holdings, and the
// defensive asset. Symbols with no bar yet resolve to 0 and are skipped by
// the fill step.
func (b *Backtester) buildPriceMap(date string, cursors map[string]*priceCursor,
	universe []string, holdings map[string]domain.Position, bearSymbol string) map[string]float64 {
	priceMap := make(map[string]float64, len(universe)+len(holdings)+1)
	resolve := func(symbol string) {
		if _, done := priceMap[symbol]; done {
			return
		}
		if cursor, ok := cursors[symbol]; ok {
			priceMap[symbol] = cursor.closeAt(date)
		} else {
			priceMap[symbol] = 0
		}
	}
	for _, symbol := range universe {
		resolve(symbol)
	}
	for symbol := range holdings {
		resolve(symbol)
	}
	if bearSymbol != "" {
		resolve(bearSymbol)
	}
	return priceMap
}

// scoredAsOf returns each symbol's most recent score with a period at or
// before the given year. Symbols with no eligible period are skipped.
func scoredAsOf(scores map[string][]domain.ScoredCompany, year string) []domain.ScoredCompany {
	symbols := make([]string, 0, len(scores))
	for symbol := range scores {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	out := make([]domain.ScoredCompany, 0, len(symbols))
	for _, symbol := range symbols {
		var best domain.ScoredCompany
		found := false
		for _, score := range scores[symbol] {
			if score.Period > year {
				continue
			}
			if !found || score.Period > best.Period {
				best = score
				found = true
			}
		}
		if found {
			out = append(out, best)
		}
	}
	return out
}

// daysBetween returns whole calendar days from one ISO date to another,
// never negative. Unparseable dates count as zero distance.
func daysBetween(from, to string) int {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return 0
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return 0
	}
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
