// Package execution turns daily market state into buy/sell orders under the
// bull/bear regime rules.
package execution

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/config"
	"github.com/mwalczak/evergreen/internal/domain"
)

// Order reasons, carried on every emitted order and used downstream to
// decide whether the minimum-holding-period guard applies.
const (
	ReasonBearRegime     = "Bear regime"
	ReasonBearTBill      = "Bear regime T-Bill"
	ReasonLostUniverse   = "Lost TOP100"
	ReasonValueGuardrail = "ValueScore guardrail"
	ReasonBelowBuffer    = "Below TOP3N buffer"
	ReasonBelowTrend     = "Price below SMA200"
	ReasonEnterTop       = "Enter TOP15"
)

// FundamentalExit reports whether a sell reason bypasses the minimum
// holding period. Regime rotations and score-driven exits always fire;
// only trend exits wait out the guard.
func FundamentalExit(reason string) bool {
	switch reason {
	case ReasonBearRegime, ReasonLostUniverse, ReasonValueGuardrail, ReasonBelowBuffer:
		return true
	}
	return false
}

// Engine generates orders for one date at a time. It holds no state between
// calls; the caller owns holdings and cash.
type Engine struct {
	cfg config.PortfolioConfig
	log zerolog.Logger
}

// NewEngine creates a new execution engine
func NewEngine(cfg config.PortfolioConfig, log zerolog.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		log: log.With().Str("component", "execution_engine").Logger(),
	}
}

// BearAsset resolves the defensive T-Bill ETF, preferring the base
// currency's entry, then USD, then the first configured entry (lowest
// currency code for determinism). Returns empty values when none are
// configured.
func (e *Engine) BearAsset(base domain.Currency) (string, domain.Currency) {
	if symbol, ok := e.cfg.BearETFs[base]; ok && base != "" {
		return symbol, base
	}
	if symbol, ok := e.cfg.BearETFs[domain.CurrencyUSD]; ok {
		return symbol, domain.CurrencyUSD
	}
	currencies := make([]string, 0, len(e.cfg.BearETFs))
	for c := range e.cfg.BearETFs {
		currencies = append(currencies, string(c))
	}
	if len(currencies) == 0 {
		return "", ""
	}
	sort.Strings(currencies)
	first := domain.Currency(currencies[0])
	return e.cfg.BearETFs[first], first
}

// GenerateOrders produces the orders for one trading day.
//
// Nothing is emitted outside scheduled rebalance dates. In a bear regime
// every non-defensive position is sold and the T-Bill ETF is entered if it
// has a price. In a bull regime each held position is checked against the
// sell rules in fixed priority order, first match wins, then unheld top-N
// candidates with a confirmed uptrend and an acceptable value score are
// bought.
func (e *Engine) GenerateOrders(
	date string,
	picks []domain.ScoredCompany,
	universe []string,
	regime Regime,
	priceMap map[string]float64,
	smaCache map[string]TrendSeries,
	holdings map[string]domain.Position,
	bearAsset string,
	bearCurrency domain.Currency,
	rebalanceDue bool,
) []domain.Order {
	if !rebalanceDue {
		return nil
	}

	held := make([]string, 0, len(holdings))
	for symbol := range holdings {
		held = append(held, symbol)
	}
	sort.Strings(held)

	var orders []domain.Order

	if regime == RegimeBear {
		for _, symbol := range held {
			if symbol == bearAsset {
				continue
			}
			pos := holdings[symbol]
			orders = append(orders, domain.Order{
				Symbol:   symbol,
				Action:   domain.ActionSell,
				Quantity: pos.Quantity,
				Currency: pos.Currency,
				Reason:   ReasonBearRegime,
			})
		}
		if price := priceMap[bearAsset]; price > 0 {
			if _, ok := holdings[bearAsset]; !ok {
				orders = append(orders, domain.Order{
					Symbol:   bearAsset,
					Action:   domain.ActionBuy,
					Currency: bearCurrency,
					Reason:   ReasonBearTBill,
					Price:    price,
				})
			}
		}
		return orders
	}

	inUniverse := make(map[string]struct{}, len(universe))
	for _, symbol := range universe {
		inUniverse[symbol] = struct{}{}
	}

	ranked := make([]domain.ScoredCompany, 0, len(picks))
	for _, p := range picks {
		if _, ok := inUniverse[p.Symbol]; ok {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})

	topBuy := ranked
	if len(topBuy) > e.cfg.TopN {
		topBuy = topBuy[:e.cfg.TopN]
	}
	holdLimit := e.cfg.HoldMultiplier * e.cfg.TopN
	topHold := make(map[string]struct{}, holdLimit)
	for i, p := range ranked {
		if i >= holdLimit {
			break
		}
		topHold[p.Symbol] = struct{}{}
	}
	pickMap := make(map[string]domain.ScoredCompany, len(ranked))
	for _, p := range ranked {
		pickMap[p.Symbol] = p
	}

	for _, symbol := range held {
		pos := holdings[symbol]
		if reason, ok := e.sellReason(date, symbol, pickMap, inUniverse, topHold, priceMap, smaCache); ok {
			orders = append(orders, domain.Order{
				Symbol:   symbol,
				Action:   domain.ActionSell,
				Quantity: pos.Quantity,
				Currency: pos.Currency,
				Reason:   reason,
			})
		}
	}

	for _, pick := range topBuy {
		price, hasPrice := priceMap[pick.Symbol]
		smaValue, hasSMA := smaCache[pick.Symbol][date]
		if !hasPrice || !hasSMA {
			continue
		}
		if price <= smaValue {
			continue
		}
		if pick.Value < e.cfg.MinValueScore {
			continue
		}
		if _, ok := holdings[pick.Symbol]; ok {
			continue
		}
		orders = append(orders, domain.Order{
			Symbol:   pick.Symbol,
			Action:   domain.ActionBuy,
			Currency: domain.CurrencyUSD,
			Reason:   ReasonEnterTop,
			Price:    price,
		})
	}

	return orders
}

// sellReason evaluates the bull-regime sell rules for one held symbol in
// priority order. First match wins; at most one sell per position per date.
func (e *Engine) sellReason(
	date, symbol string,
	pickMap map[string]domain.ScoredCompany,
	inUniverse map[string]struct{},
	topHold map[string]struct{},
	priceMap map[string]float64,
	smaCache map[string]TrendSeries,
) (string, bool) {
	if _, ok := inUniverse[symbol]; !ok {
		return ReasonLostUniverse, true
	}
	if pick, ok := pickMap[symbol]; ok && pick.Value < e.cfg.MinValueScore {
		return ReasonValueGuardrail, true
	}
	if _, ok := topHold[symbol]; !ok {
		return ReasonBelowBuffer, true
	}
	if smaValue, ok := smaCache[symbol][date]; ok && priceMap[symbol] < smaValue {
		return ReasonBelowTrend, true
	}
	return "", false
}
