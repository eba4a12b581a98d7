// Package currency converts holding values into the simulation's base
// currency via exact-date FX lookups.
package currency

import (
	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/domain"
)

// Engine resolves FX rates against a fixed base currency. Missing pairs or
// dates resolve to a zero rate, a null conversion rather than an error, so
// a gap in FX data never halts a simulation.
type Engine struct {
	base domain.Currency
	log  zerolog.Logger
}

// NewEngine creates a new currency engine
func NewEngine(base domain.Currency, log zerolog.Logger) *Engine {
	return &Engine{
		base: base,
		log:  log.With().Str("component", "currency_engine").Logger(),
	}
}

// Base returns the engine's base currency.
func (e *Engine) Base() domain.Currency {
	return e.base
}

// RateToBase returns the exact-date conversion rate from currency to the
// base. Same-currency conversion is 1.0; an unavailable pair or date is
// 0.0, valuing affected holdings at zero for that day.
func (e *Engine) RateToBase(fxHistory map[string][]domain.PriceBar, date string, currency domain.Currency) float64 {
	pair := string(currency) + string(e.base)
	for _, bar := range fxHistory[pair] {
		if bar.Date == date {
			return bar.Close
		}
	}
	if currency == e.base {
		return 1.0
	}
	return 0.0
}

// PortfolioToBase sums per-symbol values converted at each symbol's
// currency rate for the date. Symbols absent from the currency map are
// assumed to already be in the base currency.
func (e *Engine) PortfolioToBase(values map[string]float64, fxHistory map[string][]domain.PriceBar,
	date string, currencies map[string]domain.Currency) float64 {
	total := 0.0
	for symbol, value := range values {
		currency, ok := currencies[symbol]
		if !ok {
			currency = e.base
		}
		total += value * e.RateToBase(fxHistory, date, currency)
	}
	return total
}
