package config

import "github.com/mwalczak/evergreen/internal/domain"

// PortfolioConfig holds selection and trend-filter parameters.
type PortfolioConfig struct {
	TopN           int     // Number of companies bought at each rebalance
	HoldMultiplier int     // Hold buffer = HoldMultiplier × TopN ranked picks
	MinValueScore  float64 // Value sub-score guardrail for holding/entering
	SMALookback    int     // Trading-day window for the trend filter
	// BearETFs maps currency -> defensive short-term treasury ETF symbol.
	// The engine prefers the base currency's entry, then USD, then the
	// first configured entry.
	BearETFs map[domain.Currency]string
}

// RebalancingConfig holds weighting constraints and the rebalance cadence.
type RebalancingConfig struct {
	MinPosition     float64 // Lower clamp for a single position weight
	MaxPosition     float64 // Upper clamp, also the BUY fill cash fraction
	MaxSectorWeight float64 // Cap on a sector's summed weight
	MinHoldingDays  int     // Minimum holding period for trend-based exits
}

// BacktestConfig holds the simulated period and capital parameters.
type BacktestConfig struct {
	StartDate      string // YYYY-MM-DD
	EndDate        string // YYYY-MM-DD
	BaseCurrency   domain.Currency
	InitialCapital float64
	RiskFreeRate   float64            // Annual, as decimal
	Contributions  map[string]float64 // date -> cash added that day
}

// StrategyConfig aggregates all strategy parameters. Instances are treated
// as immutable; components receive them at construction and never share
// mutable defaults.
type StrategyConfig struct {
	Portfolio   PortfolioConfig
	Rebalancing RebalancingConfig
	Backtest    BacktestConfig
	UniverseTop int // Eligible universe size per year (top by market cap)
}

// DefaultStrategyConfig returns the stock strategy parameters.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		Portfolio: PortfolioConfig{
			TopN:           15,
			HoldMultiplier: 3,
			MinValueScore:  40.0,
			SMALookback:    200,
			BearETFs: map[domain.Currency]string{
				domain.CurrencyEUR: "ZPR1.DE",
				domain.CurrencyUSD: "SHV",
			},
		},
		Rebalancing: RebalancingConfig{
			MinPosition:     0.02,
			MaxPosition:     0.25,
			MaxSectorWeight: 0.30,
			MinHoldingDays:  90,
		},
		Backtest: BacktestConfig{
			StartDate:      "2000-01-01",
			EndDate:        "2025-12-31",
			BaseCurrency:   domain.CurrencyPLN,
			InitialCapital: 100000.0,
			RiskFreeRate:   0.0,
			Contributions:  map[string]float64{},
		},
		UniverseTop: 100,
	}
}
