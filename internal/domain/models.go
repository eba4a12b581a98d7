// Package domain provides core domain models and types.
package domain

// Currency represents a currency code
type Currency string

const (
	CurrencyPLN Currency = "PLN"
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
)

// OrderAction represents the side of an order
type OrderAction string

const (
	ActionBuy  OrderAction = "BUY"
	ActionSell OrderAction = "SELL"
)

// PriceBar is a single daily closing price. Bars are ordered by date, one
// per symbol per trading day, and immutable once created.
type PriceBar struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Close float64 `json:"close"`
}

// FundamentalSnapshot holds one fiscal period of company fundamentals.
//
// Metrics is an open mapping of named metric values; a key absent from the
// map is a distinct state from a zero value, and enrichment stages branch on
// presence with the comma-ok lookup. Enrichment never mutates a snapshot in
// place; each pass returns new snapshot instances with augmented metrics.
type FundamentalSnapshot struct {
	Period      string             `json:"period"` // fiscal year, YYYY
	MarketCap   float64            `json:"market_cap"`
	Sector      string             `json:"sector"`
	Metrics     map[string]float64 `json:"metrics"`
	RoicHistory []float64          `json:"roic_history,omitempty"`
}

// Metric returns the named metric and whether it is present.
func (s FundamentalSnapshot) Metric(key string) (float64, bool) {
	v, ok := s.Metrics[key]
	return v, ok
}

// CloneMetrics returns a copy of the metrics map, never nil.
func (s FundamentalSnapshot) CloneMetrics() map[string]float64 {
	out := make(map[string]float64, len(s.Metrics))
	for k, v := range s.Metrics {
		out[k] = v
	}
	return out
}

// ScoredCompany is the immutable result of scoring one snapshot.
// Companies are ranked by Total for selection.
type ScoredCompany struct {
	Symbol    string  `json:"symbol"`
	Quality   float64 `json:"quality"`
	Value     float64 `json:"value"`
	Growth    float64 `json:"growth"`
	Moat      float64 `json:"moat"`
	Risk      float64 `json:"risk"`
	Total     float64 `json:"total"`
	Sector    string  `json:"sector"`
	MarketCap float64 `json:"market_cap"`
	Period    string  `json:"period"`
}

// Position is a holding inside the simulation's portfolio. Created on BUY
// fill, removed on SELL fill; EntryDate drives the minimum-holding-period
// guard. Quantity is always > 0 — a fully sold position is removed, not
// retained at zero.
type Position struct {
	Symbol    string   `json:"symbol"`
	Quantity  float64  `json:"quantity"`
	Currency  Currency `json:"currency"`
	Weight    float64  `json:"weight"`
	CostBasis float64  `json:"cost_basis"`
	EntryDate string   `json:"entry_date"` // YYYY-MM-DD
}

// Order is an ephemeral buy/sell instruction produced by the execution
// engine for one date and consumed immediately by the backtester's fill
// step.
type Order struct {
	Symbol   string      `json:"symbol"`
	Action   OrderAction `json:"action"`
	Quantity float64     `json:"quantity"`
	Currency Currency    `json:"currency"`
	Reason   string      `json:"reason"`
	Price    float64     `json:"price,omitempty"` // optional fill price hint; 0 = unset
}

// EquityPoint is one day of the equity curve in the base currency.
type EquityPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// BacktestReport is the read-only result of a completed run.
type BacktestReport struct {
	CAGR           float64       `json:"cagr"`
	MaxDrawdown    float64       `json:"max_drawdown"`
	Sharpe         float64       `json:"sharpe"`
	Transactions   int           `json:"transactions"`
	AvgHoldingDays float64       `json:"avg_holding_days"`
	BullExposure   float64       `json:"bull_exposure"`
	BearExposure   float64       `json:"bear_exposure"`
	EquityCurve    []EquityPoint `json:"equity_curve"`
}
