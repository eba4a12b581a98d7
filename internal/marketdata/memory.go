package marketdata

import (
	"github.com/mwalczak/evergreen/internal/domain"
)

// InMemorySource implements all four source capabilities over maps.
// Used by tests and by backtests that already hold resolved data.
type InMemorySource struct {
	prices       map[string][]domain.PriceBar
	fundamentals map[string][]domain.FundamentalSnapshot
	membership   map[string]map[string][]string // index -> year -> symbols
	fx           map[string][]domain.PriceBar   // pair -> bars
}

// NewInMemorySource creates an in-memory provider. Nil maps are allowed.
func NewInMemorySource(
	prices map[string][]domain.PriceBar,
	fundamentals map[string][]domain.FundamentalSnapshot,
	membership map[string]map[string][]string,
	fx map[string][]domain.PriceBar,
) *InMemorySource {
	return &InMemorySource{
		prices:       prices,
		fundamentals: fundamentals,
		membership:   membership,
		fx:           fx,
	}
}

// PriceHistory returns the stored bars for a symbol.
func (s *InMemorySource) PriceHistory(symbol string) ([]domain.PriceBar, error) {
	return s.prices[symbol], nil
}

// Fundamentals returns the stored snapshots for a symbol.
func (s *InMemorySource) Fundamentals(symbol string) ([]domain.FundamentalSnapshot, error) {
	return s.fundamentals[symbol], nil
}

// Members returns year -> member symbols for an index.
func (s *InMemorySource) Members(index string) (map[string][]string, error) {
	return s.membership[index], nil
}

// FXHistory returns the stored bars for a currency pair.
func (s *InMemorySource) FXHistory(pair string) ([]domain.PriceBar, error) {
	return s.fx[pair], nil
}
