// Package marketdata provides the read-only data-provider capabilities the
// simulator consumes: price history, fundamental snapshots, index membership,
// and FX rate history. Providers resolve everything into in-memory structures
// before a run starts; the simulation loop itself performs no I/O.
package marketdata

import (
	"sort"

	"github.com/mwalczak/evergreen/internal/domain"
)

// PriceSource returns chronologically sortable price bars per symbol.
type PriceSource interface {
	PriceHistory(symbol string) ([]domain.PriceBar, error)
}

// FundamentalsSource returns fundamental snapshots per symbol.
type FundamentalsSource interface {
	Fundamentals(symbol string) ([]domain.FundamentalSnapshot, error)
}

// MembershipSource returns index membership as year -> member symbols.
type MembershipSource interface {
	Members(index string) (map[string][]string, error)
}

// FXSource returns rate history for a currency pair such as "USDPLN".
type FXSource interface {
	FXHistory(pair string) ([]domain.PriceBar, error)
}

// Loader wraps the four source capabilities and guarantees the ordering
// invariants the simulator relies on: price and FX bars sorted by date
// ascending, snapshots sorted by period ascending.
type Loader struct {
	Prices       PriceSource
	Fundamentals FundamentalsSource
	Membership   MembershipSource
	FX           FXSource
}

// LoadPriceHistory returns the symbol's bars sorted by date ascending.
func (l *Loader) LoadPriceHistory(symbol string) ([]domain.PriceBar, error) {
	bars, err := l.Prices.PriceHistory(symbol)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars, nil
}

// LoadFundamentals returns the symbol's snapshots sorted by period ascending.
func (l *Loader) LoadFundamentals(symbol string) ([]domain.FundamentalSnapshot, error) {
	snaps, err := l.Fundamentals.Fundamentals(symbol)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(snaps, func(i, j int) bool { return snaps[i].Period < snaps[j].Period })
	return snaps, nil
}

// LoadMembers returns index membership by year.
func (l *Loader) LoadMembers(index string) (map[string][]string, error) {
	return l.Membership.Members(index)
}

// LoadFXHistory returns the pair's bars sorted by date ascending.
func (l *Loader) LoadFXHistory(pair string) ([]domain.PriceBar, error) {
	bars, err := l.FX.FXHistory(pair)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })
	return bars, nil
}
