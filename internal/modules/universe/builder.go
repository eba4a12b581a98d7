// Package universe builds the yearly eligible investment universe from
// index membership and market capitalization.
package universe

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/marketdata"
)

// Builder ranks index members by market cap per calendar year.
type Builder struct {
	loader *marketdata.Loader
	topN   int
	log    zerolog.Logger
}

// NewBuilder creates a new universe builder. topN is the eligible universe
// size per year (typically 100).
func NewBuilder(loader *marketdata.Loader, topN int, log zerolog.Logger) *Builder {
	return &Builder{
		loader: loader,
		topN:   topN,
		log:    log.With().Str("component", "universe_builder").Logger(),
	}
}

type rankedSymbol struct {
	symbol    string
	marketCap float64
}

// TopByMarketCap returns year -> the top-N index members ranked by market
// cap descending. A symbol with no snapshot for a year is excluded that
// year. Ties keep membership order: the sort is stable and keyed on market
// cap only, so equal-cap symbols stay in their incoming order for
// reproducibility.
func (b *Builder) TopByMarketCap(index string) (map[string][]string, error) {
	membership, err := b.loader.LoadMembers(index)
	if err != nil {
		return nil, fmt.Errorf("failed to load index membership for %s: %w", index, err)
	}

	yearlyTop := make(map[string][]string, len(membership))
	for year, symbols := range membership {
		ranked := make([]rankedSymbol, 0, len(symbols))
		for _, symbol := range symbols {
			snaps, err := b.loader.LoadFundamentals(symbol)
			if err != nil {
				return nil, fmt.Errorf("failed to load fundamentals for %s: %w", symbol, err)
			}
			// Latest snapshot whose period equals the membership year
			found := false
			marketCap := 0.0
			for _, snap := range snaps {
				if snap.Period == year {
					marketCap = snap.MarketCap
					found = true
				}
			}
			if !found {
				continue
			}
			ranked = append(ranked, rankedSymbol{symbol: symbol, marketCap: marketCap})
		}

		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].marketCap > ranked[j].marketCap
		})
		if len(ranked) > b.topN {
			ranked = ranked[:b.topN]
		}

		top := make([]string, len(ranked))
		for i, r := range ranked {
			top[i] = r.symbol
		}
		yearlyTop[year] = top

		b.log.Debug().
			Str("year", year).
			Int("members", len(symbols)).
			Int("eligible", len(top)).
			Msg("Built yearly universe")
	}

	return yearlyTop, nil
}
