package universe

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalczak/evergreen/internal/domain"
	"github.com/mwalczak/evergreen/internal/marketdata"
)

func newLoader(fundamentals map[string][]domain.FundamentalSnapshot, membership map[string][]string) *marketdata.Loader {
	source := marketdata.NewInMemorySource(
		nil,
		fundamentals,
		map[string]map[string][]string{"SP500": membership},
		nil,
	)
	return &marketdata.Loader{Prices: source, Fundamentals: source, Membership: source, FX: source}
}

func fund(period string, marketCap float64) domain.FundamentalSnapshot {
	return domain.FundamentalSnapshot{Period: period, MarketCap: marketCap, Metrics: map[string]float64{}}
}

func TestTopByMarketCapRanksDescending(t *testing.T) {
	loader := newLoader(
		map[string][]domain.FundamentalSnapshot{
			"SMALL": {fund("2020", 1e9)},
			"BIG":   {fund("2020", 5e9)},
			"MID":   {fund("2020", 3e9)},
		},
		map[string][]string{"2020": {"SMALL", "BIG", "MID"}},
	)
	b := NewBuilder(loader, 100, zerolog.Nop())

	top, err := b.TopByMarketCap("SP500")
	require.NoError(t, err)
	assert.Equal(t, []string{"BIG", "MID", "SMALL"}, top["2020"])
}

func TestTopByMarketCapLimitsToTopN(t *testing.T) {
	loader := newLoader(
		map[string][]domain.FundamentalSnapshot{
			"A": {fund("2020", 4e9)},
			"B": {fund("2020", 3e9)},
			"C": {fund("2020", 2e9)},
			"D": {fund("2020", 1e9)},
		},
		map[string][]string{"2020": {"A", "B", "C", "D"}},
	)
	b := NewBuilder(loader, 2, zerolog.Nop())

	top, err := b.TopByMarketCap("SP500")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, top["2020"])
}

func TestTopByMarketCapExcludesMissingPeriod(t *testing.T) {
	loader := newLoader(
		map[string][]domain.FundamentalSnapshot{
			"HAS":     {fund("2020", 1e9)},
			"HASNT":   {fund("2019", 9e9)},
			"NOTHING": {},
		},
		map[string][]string{"2020": {"HAS", "HASNT", "NOTHING"}},
	)
	b := NewBuilder(loader, 100, zerolog.Nop())

	top, err := b.TopByMarketCap("SP500")
	require.NoError(t, err)
	assert.Equal(t, []string{"HAS"}, top["2020"])
}

func TestTopByMarketCapStableTieBreak(t *testing.T) {
	loader := newLoader(
		map[string][]domain.FundamentalSnapshot{
			"X": {fund("2020", 2e9)},
			"Y": {fund("2020", 2e9)},
			"Z": {fund("2020", 2e9)},
		},
		map[string][]string{"2020": {"X", "Y", "Z"}},
	)
	b := NewBuilder(loader, 100, zerolog.Nop())

	top, err := b.TopByMarketCap("SP500")
	require.NoError(t, err)
	// Equal market caps keep membership order
	assert.Equal(t, []string{"X", "Y", "Z"}, top["2020"])
}
