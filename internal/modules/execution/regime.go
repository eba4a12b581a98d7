package execution

import (
	"math"

	"github.com/mwalczak/evergreen/internal/domain"
	"github.com/mwalczak/evergreen/pkg/formulas"
)

// Regime classifies a trading day by the benchmark trend.
type Regime string

const (
	RegimeBull Regime = "bull"
	RegimeBear Regime = "bear"
)

// TrendSeries maps date -> SMA value for one symbol. Dates inside the
// warm-up window are absent.
type TrendSeries map[string]float64

// Trend computes the date-keyed SMA series for a price history. Days before
// the window fills have no entry.
func Trend(bars []domain.PriceBar, lookback int) TrendSeries {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	sma := formulas.SMA(closes, lookback)

	series := make(TrendSeries)
	for i, bar := range bars {
		if !math.IsNaN(sma[i]) {
			series[bar.Date] = sma[i]
		}
	}
	return series
}

// BullBear classifies each benchmark trading day: bull when the close is at
// or above its own SMA, bear when below. Days inside the warm-up window are
// absent from the result.
func BullBear(benchmark []domain.PriceBar, lookback int) map[string]Regime {
	trend := Trend(benchmark, lookback)
	regime := make(map[string]Regime, len(trend))
	for _, bar := range benchmark {
		avg, ok := trend[bar.Date]
		if !ok {
			continue
		}
		if bar.Close >= avg {
			regime[bar.Date] = RegimeBull
		} else {
			regime[bar.Date] = RegimeBear
		}
	}
	return regime
}
