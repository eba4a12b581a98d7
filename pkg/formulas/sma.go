package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// SMA calculates the simple moving average over a trailing window.
//
// Returns a slice aligned with closes: positions before the window has
// filled carry NaN so callers can distinguish "no value yet" from a real
// average.
//
// Args:
//
//	closes: Array of closing prices
//	window: Lookback window in trading days (e.g. 200)
//
// Returns:
//
//	Slice of SMA values aligned with closes; NaN before the window fills.
func SMA(closes []float64, window int) []float64 {
	result := make([]float64, len(closes))
	for i := range result {
		result[i] = math.NaN()
	}
	if window <= 0 || len(closes) < window {
		return result
	}

	sma := talib.Sma(closes, window)
	// talib zero-fills the warm-up region; only positions >= window-1 carry
	// a full-window average.
	for i := window - 1; i < len(sma); i++ {
		result[i] = sma[i]
	}
	return result
}
