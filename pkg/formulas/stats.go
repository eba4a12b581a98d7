package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the population standard deviation of a slice of float64 values.
// Population (not sample) deviation is used so that daily-return series match
// the Sharpe convention of the backtest report.
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	mean := stat.Mean(data, nil)
	var sumSq float64
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)))
}

// Median calculates the median of a slice of float64 values.
// Returns 0 for an empty slice.
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// CalculateReturns converts prices to percentage returns
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// LinearSlope fits an ordinary least-squares line against index positions
// (0, 1, 2, ...) and returns its slope. Used for metric trend estimation.
// Returns 0 with fewer than 2 points.
func LinearSlope(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	xs := make([]float64, len(values))
	for i := range xs {
		xs[i] = float64(i)
	}

	_, slope := stat.LinearRegression(xs, values, nil, false)
	return slope
}

// PercentileRank returns the ≤-inclusive percentile rank (0-100) of value
// within peers. Returns 0 when the peer set is empty.
func PercentileRank(value float64, peers []float64) float64 {
	if len(peers) == 0 {
		return 0
	}

	count := 0
	for _, p := range peers {
		if p <= value {
			count++
		}
	}
	return float64(count) / float64(len(peers)) * 100.0
}
