package scoring

import (
	"math"

	"github.com/mwalczak/evergreen/internal/domain"
	"github.com/mwalczak/evergreen/internal/modules/metrics"
)

// Metric keys consumed by the default scoring rules.
const (
	MetricROE                      = "roe"
	MetricPE                       = "pe"
	MetricGrowth                   = "growth"
	MetricVolatility               = "volatility"
	MetricRevenueVolatilityPenalty = "revenue_volatility_penalty"
)

// Sub-weights within the default quality and moat scores.
const (
	qualityWeightROE       = 0.9
	qualityWeightRoicTrend = 0.1

	moatWeightGrossMargin = 0.4
	moatWeightRDToSales   = 0.3
	moatWeightRoicTrend   = 0.3

	// medianPercentile substitutes for a wholly absent moat component;
	// all-absent metrics therefore score exactly 50.
	medianPercentile = 50.0
)

// DefaultRules returns the stock factor scoring functions.
func DefaultRules() Rules {
	return Rules{
		Quality: QualityScore,
		Value:   ValueScore,
		Growth:  GrowthScore,
		Moat:    MoatScore,
		Risk:    RiskScore,
	}
}

// QualityScore rewards return on equity with a small tilt toward an
// improving ROIC trend. ROE is in percent units.
func QualityScore(snap domain.FundamentalSnapshot) float64 {
	roe := snap.Metrics[MetricROE]
	roicTrend := snap.Metrics[metrics.MetricRoicTrendPct]
	return qualityWeightROE*roe + qualityWeightRoicTrend*roicTrend
}

// ValueScore is an inverse-scaled P/E score: cheap is high.
func ValueScore(snap domain.FundamentalSnapshot) float64 {
	return math.Max(0, 100.0-snap.Metrics[MetricPE])
}

// GrowthScore rewards revenue growth after deducting a volatility penalty,
// capping the reward for erratic revenue. Never negative.
func GrowthScore(snap domain.FundamentalSnapshot) float64 {
	return math.Max(0, snap.Metrics[MetricGrowth]-snap.Metrics[MetricRevenueVolatilityPenalty])
}

// MoatScore combines the margin, reinvestment, and return-trend percentiles.
// A component wholly absent from the metrics mapping falls back to the
// domain median percentile (50.0); a legitimate 0 stays 0.
func MoatScore(snap domain.FundamentalSnapshot) float64 {
	return moatWeightGrossMargin*metricOrMedian(snap, metrics.MetricGrossMarginPercentile) +
		moatWeightRDToSales*metricOrMedian(snap, metrics.MetricRDToSalesPercentile) +
		moatWeightRoicTrend*metricOrMedian(snap, metrics.MetricRoicTrendPercentile)
}

// RiskScore is an inverse-scaled volatility score: calm is high.
func RiskScore(snap domain.FundamentalSnapshot) float64 {
	return math.Max(0, 100.0-snap.Metrics[MetricVolatility])
}

func metricOrMedian(snap domain.FundamentalSnapshot, key string) float64 {
	if v, ok := snap.Metric(key); ok {
		return v
	}
	return medianPercentile
}
