package metrics

import (
	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/domain"
	"github.com/mwalczak/evergreen/pkg/formulas"
)

// Percentile metric keys produced by the cross-sectional pass.
const (
	MetricGrossMarginPercentile = "gross_margin_percentile"
	MetricRDToSalesPercentile   = "r_and_d_to_sales_percentile"
	MetricRoicTrendPercentile   = "roic_trend_percentile"
)

// percentileSources maps each percentile output to the raw-pass metric it
// is computed from.
var percentileSources = map[string]string{
	MetricGrossMarginPercentile: MetricGrossMarginPct,
	MetricRDToSalesPercentile:   MetricRDSalesPct,
	MetricRoicTrendPercentile:   MetricRoicTrendPct,
}

// PercentileEnricher ranks raw moat metrics cross-sectionally per period.
type PercentileEnricher struct {
	log zerolog.Logger
}

// NewPercentileEnricher creates a new percentile enricher
func NewPercentileEnricher(log zerolog.Logger) *PercentileEnricher {
	return &PercentileEnricher{
		log: log.With().Str("component", "percentile_enricher").Logger(),
	}
}

// Enrich computes the three moat percentiles for every snapshot.
//
// For each period and metric: the cross-sectional median of present values
// substitutes for absent ones, then every symbol's (possibly substituted)
// value is ranked against the full post-substitution peer set with a
// ≤-inclusive percentile over 0-100. The peer set therefore always has one
// entry per snapshot in the period, and median-substituted values count as
// peers. A period with zero peers yields percentile 0.
func (e *PercentileEnricher) Enrich(
	fundamentals map[string][]domain.FundamentalSnapshot,
) map[string][]domain.FundamentalSnapshot {
	// Median of present values per period per metric.
	present := make(map[string]map[string][]float64) // period -> output key -> values
	for _, snaps := range fundamentals {
		for _, snap := range snaps {
			perMetric, ok := present[snap.Period]
			if !ok {
				perMetric = make(map[string][]float64, len(percentileSources))
				present[snap.Period] = perMetric
			}
			for outputKey, sourceKey := range percentileSources {
				if v, ok := snap.Metric(sourceKey); ok {
					perMetric[outputKey] = append(perMetric[outputKey], v)
				}
			}
		}
	}

	medians := make(map[string]map[string]float64, len(present))
	for period, perMetric := range present {
		medians[period] = make(map[string]float64, len(percentileSources))
		for outputKey := range percentileSources {
			medians[period][outputKey] = formulas.Median(perMetric[outputKey])
		}
	}

	// Peer sets after median substitution: one entry per snapshot.
	peers := make(map[string]map[string][]float64)
	for _, snaps := range fundamentals {
		for _, snap := range snaps {
			perMetric, ok := peers[snap.Period]
			if !ok {
				perMetric = make(map[string][]float64, len(percentileSources))
				peers[snap.Period] = perMetric
			}
			for outputKey, sourceKey := range percentileSources {
				v, ok := snap.Metric(sourceKey)
				if !ok {
					v = medians[snap.Period][outputKey]
				}
				perMetric[outputKey] = append(perMetric[outputKey], v)
			}
		}
	}

	enriched := make(map[string][]domain.FundamentalSnapshot, len(fundamentals))
	for symbol, snaps := range fundamentals {
		out := make([]domain.FundamentalSnapshot, 0, len(snaps))
		for _, snap := range snaps {
			m := snap.CloneMetrics()
			for outputKey, sourceKey := range percentileSources {
				v, ok := snap.Metric(sourceKey)
				if !ok {
					v = medians[snap.Period][outputKey]
				}
				m[outputKey] = formulas.PercentileRank(v, peers[snap.Period][outputKey])
			}
			out = append(out, domain.FundamentalSnapshot{
				Period:      snap.Period,
				MarketCap:   snap.MarketCap,
				Sector:      snap.Sector,
				Metrics:     m,
				RoicHistory: snap.RoicHistory,
			})
		}
		enriched[symbol] = out
	}

	return enriched
}
