// Package metrics derives moat-related metrics for fundamental snapshots:
// a raw pass computing margin, reinvestment, and return-trend inputs, and a
// percentile pass ranking them cross-sectionally within each fiscal period.
package metrics

import (
	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/domain"
	"github.com/mwalczak/evergreen/pkg/formulas"
)

// Raw metric keys produced by the enrichment pass.
const (
	MetricRevenue        = "revenue"
	MetricGrossProfit    = "gross_profit"
	MetricRAndDExpense   = "r_and_d_expense"
	MetricGrossMarginPct = "gross_margin_pct"
	MetricRDSalesPct     = "rd_sales_pct"
	MetricRoicTrendPct   = "roic_trend_pct"
)

// roicTrendWindow is the number of trailing ROIC points the trend line is
// fitted over.
const roicTrendWindow = 5

// RawEnricher derives raw moat inputs from base financial figures.
type RawEnricher struct {
	log zerolog.Logger
}

// NewRawEnricher creates a new raw metric enricher
func NewRawEnricher(log zerolog.Logger) *RawEnricher {
	return &RawEnricher{
		log: log.With().Str("component", "raw_enricher").Logger(),
	}
}

// Enrich computes gross margin %, R&D/Sales %, and the 5-point ROIC trend
// for every snapshot. Missing prerequisite inputs leave the derived key
// absent — absence is a distinct state from zero and propagates downstream
// to the percentile pass's median fallback.
//
// Input snapshots are never mutated; the result holds new snapshot
// instances with augmented metric maps.
func (e *RawEnricher) Enrich(
	fundamentals map[string][]domain.FundamentalSnapshot,
) map[string][]domain.FundamentalSnapshot {
	enriched := make(map[string][]domain.FundamentalSnapshot, len(fundamentals))

	for symbol, snaps := range fundamentals {
		out := make([]domain.FundamentalSnapshot, 0, len(snaps))
		for _, snap := range snaps {
			m := snap.CloneMetrics()

			revenue, hasRevenue := m[MetricRevenue]
			if hasRevenue && revenue > 0 {
				if grossProfit, ok := m[MetricGrossProfit]; ok {
					m[MetricGrossMarginPct] = grossProfit / revenue * 100.0
				}
				if rdExpense, ok := m[MetricRAndDExpense]; ok {
					m[MetricRDSalesPct] = rdExpense / revenue * 100.0
				}
			}

			if len(snap.RoicHistory) >= 2 {
				window := snap.RoicHistory
				if len(window) > roicTrendWindow {
					window = window[len(window)-roicTrendWindow:]
				}
				m[MetricRoicTrendPct] = formulas.LinearSlope(window)
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
