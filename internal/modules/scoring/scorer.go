// Package scoring converts enriched fundamental snapshots into ranked
// composite scores.
package scoring

import (
	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/domain"
)

// =============================================================================
// COMPOSITE SCORE WEIGHTS
// =============================================================================
// Fixed weights combining the five factor sub-scores into one composite.
// Quality leads because durable profitability is what compounds over a
// multi-decade horizon; growth and moat share second place; value and risk
// act as guardrails rather than drivers.

const (
	// Composite weights (must sum to 1.0)
	WeightQuality = 0.35
	WeightGrowth  = 0.20
	WeightMoat    = 0.20
	WeightValue   = 0.15
	WeightRisk    = 0.10
)

// ScoreFunc evaluates one factor sub-score for a snapshot. Implementations
// never fail: absent metrics resolve through documented fallbacks.
type ScoreFunc func(domain.FundamentalSnapshot) float64

// Rules is the set of factor scoring functions. The five sub-scores are
// independently swappable; the composite weighting is fixed.
type Rules struct {
	Quality ScoreFunc
	Value   ScoreFunc
	Growth  ScoreFunc
	Moat    ScoreFunc
	Risk    ScoreFunc
}

// Scorer applies scoring rules to fundamental snapshots.
type Scorer struct {
	rules Rules
	log   zerolog.Logger
}

// NewScorer creates a new fundamental scorer
func NewScorer(rules Rules, log zerolog.Logger) *Scorer {
	return &Scorer{
		rules: rules,
		log:   log.With().Str("component", "scorer").Logger(),
	}
}

// Score evaluates every snapshot of a symbol and returns one ScoredCompany
// per period, composite-weighted as
//
//	total = 0.35·quality + 0.20·growth + 0.20·moat + 0.15·value + 0.10·risk
func (s *Scorer) Score(symbol string, snaps []domain.FundamentalSnapshot) []domain.ScoredCompany {
	scored := make([]domain.ScoredCompany, 0, len(snaps))
	for _, snap := range snaps {
		quality := s.rules.Quality(snap)
		value := s.rules.Value(snap)
		growth := s.rules.Growth(snap)
		moat := s.rules.Moat(snap)
		risk := s.rules.Risk(snap)

		total := WeightQuality*quality +
			WeightGrowth*growth +
			WeightMoat*moat +
			WeightValue*value +
			WeightRisk*risk

		scored = append(scored, domain.ScoredCompany{
			Symbol:    symbol,
			Quality:   quality,
			Value:     value,
			Growth:    growth,
			Moat:      moat,
			Risk:      risk,
			Total:     total,
			Sector:    snap.Sector,
			MarketCap: snap.MarketCap,
			Period:    snap.Period,
		})
	}
	return scored
}

// ScoreAll scores every symbol's snapshot list.
func (s *Scorer) ScoreAll(
	fundamentals map[string][]domain.FundamentalSnapshot,
) map[string][]domain.ScoredCompany {
	out := make(map[string][]domain.ScoredCompany, len(fundamentals))
	for symbol, snaps := range fundamentals {
		out[symbol] = s.Score(symbol, snaps)
	}
	return out
}
