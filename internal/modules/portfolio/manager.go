// Package portfolio selects the companies to hold and turns their scores
// into constrained target weights.
package portfolio

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mwalczak/evergreen/internal/config"
	"github.com/mwalczak/evergreen/internal/domain"
)

// TargetAllocation is one entry of the target portfolio: a symbol, its
// final constrained weight, and the score that earned it the slot.
type TargetAllocation struct {
	Symbol string               `json:"symbol"`
	Weight float64              `json:"weight"`
	Score  domain.ScoredCompany `json:"score"`
}

// Manager builds the target portfolio from ranked scores.
type Manager struct {
	portfolio config.PortfolioConfig
	rebalance config.RebalancingConfig
	log       zerolog.Logger
}

// NewManager creates a new portfolio manager
func NewManager(portfolio config.PortfolioConfig, rebalance config.RebalancingConfig, log zerolog.Logger) *Manager {
	return &Manager{
		portfolio: portfolio,
		rebalance: rebalance,
		log:       log.With().Str("component", "portfolio_manager").Logger(),
	}
}

// PickTop returns the top-N companies by composite score, descending.
// The input slice is not modified.
func (m *Manager) PickTop(scored []domain.ScoredCompany) []domain.ScoredCompany {
	ranked := make([]domain.ScoredCompany, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
	if len(ranked) > m.portfolio.TopN {
		ranked = ranked[:m.portfolio.TopN]
	}
	return ranked
}

// BuildWeights converts picks into target allocations. Raw weights are
// proportional to the quality sub-score; a zero quality sum keeps the
// denominator at 1 so the result degrades to near-zero weights instead of
// dividing by zero. Constraints are then applied in a fixed order: sector
// cap, per-position clamp, renormalization. Clamping can push a sector back
// above its cap and that is not re-checked.
func (m *Manager) BuildWeights(picks []domain.ScoredCompany) []TargetAllocation {
	qualitySum := 0.0
	for _, p := range picks {
		qualitySum += p.Quality
	}
	if qualitySum == 0 {
		qualitySum = 1.0
	}

	allocations := make([]TargetAllocation, 0, len(picks))
	for _, p := range picks {
		allocations = append(allocations, TargetAllocation{
			Symbol: p.Symbol,
			Weight: p.Quality / qualitySum,
			Score:  p,
		})
	}
	m.applyConstraints(allocations)

	m.log.Debug().
		Int("picks", len(picks)).
		Float64("quality_sum", qualitySum).
		Msg("Built target weights")

	return allocations
}

// applyConstraints mutates the allocations in place: sector cap first, then
// the [MinPosition, MaxPosition] clamp, then renormalization to a unit sum
// (zero sum keeps the denominator at 1).
func (m *Manager) applyConstraints(allocations []TargetAllocation) {
	sectorWeight := make(map[string]float64)
	for _, alloc := range allocations {
		sectorWeight[alloc.Score.Sector] += alloc.Weight
	}
	for i := range allocations {
		sector := allocations[i].Score.Sector
		if sectorWeight[sector] > m.rebalance.MaxSectorWeight {
			allocations[i].Weight *= m.rebalance.MaxSectorWeight / sectorWeight[sector]
		}
	}

	for i := range allocations {
		allocations[i].Weight = math.Max(m.rebalance.MinPosition,
			math.Min(m.rebalance.MaxPosition, allocations[i].Weight))
	}

	total := 0.0
	for _, alloc := range allocations {
		total += alloc.Weight
	}
	if total == 0 {
		total = 1.0
	}
	for i := range allocations {
		allocations[i].Weight /= total
	}
}

// RebalanceOrders diffs current positions against target allocations and
// emits the weight-delta orders needed to converge. Positions absent from
// the targets are sold in full; per-target deltas below 1e-6 are skipped,
// as are symbols with no usable price.
func (m *Manager) RebalanceOrders(current map[string]domain.Position, targets []TargetAllocation,
	prices map[string]float64, currency domain.Currency) []domain.Order {
	targetSet := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		targetSet[t.Symbol] = struct{}{}
	}

	held := make([]string, 0, len(current))
	for symbol := range current {
		held = append(held, symbol)
	}
	sort.Strings(held)

	var orders []domain.Order
	for _, symbol := range held {
		if _, ok := targetSet[symbol]; !ok {
			pos := current[symbol]
			orders = append(orders, domain.Order{
				Symbol:   symbol,
				Action:   domain.ActionSell,
				Quantity: pos.Quantity,
				Currency: pos.Currency,
				Reason:   "Removed from target",
			})
		}
	}
	for _, alloc := range targets {
		price := prices[alloc.Symbol]
		if price == 0 {
			continue
		}
		currentWeight := 0.0
		if pos, ok := current[alloc.Symbol]; ok {
			currentWeight = pos.Weight
		}
		delta := alloc.Weight - currentWeight
		if math.Abs(delta) < 1e-6 {
			continue
		}
		action := domain.ActionBuy
		if delta < 0 {
			action = domain.ActionSell
		}
		orders = append(orders, domain.Order{
			Symbol:   alloc.Symbol,
			Action:   action,
			Quantity: math.Abs(delta) / price,
			Currency: currency,
			Reason:   "Rebalance",
			Price:    price,
		})
	}
	return orders
}
