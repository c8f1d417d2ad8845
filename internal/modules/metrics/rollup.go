package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/dynconv/analyzer/internal/domain"
)

// FundRating rolls the per-position ratings up to a single fund-level letter
// grade: the market-value-weighted average ordinal over bond-like positions,
// snapped to the nearest whole grade. Positions without an ordinal (NR,
// CASH) are excluded together with their weight.
//
// Returns the letter grade and the raw weighted average. When no position
// carries an ordinal the fund is "NR".
func (c *Calculator) FundRating(positions []domain.Position) (string, float64) {
	var ordinals, weights []float64
	for i := range positions {
		p := &positions[i]
		if !p.IsBondLike() || p.RatingOrdinal == nil {
			continue
		}
		ordinals = append(ordinals, float64(*p.RatingOrdinal))
		weights = append(weights, p.MarketValuePct)
	}

	if len(ordinals) == 0 {
		c.log.Warn().Msg("No rated bond positions, fund rating unavailable")
		return domain.RatingNotRated, 0
	}

	avg := stat.Mean(ordinals, weights)
	label := c.snapToRating(avg)

	c.log.Info().
		Float64("weighted_ordinal", avg).
		Str("rating", label).
		Msg("Fund rating rolled up")

	return label, avg
}

// snapToRating maps a fractional ordinal to the nearest defined rating.
// Exact midpoints resolve to the lower ordinal (ascending-first tie-break).
func (c *Calculator) snapToRating(avg float64) string {
	bestLabel := domain.RatingNotRated
	bestOrd := 0
	bestDist := math.Inf(1)

	for label, ord := range c.class.RatingOrdinals {
		dist := math.Abs(float64(ord) - avg)
		if dist < bestDist || (dist == bestDist && ord < bestOrd) {
			bestLabel = label
			bestOrd = ord
			bestDist = dist
		}
	}
	return bestLabel
}
