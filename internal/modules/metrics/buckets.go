package metrics

import (
	"math"

	"github.com/dynconv/analyzer/internal/domain"
)

// bucketEdge is one half-open interval [Lower, Upper) with its label.
// Boundary values always land in the bucket whose interval is right-open at
// that value, i.e. the higher one.
type bucketEdge struct {
	Lower float64
	Upper float64
	Label string
}

var sensitivityBuckets = []bucketEdge{
	{0, 0.25, "0-25"},
	{0.25, 0.50, "25-50"},
	{0.50, 0.75, "50-75"},
	{0.75, 1.1, "75-100"},
}

var volatilityBuckets = []bucketEdge{
	{math.Inf(-1), 20, "<20%"},
	{20, 30, "20-30%"},
	{30, 40, "30-40%"},
	{40, math.Inf(1), ">40%"},
}

var maturityBuckets = []bucketEdge{
	{math.Inf(-1), 1, "<1yr"},
	{1, 3, "1-3yr"},
	{3, 5, "3-5yr"},
	{5, math.Inf(1), ">5yr"},
}

// cashMaturityYears is the near-zero maturity cash positions are pinned to
// so they always land in the shortest bucket.
const cashMaturityYears = 0.003

// bucketLabel assigns v to its interval. A nil or out-of-range value yields
// the empty label; aggregation groups those under "Unmapped".
func bucketLabel(v *float64, edges []bucketEdge) string {
	if v == nil {
		return ""
	}
	for _, e := range edges {
		if *v >= e.Lower && *v < e.Upper {
			return e.Label
		}
	}
	return ""
}

// assignBuckets computes the three categorical partitions for every row.
func (c *Calculator) assignBuckets(positions []domain.Position) {
	for i := range positions {
		p := &positions[i]

		p.SensitivityBucket = bucketLabel(p.EquitySensitivity, sensitivityBuckets)
		p.VolatilityBucket = bucketLabel(p.ImpliedVolatility, volatilityBuckets)

		if p.SecurityType == domain.TypeCash {
			p.YearsToMaturity = domain.Float(cashMaturityYears)
		}
		p.MaturityBucket = bucketLabel(p.YearsToMaturity, maturityBuckets)
	}
}

// SensitivityBucketLabels returns the sensitivity bucket labels in ascending
// interval order.
func SensitivityBucketLabels() []string { return bucketLabels(sensitivityBuckets) }

// VolatilityBucketLabels returns the volatility bucket labels in ascending
// interval order.
func VolatilityBucketLabels() []string { return bucketLabels(volatilityBuckets) }

// MaturityBucketLabels returns the maturity bucket labels in ascending
// interval order.
func MaturityBucketLabels() []string { return bucketLabels(maturityBuckets) }

func bucketLabels(edges []bucketEdge) []string {
	labels := make([]string, len(edges))
	for i, e := range edges {
		labels[i] = e.Label
	}
	return labels
}
