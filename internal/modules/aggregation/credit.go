package aggregation

import (
	"sort"

	"github.com/dynconv/analyzer/internal/domain"
	"github.com/dynconv/analyzer/internal/modules/metrics"
)

// creditCategoryOrder fixes the display order of the IG/HY split table.
var creditCategoryOrder = []string{"Investment Grade", "High Yield", "Not Rated", "Cash"}

// creditAnalysis computes the credit-side tables over the credit view.
func (a *Aggregator) creditAnalysis(credit []domain.Position) CreditAnalysis {
	// The detailed rating and issuer views exclude cash.
	rated := make([]domain.Position, 0, len(credit))
	for _, p := range credit {
		if p.SecurityType != domain.TypeCash {
			rated = append(rated, p)
		}
	}

	a.log.Info().Int("rows", len(credit)).Msg("Credit analysis over bonds and cash")

	return CreditAnalysis{
		ByCategory:       a.weightsBy(credit, func(p *domain.Position) string { return p.CreditCategory }, creditCategoryOrder),
		ByRating:         a.weightsBy(rated, func(p *domain.Position) string { return p.AdjustedRating }, a.ratingOrder),
		ByIssuer:         a.issuerConcentration(rated),
		ByMaturity:       a.weightsBy(credit, func(p *domain.Position) string { return p.MaturityBucket }, metrics.MaturityBucketLabels()),
		ByMaturityRating: a.maturityRatingCross(credit),
	}
}

// weightsBy sums market value and counts positions per group, ordered by the
// given label order with unknown labels trailing alphabetically.
func (a *Aggregator) weightsBy(positions []domain.Position, key func(*domain.Position) string, order []string) []GroupWeight {
	sums := map[string]float64{}
	counts := map[string]int{}
	for i := range positions {
		k := key(&positions[i])
		if k == "" {
			k = domain.UnmappedLabel
		}
		sums[k] += positions[i].MarketValuePct
		counts[k]++
	}

	rank := labelRank(order)
	rows := make([]GroupWeight, 0, len(sums))
	for k := range sums {
		rows = append(rows, GroupWeight{Group: k, MarketValue: round2(sums[k]), Positions: counts[k]})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		ri, iOK := rank[rows[i].Group]
		rj, jOK := rank[rows[j].Group]
		switch {
		case iOK && jOK:
			return ri < rj
		case iOK:
			return true
		case jOK:
			return false
		default:
			return rows[i].Group < rows[j].Group
		}
	})
	return rows
}

// issuerConcentration returns the ten largest issuers by market value.
func (a *Aggregator) issuerConcentration(positions []domain.Position) []IssuerWeight {
	sums := map[string]float64{}
	for i := range positions {
		issuer := positions[i].Issuer
		if issuer == "" {
			issuer = domain.UnmappedLabel
		}
		sums[issuer] += positions[i].MarketValuePct
	}

	rows := make([]IssuerWeight, 0, len(sums))
	for issuer, mv := range sums {
		rows = append(rows, IssuerWeight{Issuer: issuer, MarketValue: round2(mv)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].MarketValue != rows[j].MarketValue {
			return rows[i].MarketValue > rows[j].MarketValue
		}
		return rows[i].Issuer < rows[j].Issuer
	})

	if len(rows) > 10 {
		rows = rows[:10]
	}
	return rows
}

// maturityRatingCross builds the maturity x rating cross-tab, ordered by
// maturity bucket then rating ladder.
func (a *Aggregator) maturityRatingCross(credit []domain.Position) []MaturityRatingWeight {
	type cell struct{ bucket, rating string }
	sums := map[cell]float64{}
	counts := map[cell]int{}

	for i := range credit {
		p := &credit[i]
		c := cell{bucket: p.MaturityBucket, rating: p.AdjustedRating}
		if c.bucket == "" {
			c.bucket = domain.UnmappedLabel
		}
		sums[c] += p.MarketValuePct
		counts[c]++
	}

	bucketRank := labelRank(metrics.MaturityBucketLabels())
	ratingRank := labelRank(a.ratingOrder)

	rows := make([]MaturityRatingWeight, 0, len(sums))
	for c := range sums {
		rows = append(rows, MaturityRatingWeight{
			MaturityBucket: c.bucket,
			Rating:         c.rating,
			MarketValue:    round2(sums[c]),
			Positions:      counts[c],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		bi, bj := rankOf(bucketRank, rows[i].MaturityBucket), rankOf(bucketRank, rows[j].MaturityBucket)
		if bi != bj {
			return bi < bj
		}
		ri, rj := rankOf(ratingRank, rows[i].Rating), rankOf(ratingRank, rows[j].Rating)
		if ri != rj {
			return ri < rj
		}
		return rows[i].Rating < rows[j].Rating
	})
	return rows
}

func labelRank(order []string) map[string]int {
	rank := make(map[string]int, len(order))
	for i, label := range order {
		rank[label] = i
	}
	return rank
}

// rankOf returns the label's position in the fixed order, pushing unknown
// labels after all known ones.
func rankOf(rank map[string]int, label string) int {
	if r, ok := rank[label]; ok {
		return r
	}
	return len(rank) + 1
}
