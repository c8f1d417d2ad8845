package aggregation

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/dynconv/analyzer/internal/domain"
	"github.com/dynconv/analyzer/internal/modules/metrics"
)

// totalLabel marks the synthetic sum row appended to top-N tables.
const totalLabel = "TOTAL"

// themeLeaderThreshold is the minimum equity contribution for a position to
// appear in the per-theme leaders table.
const themeLeaderThreshold = 1.0

// Aggregator builds the report tables.
type Aggregator struct {
	topN        int
	ratingOrder []string
	log         zerolog.Logger
}

// New creates a new aggregator. ratingOrder fixes the rating-ladder sort of
// the credit tables.
func New(topN int, ratingOrder []string, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		topN:        topN,
		ratingOrder: ratingOrder,
		log:         log.With().Str("service", "aggregation").Logger(),
	}
}

// Aggregate computes every summary table. working is the equity working set,
// complete the unfiltered canonical table; fundRating/fundOrdinal come from
// the metrics rollup.
func (a *Aggregator) Aggregate(working, complete []domain.Position, fundRating string, fundOrdinal float64) Results {
	results := Results{
		Summary:               a.summary(working, fundRating, fundOrdinal),
		TopHoldings:           a.topHoldings(working),
		TopEquityContributors: a.topContributors(working),
		BySector:              a.contributionBy(working, func(p *domain.Position) string { return p.Sector }),
		ByRegion:              a.contributionBy(working, func(p *domain.Position) string { return p.Region }),
		ByTheme:               a.contributionBy(working, func(p *domain.Position) string { return p.Theme }),
		ByStyle:               a.contributionBy(working, func(p *domain.Position) string { return p.Style }),
		BySensitivityBucket:   a.bucketStats(working, func(p *domain.Position) string { return p.SensitivityBucket }, metrics.SensitivityBucketLabels()),
		ByVolatilityBucket:    a.bucketStats(working, func(p *domain.Position) string { return p.VolatilityBucket }, metrics.VolatilityBucketLabels()),
		ThemeLeaders:          a.themeLeaders(working),
		Credit:                a.creditAnalysis(domain.CreditSet(complete)),
	}

	a.log.Info().
		Int("working_rows", len(working)).
		Int("complete_rows", len(complete)).
		Msg("Aggregation complete")

	return results
}

// summary computes the headline scalar metrics over the working set.
func (a *Aggregator) summary(working []domain.Position, fundRating string, fundOrdinal float64) Summary {
	s := Summary{
		Holdings:          len(working),
		FundRating:        fundRating,
		FundRatingOrdinal: round2(fundOrdinal),
	}

	for i := range working {
		p := &working[i]
		s.EquityContribution += p.EquityContribution
		s.EquityContributionAlt += p.EquityContributionAlt
		if p.PremiumPct != nil {
			s.AveragePremium += *p.PremiumPct * p.MarketValuePct / 100
		}
		s.DurationContribution += deref(p.OADContrib)
		s.RateContribution += deref(p.RateContrib)
		s.CreditContribution += deref(p.CreditContrib)
		s.ModifiedDuration += deref(p.ModifiedDurationContrib)
		s.EffectiveDuration += deref(p.EffectiveDurationContrib)
		s.CreditSpread += deref(p.ImpliedSpreadContrib)
	}

	s.EquityContribution = round2(s.EquityContribution)
	s.EquityContributionAlt = round2(s.EquityContributionAlt)
	s.AveragePremium = round2(s.AveragePremium)
	s.DurationContribution = round2(s.DurationContribution)
	s.RateContribution = round2(s.RateContribution)
	s.CreditContribution = round2(s.CreditContribution)
	s.ModifiedDuration = round2(s.ModifiedDuration)
	s.EffectiveDuration = round2(s.EffectiveDuration)
	s.CreditSpread = round2(s.CreditSpread)

	return s
}

// topHoldings returns the top-N positions by market value over the holdings
// view, with a trailing TOTAL row covering exactly those N rows.
func (a *Aggregator) topHoldings(working []domain.Position) []HoldingRow {
	eligible := domain.HoldingsSet(working)
	return a.topBy(eligible, func(p *domain.Position) float64 { return p.MarketValuePct })
}

// topContributors returns the top-N positions by equity contribution.
func (a *Aggregator) topContributors(working []domain.Position) []HoldingRow {
	return a.topBy(working, func(p *domain.Position) float64 { return p.EquityContribution })
}

func (a *Aggregator) topBy(positions []domain.Position, value func(*domain.Position) float64) []HoldingRow {
	sorted := make([]domain.Position, len(positions))
	copy(sorted, positions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return value(&sorted[i]) > value(&sorted[j])
	})

	n := a.topN
	if n > len(sorted) {
		n = len(sorted)
	}

	rows := make([]HoldingRow, 0, n+1)
	total := 0.0
	for i := 0; i < n; i++ {
		v := value(&sorted[i])
		total += v
		rows = append(rows, HoldingRow{
			LongName:  sorted[i].LongName,
			ShortName: sorted[i].ShortName,
			Value:     round2(v),
		})
	}

	// TOTAL covers the selected rows only, not the full set.
	rows = append(rows, HoldingRow{LongName: totalLabel, Value: round2(total)})
	return rows
}

// contributionBy sums equity contributions per group key, descending. Rows
// with an empty key are kept under "Unmapped" so the table still sums to the
// working set's total contribution.
func (a *Aggregator) contributionBy(working []domain.Position, key func(*domain.Position) string) []LabelValue {
	sums := map[string]float64{}
	for i := range working {
		k := key(&working[i])
		if k == "" {
			k = domain.UnmappedLabel
		}
		sums[k] += working[i].EquityContribution
	}

	rows := make([]LabelValue, 0, len(sums))
	for k, v := range sums {
		rows = append(rows, LabelValue{Label: k, Value: round2(v)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Label < rows[j].Label
	})
	return rows
}

// bucketStats sums contributions and counts positions per bucket, in bucket
// interval order, with any unbucketed rows trailing as "Unmapped".
func (a *Aggregator) bucketStats(working []domain.Position, key func(*domain.Position) string, order []string) []BucketStat {
	sums := map[string]float64{}
	counts := map[string]int{}
	for i := range working {
		k := key(&working[i])
		if k == "" {
			k = domain.UnmappedLabel
		}
		sums[k] += working[i].EquityContribution
		counts[k]++
	}

	rows := make([]BucketStat, 0, len(order)+1)
	for _, label := range order {
		if n, ok := counts[label]; ok {
			rows = append(rows, BucketStat{Bucket: label, Contribution: round2(sums[label]), Positions: n})
		}
	}
	if n, ok := counts[domain.UnmappedLabel]; ok {
		rows = append(rows, BucketStat{Bucket: domain.UnmappedLabel, Contribution: round2(sums[domain.UnmappedLabel]), Positions: n})
	}
	return rows
}

// themeLeaders lists positions whose equity contribution exceeds the
// threshold, grouped by theme and sorted descending within each theme.
func (a *Aggregator) themeLeaders(working []domain.Position) []ThemeLeader {
	var rows []ThemeLeader
	for i := range working {
		p := &working[i]
		if p.EquityContribution <= themeLeaderThreshold {
			continue
		}
		theme := p.Theme
		if theme == "" {
			theme = domain.UnmappedLabel
		}
		rows = append(rows, ThemeLeader{
			Theme:        theme,
			ShortName:    p.ShortName,
			Contribution: round2(p.EquityContribution),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Theme != rows[j].Theme {
			return rows[i].Theme < rows[j].Theme
		}
		return rows[i].Contribution > rows[j].Contribution
	})
	return rows
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
