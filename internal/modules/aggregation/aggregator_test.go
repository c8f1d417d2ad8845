package aggregation

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynconv/analyzer/internal/domain"
	"github.com/dynconv/analyzer/internal/modules/metrics"
)

func newTestAggregator(topN int) *Aggregator {
	return New(topN, metrics.DefaultClassifications().RatingOrder(), zerolog.Nop())
}

func convertible(isin, name string, mv, contrib float64) domain.Position {
	return domain.Position{
		ISIN:               isin,
		LongName:           name,
		ShortName:          name,
		SecurityType:       domain.TypeConvertibleBond,
		MarketValuePct:     mv,
		EquityContribution: contrib,
	}
}

func TestTopBy_TotalCoversSelectedRowsOnly(t *testing.T) {
	agg := newTestAggregator(2)
	positions := []domain.Position{
		convertible("XS1", "ALPHA", 10, 4),
		convertible("XS2", "BRAVO", 8, 3),
		convertible("XS3", "CHARLIE", 6, 2),
		convertible("XS4", "DELTA", 4, 1),
	}

	rows := agg.topHoldings(positions)

	require.Len(t, rows, 3) // 2 holdings + TOTAL
	assert.Equal(t, "ALPHA", rows[0].LongName)
	assert.Equal(t, 10.0, rows[0].Value)
	assert.Equal(t, "BRAVO", rows[1].LongName)

	total := rows[2]
	assert.Equal(t, totalLabel, total.LongName)
	assert.Equal(t, 18.0, total.Value, "TOTAL sums the selected rows, not the full set")
}

func TestTopBy_FewerRowsThanN(t *testing.T) {
	agg := newTestAggregator(10)
	positions := []domain.Position{
		convertible("XS1", "ALPHA", 10, 4),
	}

	rows := agg.topContributors(positions)

	require.Len(t, rows, 2)
	assert.Equal(t, "ALPHA", rows[0].LongName)
	assert.Equal(t, totalLabel, rows[1].LongName)
	assert.Equal(t, 4.0, rows[1].Value)
}

func TestTopHoldings_FiltersToHoldingsView(t *testing.T) {
	agg := newTestAggregator(5)
	positions := []domain.Position{
		convertible("XS1", "ALPHA", 10, 4),
		{ISIN: "FX1", LongName: "FWD", SecurityType: domain.TypeCurrencyForward, MarketValuePct: 50},
		{ISIN: "CS1", LongName: "CASH", SecurityType: domain.TypeCash, MarketValuePct: 20},
	}

	rows := agg.topHoldings(positions)

	require.Len(t, rows, 2)
	assert.Equal(t, "ALPHA", rows[0].LongName, "forwards and cash stay out of the holdings table")
}

func TestContributionBy_UnmappedConservesTotal(t *testing.T) {
	agg := newTestAggregator(5)
	positions := []domain.Position{
		{ISIN: "XS1", Region: "Europe", EquityContribution: 3},
		{ISIN: "XS2", Region: "Europe", EquityContribution: 2},
		{ISIN: "XS3", Region: "", EquityContribution: 1.5},
	}

	rows := agg.contributionBy(positions, func(p *domain.Position) string { return p.Region })

	require.Len(t, rows, 2)
	assert.Equal(t, LabelValue{Label: "Europe", Value: 5}, rows[0])
	assert.Equal(t, LabelValue{Label: domain.UnmappedLabel, Value: 1.5}, rows[1])

	sum := 0.0
	for _, r := range rows {
		sum += r.Value
	}
	assert.InDelta(t, 6.5, sum, 1e-9)
}

func TestContributionBy_SortedDescendingThenLabel(t *testing.T) {
	agg := newTestAggregator(5)
	positions := []domain.Position{
		{ISIN: "XS1", Style: "Value", EquityContribution: 1},
		{ISIN: "XS2", Style: "Growth", EquityContribution: 1},
		{ISIN: "XS3", Style: "Cyclical", EquityContribution: 4},
	}

	rows := agg.contributionBy(positions, func(p *domain.Position) string { return p.Style })

	require.Len(t, rows, 3)
	assert.Equal(t, "Cyclical", rows[0].Label)
	assert.Equal(t, "Growth", rows[1].Label, "equal values fall back to label order")
	assert.Equal(t, "Value", rows[2].Label)
}

func TestBucketStats_OrderedWithTrailingUnmapped(t *testing.T) {
	agg := newTestAggregator(5)
	positions := []domain.Position{
		{ISIN: "XS1", SensitivityBucket: "50-75", EquityContribution: 2},
		{ISIN: "XS2", SensitivityBucket: "0-25", EquityContribution: 1},
		{ISIN: "XS3", SensitivityBucket: "0-25", EquityContribution: 0.5},
		{ISIN: "XS4", SensitivityBucket: "", EquityContribution: 0.25},
	}

	rows := agg.bucketStats(positions, func(p *domain.Position) string { return p.SensitivityBucket }, metrics.SensitivityBucketLabels())

	require.Len(t, rows, 3)
	assert.Equal(t, BucketStat{Bucket: "0-25", Contribution: 1.5, Positions: 2}, rows[0])
	assert.Equal(t, BucketStat{Bucket: "50-75", Contribution: 2, Positions: 1}, rows[1])
	assert.Equal(t, BucketStat{Bucket: domain.UnmappedLabel, Contribution: 0.25, Positions: 1}, rows[2])
}

func TestThemeLeaders_ThresholdAndOrdering(t *testing.T) {
	agg := newTestAggregator(5)
	positions := []domain.Position{
		{ISIN: "XS1", ShortName: "A", Theme: "Electrification", EquityContribution: 2.5},
		{ISIN: "XS2", ShortName: "B", Theme: "Electrification", EquityContribution: 3.5},
		{ISIN: "XS3", ShortName: "C", Theme: "AI", EquityContribution: 1.2},
		{ISIN: "XS4", ShortName: "D", Theme: "AI", EquityContribution: 1.0}, // at the threshold, excluded
		{ISIN: "XS5", ShortName: "E", Theme: "", EquityContribution: 1.8},
	}

	rows := agg.themeLeaders(positions)

	require.Len(t, rows, 4)
	assert.Equal(t, ThemeLeader{Theme: "AI", ShortName: "C", Contribution: 1.2}, rows[0])
	assert.Equal(t, ThemeLeader{Theme: "Electrification", ShortName: "B", Contribution: 3.5}, rows[1])
	assert.Equal(t, ThemeLeader{Theme: "Electrification", ShortName: "A", Contribution: 2.5}, rows[2])
	assert.Equal(t, ThemeLeader{Theme: domain.UnmappedLabel, ShortName: "E", Contribution: 1.8}, rows[3])
}

func TestSummary(t *testing.T) {
	agg := newTestAggregator(5)
	working := []domain.Position{
		{
			ISIN:                    "XS1",
			MarketValuePct:          40,
			PremiumPct:              domain.Float(20),
			EquityContribution:      10,
			EquityContributionAlt:   9,
			OADContrib:              domain.Float(0.8),
			RateContrib:             domain.Float(-0.5),
			CreditContrib:           domain.Float(-0.3),
			ModifiedDurationContrib: domain.Float(1.1),
			ImpliedSpreadContrib:    domain.Float(2.4),
		},
		{
			ISIN:               "XS2",
			MarketValuePct:     10,
			PremiumPct:         domain.Float(40),
			EquityContribution: 5,
		},
	}

	s := agg.summary(working, "BBB", 9.304)

	assert.Equal(t, 2, s.Holdings)
	assert.Equal(t, "BBB", s.FundRating)
	assert.Equal(t, 9.3, s.FundRatingOrdinal)
	assert.Equal(t, 15.0, s.EquityContribution)
	assert.Equal(t, 9.0, s.EquityContributionAlt)
	// 20*40/100 + 40*10/100 = 12
	assert.Equal(t, 12.0, s.AveragePremium)
	assert.Equal(t, 0.8, s.DurationContribution)
	assert.Equal(t, -0.5, s.RateContribution)
	assert.Equal(t, 2.4, s.CreditSpread)
}

func TestAggregate_EmptyWorkingSet(t *testing.T) {
	agg := newTestAggregator(5)

	results := agg.Aggregate(nil, nil, domain.RatingNotRated, 0)

	assert.Equal(t, 0, results.Summary.Holdings)
	require.Len(t, results.TopHoldings, 1)
	assert.Equal(t, totalLabel, results.TopHoldings[0].LongName)
	assert.Empty(t, results.BySector)
	assert.Empty(t, results.Credit.ByCategory)
}
