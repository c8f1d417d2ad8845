// Package aggregation builds the report summary tables from the enriched
// position table.
package aggregation

// Summary holds the fund-level headline metrics.
type Summary struct {
	Holdings              int     `json:"holdings"`
	EquityContribution    float64 `json:"equity_contribution"`
	EquityContributionAlt float64 `json:"equity_contribution_alt"`
	AveragePremium        float64 `json:"average_premium"`
	DurationContribution  float64 `json:"duration_contribution"`
	RateContribution      float64 `json:"rate_contribution"`
	CreditContribution    float64 `json:"credit_contribution"`
	ModifiedDuration      float64 `json:"modified_duration"`
	EffectiveDuration     float64 `json:"effective_duration"`
	CreditSpread          float64 `json:"credit_spread"`
	FundRating            string  `json:"fund_rating"`
	FundRatingOrdinal     float64 `json:"fund_rating_ordinal"`
}

// LabelValue is one row of a grouped-contribution table.
type LabelValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BucketStat is one bucket row with its contribution and position count.
type BucketStat struct {
	Bucket       string  `json:"bucket"`
	Contribution float64 `json:"contribution"`
	Positions    int     `json:"positions"`
}

// HoldingRow is one row of a top-N table. The final row is a synthetic
// "TOTAL" summing exactly the selected N rows.
type HoldingRow struct {
	LongName  string  `json:"long_name"`
	ShortName string  `json:"short_name"`
	Value     float64 `json:"value"`
}

// GroupWeight is one row of a market-value weight table with its position
// count.
type GroupWeight struct {
	Group       string  `json:"group"`
	MarketValue float64 `json:"market_value"`
	Positions   int     `json:"positions"`
}

// IssuerWeight is one row of the issuer concentration table.
type IssuerWeight struct {
	Issuer      string  `json:"issuer"`
	MarketValue float64 `json:"market_value"`
}

// MaturityRatingWeight is one cell of the maturity x rating cross-tab.
type MaturityRatingWeight struct {
	MaturityBucket string  `json:"maturity_bucket"`
	Rating         string  `json:"rating"`
	MarketValue    float64 `json:"market_value"`
	Positions      int     `json:"positions"`
}

// ThemeLeader is one high-contribution position grouped under its theme.
type ThemeLeader struct {
	Theme        string  `json:"theme"`
	ShortName    string  `json:"short_name"`
	Contribution float64 `json:"contribution"`
}

// CreditAnalysis groups the credit-side report tables, computed over the
// credit view (corporate bonds, convertibles, cash) of the complete table.
type CreditAnalysis struct {
	ByCategory       []GroupWeight          `json:"by_category"`
	ByRating         []GroupWeight          `json:"by_rating"`
	ByIssuer         []IssuerWeight         `json:"by_issuer"`
	ByMaturity       []GroupWeight          `json:"by_maturity"`
	ByMaturityRating []MaturityRatingWeight `json:"by_maturity_rating"`
}

// Results is the full set of named summary tables handed to the rendering
// layer.
type Results struct {
	Summary               Summary        `json:"summary"`
	TopHoldings           []HoldingRow   `json:"top_holdings"`
	TopEquityContributors []HoldingRow   `json:"top_equity_contributors"`
	BySector              []LabelValue   `json:"by_sector"`
	ByRegion              []LabelValue   `json:"by_region"`
	ByTheme               []LabelValue   `json:"by_theme"`
	ByStyle               []LabelValue   `json:"by_style"`
	BySensitivityBucket   []BucketStat   `json:"by_sensitivity_bucket"`
	ByVolatilityBucket    []BucketStat   `json:"by_volatility_bucket"`
	ThemeLeaders          []ThemeLeader  `json:"theme_leaders"`
	Credit                CreditAnalysis `json:"credit"`
}
