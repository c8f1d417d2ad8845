// Package domain defines the core data model for the fund analytics pipeline.
package domain

// Security types as they appear in the custodian's position export.
const (
	TypeConvertibleBond = "Convertible Bonds"
	TypeCorporateBond   = "Corporate Bonds"
	TypeCommonStock     = "Common Stocks"
	TypeWarrant         = "Warrants"
	TypeCurrencyForward = "Currency Forwards"
	TypeOpenEndFund     = "Open-End Funds"
	TypeCash            = "Cash"
)

// Sentinel rating labels produced by the rating cascade.
const (
	RatingNotRated = "NR"
	RatingCash     = "CASH"
)

// UnmappedLabel groups rows whose categorical key could not be resolved
// (unknown country code, unknown sector, value outside all buckets).
// Keeping them in an explicit group preserves the conservation-of-total
// invariant for report tables.
const UnmappedLabel = "Unmapped"

// Position is one security holding, enriched step by step by the pipeline.
// Nullable numeric fields are pointers: a nil value means the source did not
// provide one, which is distinct from zero.
type Position struct {
	// Identity and reference data (positions file).
	ISIN         string `json:"isin"`
	LongName     string `json:"long_name"`
	ShortName    string `json:"short_name"`
	Issuer       string `json:"issuer"`
	SecurityType string `json:"security_type"`
	EquityTicker string `json:"equity_ticker,omitempty"`
	Sector       string `json:"sector,omitempty"`
	CountryCode  string `json:"country_code,omitempty"`

	// Market data (positions file).
	MarketValuePct    float64  `json:"market_value_pct"`
	PremiumPct        *float64 `json:"premium_pct,omitempty"`
	Delta             *float64 `json:"delta,omitempty"`
	OAD               *float64 `json:"oad,omitempty"`
	OAC               *float64 `json:"oac,omitempty"`
	OADContrib        *float64 `json:"oad_contrib,omitempty"`
	ModDurToWorst     *float64 `json:"mod_dur_to_worst,omitempty"`
	ImpliedVolatility *float64 `json:"implied_volatility,omitempty"`
	YearsToMaturity   *float64 `json:"years_to_maturity,omitempty"`

	// Rating sources.
	SPRating        string `json:"sp_rating,omitempty"`
	SPForeignRating string `json:"sp_foreign_rating,omitempty"`
	InternalRating  string `json:"internal_rating,omitempty"`

	// Joined tables.
	Theme string `json:"theme,omitempty"`

	// Alternate analytics source (cross-validation model).
	DeltaAlt            *float64 `json:"delta_alt,omitempty"`
	PremiumAltPct       *float64 `json:"premium_alt_pct,omitempty"`
	InterestSensitivity *float64 `json:"interest_sensitivity,omitempty"`
	CreditSensitivity   *float64 `json:"credit_sensitivity,omitempty"`
	EffectiveDuration   *float64 `json:"effective_duration,omitempty"`
	ImpliedSpread       *float64 `json:"implied_spread,omitempty"`

	// Reference-data enrichment.
	ExpectedReportDate string `json:"expected_report_date,omitempty"`
	ExpectedReportTime string `json:"expected_report_time,omitempty"`
	Earnings           string `json:"earnings,omitempty"`

	// Computed by the metrics calculator.
	AdjustedRating           string   `json:"adjusted_rating,omitempty"`
	RatingOrdinal            *int     `json:"rating_ordinal,omitempty"`
	CreditCategory           string   `json:"credit_category,omitempty"`
	EquitySensitivity        *float64 `json:"equity_sensitivity,omitempty"`
	EquityContribution       float64  `json:"equity_contribution"`
	EquitySensitivityAlt     *float64 `json:"equity_sensitivity_alt,omitempty"`
	EquityContributionAlt    float64  `json:"equity_contribution_alt"`
	ModifiedDurationContrib  *float64 `json:"modified_duration_contrib,omitempty"`
	EffectiveDurationContrib *float64 `json:"effective_duration_contrib,omitempty"`
	RateContrib              *float64 `json:"rate_contrib,omitempty"`
	CreditContrib            *float64 `json:"credit_contrib,omitempty"`
	ImpliedSpreadContrib     *float64 `json:"implied_spread_contrib,omitempty"`
	SensitivityBucket        string   `json:"sensitivity_bucket,omitempty"`
	VolatilityBucket         string   `json:"volatility_bucket,omitempty"`
	MaturityBucket           string   `json:"maturity_bucket,omitempty"`
	Region                   string   `json:"region,omitempty"`
	Style                    string   `json:"style,omitempty"`
}

// IsBondLike reports whether the position participates in the fund-level
// rating rollup.
func (p *Position) IsBondLike() bool {
	return p.SecurityType == TypeCorporateBond || p.SecurityType == TypeConvertibleBond
}

// Float returns a pointer to v. Convenience for building positions in tests
// and loaders.
func Float(v float64) *float64 { return &v }
