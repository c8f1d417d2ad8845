// Package loader reads the tabular input sources, left-joins them on ISIN
// and enriches the merged table with externally fetched reference data.
package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynconv/analyzer/internal/clients/refdata"
	"github.com/dynconv/analyzer/internal/domain"
)

// Sources holds the input file paths for one run.
type Sources struct {
	Positions       string
	Themes          string
	Analytics       string
	InternalRatings string
}

// ReferenceDataFetcher is the external batch lookup the loader depends on.
type ReferenceDataFetcher interface {
	FetchBatch(ctx context.Context, securities, fields []string) (map[string]refdata.Fields, error)
}

// Loader loads and merges all portfolio data.
type Loader struct {
	sources Sources
	fetcher ReferenceDataFetcher // nil skips enrichment
	log     zerolog.Logger
}

// New creates a new loader.
func New(sources Sources, fetcher ReferenceDataFetcher, log zerolog.Logger) *Loader {
	return &Loader{
		sources: sources,
		fetcher: fetcher,
		log:     log.With().Str("service", "loader").Logger(),
	}
}

// Load builds the canonical position table: positions left-joined with
// themes, the alternate analytics source and internal ratings, then enriched
// with reference data. Any unreadable source is fatal.
func (l *Loader) Load(ctx context.Context) ([]domain.Position, error) {
	positions, err := l.loadPositions()
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	themes, err := l.loadThemes()
	if err != nil {
		return nil, fmt.Errorf("failed to load themes: %w", err)
	}

	analytics, err := l.loadAnalytics()
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}

	ratings, err := l.loadInternalRatings()
	if err != nil {
		return nil, fmt.Errorf("failed to load internal ratings: %w", err)
	}

	l.merge(positions, themes, analytics, ratings)

	if err := l.enrich(ctx, positions); err != nil {
		return nil, fmt.Errorf("failed to enrich with reference data: %w", err)
	}

	l.log.Info().Int("rows", len(positions)).Msg("Portfolio data loaded")
	return positions, nil
}

// loadPositions reads the custodian position export.
func (l *Loader) loadPositions() ([]domain.Position, error) {
	records, err := readTable(l.sources.Positions)
	if err != nil {
		return nil, err
	}

	positions := make([]domain.Position, 0, len(records))
	missingISIN := 0
	for _, rec := range records {
		// Rows without an ISIN are kept: the joins simply miss, but their
		// market value still counts (cash lines often carry no ISIN).
		isin := rec.str("ISIN")
		if isin == "" {
			missingISIN++
		}
		positions = append(positions, domain.Position{
			ISIN:              isin,
			LongName:          rec.str("Long Name"),
			ShortName:         rec.str("Short Name"),
			Issuer:            rec.str("Issuer"),
			SecurityType:      rec.str("Security Type"),
			EquityTicker:      rec.str("Eqty Ticker"),
			Sector:            rec.str("Industry Sector"),
			CountryCode:       rec.str("Cntry (Risk)"),
			MarketValuePct:    rec.floatOr("Market Value (%)", 0),
			PremiumPct:        rec.float("% Prem"),
			Delta:             rec.float("Delta"),
			OAD:               rec.float("OAD"),
			OAC:               rec.float("OAC"),
			OADContrib:        rec.float("OAD [cntr]"),
			ModDurToWorst:     rec.float("Mod Dur to Worst"),
			ImpliedVolatility: rec.float("Implied Volatility"),
			YearsToMaturity:   rec.float("Years to Mat"),
			SPRating:          rec.str("S&P"),
			SPForeignRating:   rec.str("S&P LT Foreign Currency"),
		})
	}

	if missingISIN > 0 {
		l.log.Warn().Int("count", missingISIN).Msg("Position rows without an ISIN")
	}

	l.log.Info().Int("rows", len(positions)).Msg("Positions file loaded")
	return positions, nil
}

// loadThemes reads the thematic tag mapping (ISIN -> theme).
func (l *Loader) loadThemes() (map[string]string, error) {
	records, err := readTable(l.sources.Themes)
	if err != nil {
		return nil, err
	}

	themes := make(map[string]string, len(records))
	for _, rec := range records {
		if isin := rec.str("ISIN"); isin != "" {
			themes[isin] = rec.str("Theme")
		}
	}

	l.log.Info().Int("rows", len(themes)).Msg("Themes file loaded")
	return themes, nil
}

// analyticsRow is the whitelisted subset of the alternate analytics export.
type analyticsRow struct {
	DeltaAlt            *float64
	PremiumAltPct       *float64
	InterestSensitivity *float64
	CreditSensitivity   *float64
	EffectiveDuration   *float64
	ImpliedSpread       *float64
}

// loadAnalytics reads the alternate analytics source, keyed by the ISIN
// embedded in the instrument ticker ("<ISIN> Corp").
func (l *Loader) loadAnalytics() (map[string]analyticsRow, error) {
	records, err := readTable(l.sources.Analytics)
	if err != nil {
		return nil, err
	}

	analytics := make(map[string]analyticsRow, len(records))
	for _, rec := range records {
		isin := isinFromTicker(rec.str("Ticker"))
		if isin == "" {
			continue
		}
		analytics[isin] = analyticsRow{
			DeltaAlt:            rec.float("Delta (%)"),
			PremiumAltPct:       rec.float("Premium (%)"),
			InterestSensitivity: rec.float("Interest Sensitivity"),
			CreditSensitivity:   rec.float("Credit Sensitivity"),
			EffectiveDuration:   rec.float("Effective Duration"),
			ImpliedSpread:       rec.float("Implied Spread"),
		}
	}

	l.log.Info().Int("rows", len(analytics)).Msg("Analytics file loaded")
	return analytics, nil
}

// isinFromTicker strips the market-sector suffix from an instrument ticker.
func isinFromTicker(ticker string) string {
	if i := strings.IndexByte(ticker, ' '); i > 0 {
		return ticker[:i]
	}
	return ticker
}

// internalRating is one internal analyst rating with its publication date.
type internalRating struct {
	Rating string
	Date   time.Time
}

// loadInternalRatings reads the analyst ratings, keeping only the most
// recent record per ISIN.
func (l *Loader) loadInternalRatings() (map[string]string, error) {
	records, err := readTable(l.sources.InternalRatings)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]internalRating, len(records))
	for _, rec := range records {
		isin := rec.str("ISIN")
		if isin == "" {
			continue
		}
		date := rec.date("Rating Date")
		if cur, ok := latest[isin]; ok && cur.Date.After(date) {
			continue
		}
		latest[isin] = internalRating{Rating: rec.str("Rating"), Date: date}
	}

	ratings := make(map[string]string, len(latest))
	for isin, r := range latest {
		ratings[isin] = r.Rating
	}

	l.log.Info().Int("rows", len(ratings)).Msg("Internal ratings loaded")
	return ratings, nil
}

// merge left-joins the side tables into the position rows.
func (l *Loader) merge(positions []domain.Position, themes map[string]string,
	analytics map[string]analyticsRow, ratings map[string]string) {

	for i := range positions {
		p := &positions[i]

		p.Theme = themes[p.ISIN]
		p.InternalRating = ratings[p.ISIN]

		if a, ok := analytics[p.ISIN]; ok {
			p.DeltaAlt = a.DeltaAlt
			p.PremiumAltPct = a.PremiumAltPct
			p.InterestSensitivity = a.InterestSensitivity
			p.CreditSensitivity = a.CreditSensitivity
			p.EffectiveDuration = a.EffectiveDuration
			p.ImpliedSpread = a.ImpliedSpread
		}
	}
}

// enrich fetches forward-looking fields for all equity tickers in one batch
// and composes the earnings display string.
func (l *Loader) enrich(ctx context.Context, positions []domain.Position) error {
	if l.fetcher == nil {
		l.log.Warn().Msg("No reference data fetcher configured, skipping enrichment")
		return nil
	}

	// Convertibles reference their underlying equity; the service wants the
	// asset-class qualified symbol.
	tickerSet := make(map[string]bool)
	for i := range positions {
		p := &positions[i]
		if p.EquityTicker == "" {
			continue
		}
		if p.SecurityType == domain.TypeConvertibleBond && !strings.HasSuffix(p.EquityTicker, " Equity") {
			p.EquityTicker += " Equity"
		}
		tickerSet[p.EquityTicker] = true
	}
	if len(tickerSet) == 0 {
		return nil
	}

	tickers := make([]string, 0, len(tickerSet))
	for t := range tickerSet {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	data, err := l.fetcher.FetchBatch(ctx, tickers, []string{
		refdata.FieldExpectedReportDate,
		refdata.FieldExpectedReportTime,
	})
	if err != nil {
		return err
	}

	for i := range positions {
		p := &positions[i]
		fields, ok := data[p.EquityTicker]
		if !ok {
			continue
		}
		p.ExpectedReportDate = fields.String(refdata.FieldExpectedReportDate)
		p.ExpectedReportTime = fields.String(refdata.FieldExpectedReportTime)
		p.Earnings = earningsLabel(p.ExpectedReportDate, p.ExpectedReportTime)
	}

	return nil
}

// earningsLabel joins report date and time, dropping unusable time values.
func earningsLabel(date, reportTime string) string {
	if date == "" {
		return ""
	}
	t := strings.TrimSpace(reportTime)
	if t == "" || strings.EqualFold(t, "#N/A N/A") {
		return date
	}
	return date + " " + t
}
