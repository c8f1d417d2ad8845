package metrics

import (
	"github.com/rs/zerolog"

	"github.com/dynconv/analyzer/internal/domain"
)

// Calculator derives all per-position metrics. It is constructed once with
// immutable classification tables and applied to a freshly loaded table on
// each run.
type Calculator struct {
	class Classifications
	log   zerolog.Logger
}

// NewCalculator creates a new metrics calculator
func NewCalculator(class Classifications, log zerolog.Logger) *Calculator {
	return &Calculator{
		class: class,
		log:   log.With().Str("service", "metrics").Logger(),
	}
}

// Classifications returns the lookup tables the calculator was built with.
func (c *Calculator) Classifications() Classifications {
	return c.class
}

// Apply runs every derivation stage in order, mutating the table in place.
func (c *Calculator) Apply(positions []domain.Position) {
	c.applyOverrides(positions)
	c.resolveRatings(positions)
	c.computeSensitivities(positions)
	c.assignBuckets(positions)
	c.classifyRegions(positions)
	c.classifyStyles(positions)
}

// applyOverrides patches known-bad reference data on specific ISINs.
func (c *Calculator) applyOverrides(positions []domain.Position) {
	if len(c.class.Overrides) == 0 {
		return
	}

	byISIN := make(map[string]Override, len(c.class.Overrides))
	for _, o := range c.class.Overrides {
		byISIN[o.ISIN] = o
	}

	for i := range positions {
		o, ok := byISIN[positions[i].ISIN]
		if !ok {
			continue
		}
		if o.ShortName != "" {
			positions[i].ShortName = o.ShortName
		}
		if o.Sector != "" {
			positions[i].Sector = o.Sector
		}
		if o.CountryCode != "" {
			positions[i].CountryCode = o.CountryCode
		}
		if o.EquityTicker != "" {
			positions[i].EquityTicker = o.EquityTicker
		}
		c.log.Debug().Str("isin", positions[i].ISIN).Msg("Applied manual override")
	}
}

// classifyRegions maps country codes to region names. Unknown codes stay
// empty and are reported once per code.
func (c *Calculator) classifyRegions(positions []domain.Position) {
	unmapped := map[string]bool{}
	for i := range positions {
		region, ok := c.class.CountryRegions[positions[i].CountryCode]
		if !ok {
			if positions[i].CountryCode != "" {
				unmapped[positions[i].CountryCode] = true
			}
			continue
		}
		positions[i].Region = region
	}
	for code := range unmapped {
		c.log.Warn().Str("country", code).Msg("Country code has no region mapping")
	}
}

// classifyStyles maps industry sectors to style labels.
func (c *Calculator) classifyStyles(positions []domain.Position) {
	unmapped := map[string]bool{}
	for i := range positions {
		style, ok := c.class.SectorStyles[positions[i].Sector]
		if !ok {
			if positions[i].Sector != "" {
				unmapped[positions[i].Sector] = true
			}
			continue
		}
		positions[i].Style = style
	}
	for sector := range unmapped {
		c.log.Warn().Str("sector", sector).Msg("Sector has no style mapping")
	}
}
