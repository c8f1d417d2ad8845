package metrics

import (
	"github.com/dynconv/analyzer/internal/domain"
)

// computeSensitivities derives equity, rate and credit sensitivities plus
// their market-value-weighted contributions for every row.
func (c *Calculator) computeSensitivities(positions []domain.Position) {
	defaulted := 0

	for i := range positions {
		p := &positions[i]

		// Missing deltas fall back to the per-type default when one is
		// registered. Convertibles have no default: a missing delta there is
		// a data gap that propagates as a zero contribution, not an error.
		if p.Delta == nil {
			if def, ok := c.class.DeltaDefaults[p.SecurityType]; ok {
				p.Delta = domain.Float(def)
				defaulted++
			}
		}
		if p.DeltaAlt == nil {
			if def, ok := c.class.DeltaDefaults[p.SecurityType]; ok {
				p.DeltaAlt = domain.Float(def)
			}
		}

		p.EquitySensitivity = equitySensitivity(p.Delta, p.PremiumPct)
		p.EquityContribution = contribution(p.EquitySensitivity, p.MarketValuePct)

		p.EquitySensitivityAlt = equitySensitivity(p.DeltaAlt, p.PremiumAltPct)
		p.EquityContributionAlt = contribution(p.EquitySensitivityAlt, p.MarketValuePct)

		p.ModifiedDurationContrib = weightedContrib(p.ModDurToWorst, p.MarketValuePct)

		// Only convertibles carry a model effective duration; everything else
		// uses modified duration to worst.
		if p.SecurityType != domain.TypeConvertibleBond {
			p.EffectiveDuration = p.ModDurToWorst
		}
		p.EffectiveDurationContrib = weightedContrib(p.EffectiveDuration, p.MarketValuePct)

		// Rate and credit sensitivity: convertibles use the model fields,
		// everything else derives from negated option-adjusted duration and
		// spread duration.
		if p.SecurityType != domain.TypeConvertibleBond {
			p.InterestSensitivity = negate(p.OAD)
			p.CreditSensitivity = negate(p.OAC)
		}
		p.RateContrib = weightedContrib(p.InterestSensitivity, p.MarketValuePct)
		p.CreditContrib = weightedContrib(p.CreditSensitivity, p.MarketValuePct)

		p.ImpliedSpreadContrib = weightedContrib(p.ImpliedSpread, p.MarketValuePct)
	}

	if defaulted > 0 {
		c.log.Warn().Int("count", defaulted).Msg("Missing deltas replaced by security-type defaults")
	}
}

// equitySensitivity is delta / (1 + premium/100). Either input missing
// leaves the sensitivity missing.
func equitySensitivity(delta, premiumPct *float64) *float64 {
	if delta == nil || premiumPct == nil {
		return nil
	}
	return domain.Float(*delta / (1 + *premiumPct/100))
}

// contribution weights a sensitivity by the position's market value share,
// treating a missing sensitivity as zero.
func contribution(sensitivity *float64, marketValuePct float64) float64 {
	if sensitivity == nil {
		return 0
	}
	return *sensitivity * marketValuePct
}

// weightedContrib is value * marketValuePct / 100, nil-propagating.
func weightedContrib(value *float64, marketValuePct float64) *float64 {
	if value == nil {
		return nil
	}
	return domain.Float(*value * marketValuePct / 100)
}

func negate(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(-*v)
}
