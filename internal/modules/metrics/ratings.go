package metrics

import (
	"strings"

	"github.com/dynconv/analyzer/internal/domain"
)

// Rating values that count as "no rating" wherever they come from.
var invalidRatings = map[string]bool{
	"":     true,
	"NR":   true,
	"#N/A": true,
	"NAN":  true,
	"NONE": true,
}

// isValidRating reports whether a rating field carries a usable value.
func isValidRating(val string) bool {
	return !invalidRatings[strings.ToUpper(strings.TrimSpace(val))]
}

// resolveRating runs the priority cascade for one row:
// S&P issue rating, then S&P long-term foreign currency issuer rating, then
// the internal analyst rating, then "NR".
func resolveRating(p *domain.Position) string {
	if isValidRating(p.SPRating) {
		return strings.TrimSpace(p.SPRating)
	}
	if isValidRating(p.SPForeignRating) {
		return strings.TrimSpace(p.SPForeignRating)
	}
	if isValidRating(p.InternalRating) {
		return strings.TrimSpace(p.InternalRating)
	}
	return domain.RatingNotRated
}

// resolveRatings assigns the adjusted rating, its ordinal and the credit
// category for every row. Cash positions are forced to the CASH label after
// the cascade, whatever their rating sources say.
func (c *Calculator) resolveRatings(positions []domain.Position) {
	var unrated []string

	for i := range positions {
		p := &positions[i]

		p.AdjustedRating = resolveRating(p)
		if p.SecurityType == domain.TypeCash {
			p.AdjustedRating = domain.RatingCash
		}

		if ord, ok := c.class.RatingOrdinals[p.AdjustedRating]; ok {
			o := ord
			p.RatingOrdinal = &o
		} else {
			p.RatingOrdinal = nil
		}

		p.CreditCategory = c.creditCategory(p)

		if p.AdjustedRating == domain.RatingNotRated {
			unrated = append(unrated, p.ISIN)
		}
	}

	if len(unrated) > 0 {
		c.log.Warn().
			Int("count", len(unrated)).
			Strs("isins", unrated).
			Msg("Positions left unrated after cascade")
	}
}

// creditCategory splits positions into Cash / Investment Grade / High Yield /
// Not Rated from the resolved rating and security type.
func (c *Calculator) creditCategory(p *domain.Position) string {
	switch {
	case p.SecurityType == domain.TypeCash:
		return "Cash"
	case c.class.IsInvestmentGrade(p.AdjustedRating):
		return "Investment Grade"
	case p.AdjustedRating != domain.RatingNotRated && p.AdjustedRating != "D":
		return "High Yield"
	default:
		return "Not Rated"
	}
}
