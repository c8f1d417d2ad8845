// Package metrics derives per-position analytics: resolved credit ratings,
// equity/rate/credit sensitivities, bucket assignments and geographic/style
// classification.
package metrics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dynconv/analyzer/internal/domain"
)

// Override is a manual per-ISIN correction applied after the merge, for
// securities whose custodian reference data is known to be wrong.
type Override struct {
	ISIN         string `yaml:"isin"`
	ShortName    string `yaml:"short_name,omitempty"`
	Sector       string `yaml:"sector,omitempty"`
	CountryCode  string `yaml:"country_code,omitempty"`
	EquityTicker string `yaml:"equity_ticker,omitempty"`
}

// Classifications holds the immutable lookup tables the calculator is
// constructed with. Built-in defaults can be overridden from a YAML file.
type Classifications struct {
	RatingOrdinals  map[string]int     `yaml:"rating_ordinals"`
	InvestmentGrade []string           `yaml:"investment_grade"`
	DeltaDefaults   map[string]float64 `yaml:"delta_defaults"`
	CountryRegions  map[string]string  `yaml:"country_regions"`
	SectorStyles    map[string]string  `yaml:"sector_styles"`
	Overrides       []Override         `yaml:"overrides"`

	igSet map[string]bool
}

// DefaultClassifications returns the built-in lookup tables.
func DefaultClassifications() Classifications {
	c := Classifications{
		RatingOrdinals: map[string]int{
			"AAA": 1, "AA+": 2, "AA": 3, "AA-": 4, "A+": 5, "A": 6, "A-": 7,
			"BBB+": 8, "BBB": 9, "BBB-": 10, "BB+": 11, "BB": 12, "BB-": 13,
			"B+": 14, "B": 15, "B-": 16, "CCC+": 17, "CCC": 18, "CCC-": 19,
			"CC": 20, "C": 21, "D": 22,
		},
		InvestmentGrade: []string{
			"AAA", "AA+", "AA", "AA-", "A+", "A", "A-", "BBB+", "BBB", "BBB-",
		},
		DeltaDefaults: map[string]float64{
			domain.TypeCommonStock:     1,
			domain.TypeWarrant:         1,
			domain.TypeCorporateBond:   0,
			domain.TypeCurrencyForward: 0,
			domain.TypeOpenEndFund:     0,
			domain.TypeCash:            0,
		},
		CountryRegions: map[string]string{
			"BE": "Europe", "CH": "Europe", "DE": "Europe", "ES": "Europe",
			"EU": "Europe", "FR": "Europe", "GB": "Europe", "IT": "Europe",
			"LU": "Europe", "NL": "Europe",
			"CA": "America", "US": "America",
			"JP": "Japan",
			"CN": "Asia Ex-Jap", "HK": "Asia Ex-Jap", "KR": "Asia Ex-Jap",
			"NZ": "Asia Ex-Jap", "TW": "Asia Ex-Jap",
			"MX": "Others",
		},
		SectorStyles: map[string]string{
			"Technology":             "Growth",
			"HealthCare":             "Growth",
			"Communications":         "Growth",
			"Basic Materials":        "Cyclical",
			"Industrial":             "Cyclical",
			"Energy":                 "Cyclical",
			"Consumer, Cyclical":     "Cyclical",
			"Financial":              "Value",
			"Utilities":              "Value",
			"Consumer, Non-cyclical": "Value",
		},
	}
	c.buildSets()
	return c
}

// LoadClassifications returns the defaults merged with overrides from the
// given YAML file. An empty path returns the defaults unchanged.
func LoadClassifications(path string) (Classifications, error) {
	c := DefaultClassifications()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Classifications{}, fmt.Errorf("failed to read classifications file: %w", err)
	}

	var overlay Classifications
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Classifications{}, fmt.Errorf("failed to parse classifications file: %w", err)
	}

	if len(overlay.RatingOrdinals) > 0 {
		c.RatingOrdinals = overlay.RatingOrdinals
	}
	if len(overlay.InvestmentGrade) > 0 {
		c.InvestmentGrade = overlay.InvestmentGrade
	}
	for k, v := range overlay.DeltaDefaults {
		c.DeltaDefaults[k] = v
	}
	for k, v := range overlay.CountryRegions {
		c.CountryRegions[k] = v
	}
	for k, v := range overlay.SectorStyles {
		c.SectorStyles[k] = v
	}
	c.Overrides = overlay.Overrides

	c.buildSets()
	return c, nil
}

func (c *Classifications) buildSets() {
	c.igSet = make(map[string]bool, len(c.InvestmentGrade))
	for _, r := range c.InvestmentGrade {
		c.igSet[r] = true
	}
}

// IsInvestmentGrade reports whether the rating label is in the IG set.
func (c Classifications) IsInvestmentGrade(rating string) bool {
	return c.igSet[rating]
}

// RatingOrder returns rating labels sorted by ordinal, ascending. Used to
// order report tables the way a rating ladder reads.
func (c Classifications) RatingOrder() []string {
	order := make([]string, 0, len(c.RatingOrdinals))
	byOrdinal := make(map[int]string, len(c.RatingOrdinals))
	maxOrd := 0
	for label, ord := range c.RatingOrdinals {
		byOrdinal[ord] = label
		if ord > maxOrd {
			maxOrd = ord
		}
	}
	for ord := 1; ord <= maxOrd; ord++ {
		if label, ok := byOrdinal[ord]; ok {
			order = append(order, label)
		}
	}
	return append(order, domain.RatingNotRated, domain.RatingCash)
}
