package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynconv/analyzer/internal/domain"
)

func TestDefaultClassifications(t *testing.T) {
	c := DefaultClassifications()

	assert.Equal(t, 1, c.RatingOrdinals["AAA"])
	assert.Equal(t, 22, c.RatingOrdinals["D"])
	assert.True(t, c.IsInvestmentGrade("BBB-"))
	assert.False(t, c.IsInvestmentGrade("BB+"))
	assert.Equal(t, 1.0, c.DeltaDefaults[domain.TypeCommonStock])
	assert.Equal(t, 0.0, c.DeltaDefaults[domain.TypeCash])

	_, hasConvertibleDefault := c.DeltaDefaults[domain.TypeConvertibleBond]
	assert.False(t, hasConvertibleDefault, "convertibles must not get a delta default")
}

func TestRatingOrder(t *testing.T) {
	order := DefaultClassifications().RatingOrder()

	require.Len(t, order, 24)
	assert.Equal(t, "AAA", order[0])
	assert.Equal(t, "D", order[21])
	assert.Equal(t, domain.RatingNotRated, order[22])
	assert.Equal(t, domain.RatingCash, order[23])
}

func TestLoadClassifications_EmptyPath(t *testing.T) {
	c, err := LoadClassifications("")
	require.NoError(t, err)
	assert.Equal(t, DefaultClassifications().RatingOrdinals, c.RatingOrdinals)
}

func TestLoadClassifications_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifications.yaml")
	content := `
country_regions:
  BR: Others
sector_styles:
  Diversified: Value
overrides:
  - isin: XS0000000001
    sector: Technology
    country_code: US
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := LoadClassifications(path)
	require.NoError(t, err)

	// Overlay entries are merged on top of the defaults.
	assert.Equal(t, "Others", c.CountryRegions["BR"])
	assert.Equal(t, "Europe", c.CountryRegions["FR"])
	assert.Equal(t, "Value", c.SectorStyles["Diversified"])

	require.Len(t, c.Overrides, 1)
	assert.Equal(t, "XS0000000001", c.Overrides[0].ISIN)
}

func TestApplyOverrides(t *testing.T) {
	class := DefaultClassifications()
	class.Overrides = []Override{
		{ISIN: "XS1", Sector: "Technology", CountryCode: "US"},
	}
	calc := NewCalculator(class, zerolog.Nop())

	positions := []domain.Position{
		{ISIN: "XS1", Sector: "Unknown", CountryCode: "XX", ShortName: "ACME CV"},
		{ISIN: "XS2", Sector: "Energy", CountryCode: "FR"},
	}

	calc.applyOverrides(positions)

	assert.Equal(t, "Technology", positions[0].Sector)
	assert.Equal(t, "US", positions[0].CountryCode)
	assert.Equal(t, "ACME CV", positions[0].ShortName, "fields absent from the override stay put")
	assert.Equal(t, "Energy", positions[1].Sector)
}

func TestClassifyRegionsAndStyles(t *testing.T) {
	calc := newTestCalculator()
	positions := []domain.Position{
		{ISIN: "XS1", CountryCode: "FR", Sector: "Technology"},
		{ISIN: "XS2", CountryCode: "ZZ", Sector: "Weird Sector"},
		{ISIN: "XS3", CountryCode: "", Sector: ""},
	}

	calc.classifyRegions(positions)
	calc.classifyStyles(positions)

	assert.Equal(t, "Europe", positions[0].Region)
	assert.Equal(t, "Growth", positions[0].Style)

	// Unknown and missing keys stay empty; aggregation groups them as Unmapped.
	assert.Empty(t, positions[1].Region)
	assert.Empty(t, positions[1].Style)
	assert.Empty(t, positions[2].Region)
}
