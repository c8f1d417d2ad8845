package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynconv/analyzer/internal/domain"
)

func TestEquitySensitivity(t *testing.T) {
	tests := []struct {
		name     string
		delta    *float64
		premium  *float64
		expected *float64
	}{
		{"at-the-money", domain.Float(0.6), domain.Float(0), domain.Float(0.6)},
		{"positive premium dampens", domain.Float(0.5), domain.Float(25), domain.Float(0.4)},
		{"missing delta", nil, domain.Float(10), nil},
		{"missing premium", domain.Float(0.5), nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := equitySensitivity(tt.delta, tt.premium)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 1e-9)
		})
	}
}

func TestComputeSensitivities_DeltaDefaults(t *testing.T) {
	calc := newTestCalculator()
	positions := []domain.Position{
		{ISIN: "EQ1", SecurityType: domain.TypeCommonStock, MarketValuePct: 2, PremiumPct: domain.Float(0)},
		{ISIN: "WT1", SecurityType: domain.TypeWarrant, MarketValuePct: 1, PremiumPct: domain.Float(0)},
		{ISIN: "CB1", SecurityType: domain.TypeCorporateBond, MarketValuePct: 3, PremiumPct: domain.Float(0)},
		{ISIN: "CV1", SecurityType: domain.TypeConvertibleBond, MarketValuePct: 4, PremiumPct: domain.Float(10)},
	}

	calc.computeSensitivities(positions)

	// Equities and warrants default to full participation.
	require.NotNil(t, positions[0].Delta)
	assert.Equal(t, 1.0, *positions[0].Delta)
	require.NotNil(t, positions[1].Delta)
	assert.Equal(t, 1.0, *positions[1].Delta)

	// Straight bonds default to zero equity exposure.
	require.NotNil(t, positions[2].Delta)
	assert.Equal(t, 0.0, *positions[2].Delta)
	assert.Equal(t, 0.0, positions[2].EquityContribution)

	// Convertibles have no default: missing delta stays missing and its
	// contribution is zero.
	assert.Nil(t, positions[3].Delta)
	assert.Nil(t, positions[3].EquitySensitivity)
	assert.Equal(t, 0.0, positions[3].EquityContribution)
}

func TestComputeSensitivities_Contribution(t *testing.T) {
	calc := newTestCalculator()
	positions := []domain.Position{
		{
			ISIN:           "CV1",
			SecurityType:   domain.TypeConvertibleBond,
			MarketValuePct: 2.5,
			Delta:          domain.Float(0.5),
			PremiumPct:     domain.Float(25),
		},
	}

	calc.computeSensitivities(positions)

	p := positions[0]
	require.NotNil(t, p.EquitySensitivity)
	assert.InDelta(t, 0.4, *p.EquitySensitivity, 1e-9)
	assert.InDelta(t, 1.0, p.EquityContribution, 1e-9)
}

func TestComputeSensitivities_RateAndCredit(t *testing.T) {
	calc := newTestCalculator()
	positions := []domain.Position{
		{
			ISIN:           "CB1",
			SecurityType:   domain.TypeCorporateBond,
			MarketValuePct: 10,
			OAD:            domain.Float(4.5),
			OAC:            domain.Float(3.2),
			ModDurToWorst:  domain.Float(4.4),
		},
		{
			ISIN:                "CV1",
			SecurityType:        domain.TypeConvertibleBond,
			MarketValuePct:      10,
			OAD:                 domain.Float(4.5),
			InterestSensitivity: domain.Float(-2.1),
			CreditSensitivity:   domain.Float(-1.7),
			EffectiveDuration:   domain.Float(3.9),
		},
	}

	calc.computeSensitivities(positions)

	// Non-convertibles derive from negated option-adjusted durations.
	cb := positions[0]
	require.NotNil(t, cb.InterestSensitivity)
	assert.InDelta(t, -4.5, *cb.InterestSensitivity, 1e-9)
	require.NotNil(t, cb.CreditSensitivity)
	assert.InDelta(t, -3.2, *cb.CreditSensitivity, 1e-9)
	require.NotNil(t, cb.EffectiveDuration)
	assert.InDelta(t, 4.4, *cb.EffectiveDuration, 1e-9)

	// Convertibles keep the model fields untouched.
	cv := positions[1]
	require.NotNil(t, cv.InterestSensitivity)
	assert.InDelta(t, -2.1, *cv.InterestSensitivity, 1e-9)
	require.NotNil(t, cv.EffectiveDuration)
	assert.InDelta(t, 3.9, *cv.EffectiveDuration, 1e-9)

	require.NotNil(t, cv.RateContrib)
	assert.InDelta(t, -0.21, *cv.RateContrib, 1e-9)
}

func TestWeightedContrib_NilPropagates(t *testing.T) {
	assert.Nil(t, weightedContrib(nil, 10))

	got := weightedContrib(domain.Float(4), 25)
	require.NotNil(t, got)
	assert.InDelta(t, 1.0, *got, 1e-9)
}
