package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-steel/shop-api/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func plateRules() []domain.LaborMinimumRule {
	return []domain.LaborMinimumRule{
		{
			PartType: domain.PartTypePlateRoll,
			Label:    "Plate <= 3/8",
			MaxSize:  fptr(0.375),
			Minimum:  125,
			IsActive: true,
		},
		{
			PartType: domain.PartTypePlateRoll,
			Label:    "Plate <= 3/8, 24-60 wide",
			MaxSize:  fptr(0.375),
			MinWidth: fptr(24),
			MaxWidth: fptr(60),
			Minimum:  150,
			IsActive: true,
		},
		{
			PartType: domain.PartTypePlateRoll,
			Label:    "Plate > 3/8",
			MinSize:  fptr(0.376),
			Minimum:  200,
			IsActive: true,
		},
		{
			PartType: domain.PartTypeAngleRoll,
			Label:    "Angle base",
			Minimum:  175,
			IsActive: true,
		},
	}
}

func TestSelectRulePrefersNarrowerMatch(t *testing.T) {
	part := &domain.Part{
		PartType:  domain.PartTypePlateRoll,
		Thickness: `3/8"`,
		Width:     "30",
	}
	rule := SelectRule(part, plateRules())
	require.NotNil(t, rule)
	assert.Equal(t, "Plate <= 3/8, 24-60 wide", rule.Label)
	assert.Equal(t, 150.0, rule.Minimum)
}

func TestSelectRuleWidthOutsideBand(t *testing.T) {
	part := &domain.Part{
		PartType:  domain.PartTypePlateRoll,
		Thickness: `3/8"`,
		Width:     "72",
	}
	rule := SelectRule(part, plateRules())
	require.NotNil(t, rule)
	assert.Equal(t, "Plate <= 3/8", rule.Label)
	assert.Equal(t, 125.0, rule.Minimum)
}

func TestSelectRuleThickPlate(t *testing.T) {
	part := &domain.Part{
		PartType:  domain.PartTypePlateRoll,
		Thickness: `1/2"`,
		Width:     "48",
	}
	rule := SelectRule(part, plateRules())
	require.NotNil(t, rule)
	assert.Equal(t, "Plate > 3/8", rule.Label)
}

func TestSelectRuleFallbackWhenNothingMatches(t *testing.T) {
	// Unparseable thickness means no constrained rule can match and no
	// unconstrained plate rule exists, so the highest minimum wins.
	rules := []domain.LaborMinimumRule{
		{PartType: domain.PartTypePlateRoll, Label: "thin", MaxSize: fptr(0.375), Minimum: 125, IsActive: true},
		{PartType: domain.PartTypePlateRoll, Label: "thick", MinSize: fptr(0.376), Minimum: 200, IsActive: true},
	}
	part := &domain.Part{PartType: domain.PartTypePlateRoll, Thickness: "heavy"}
	rule := SelectRule(part, rules)
	require.NotNil(t, rule)
	assert.Equal(t, "thick", rule.Label)
}

func TestSelectRuleGeneralBeatsFallback(t *testing.T) {
	rules := []domain.LaborMinimumRule{
		{PartType: domain.PartTypePlateRoll, Label: "base", Minimum: 100, IsActive: true},
		{PartType: domain.PartTypePlateRoll, Label: "thick", MinSize: fptr(1.0), Minimum: 300, IsActive: true},
	}
	part := &domain.Part{PartType: domain.PartTypePlateRoll, Thickness: `1/4"`}
	rule := SelectRule(part, rules)
	require.NotNil(t, rule)
	assert.Equal(t, "base", rule.Label, "unconstrained rule beats a non-matching constrained one")
}

func TestSelectRuleIgnoresOtherTypesAndInactive(t *testing.T) {
	rules := []domain.LaborMinimumRule{
		{PartType: domain.PartTypeAngleRoll, Label: "angle", Minimum: 500, IsActive: true},
		{PartType: domain.PartTypePlateRoll, Label: "retired", Minimum: 999, IsActive: false},
	}
	part := &domain.Part{PartType: domain.PartTypePlateRoll, Thickness: `1/4"`}
	assert.Nil(t, SelectRule(part, rules))
}

func TestSelectRuleTieBreaksByHighestMinimum(t *testing.T) {
	rules := []domain.LaborMinimumRule{
		{PartType: domain.PartTypePlateRoll, Label: "low", MaxSize: fptr(0.5), Minimum: 100, IsActive: true},
		{PartType: domain.PartTypePlateRoll, Label: "high", MaxSize: fptr(0.5), Minimum: 160, IsActive: true},
	}
	part := &domain.Part{PartType: domain.PartTypePlateRoll, Thickness: `3/8"`}
	rule := SelectRule(part, rules)
	require.NotNil(t, rule)
	assert.Equal(t, "high", rule.Label)
}

func TestSelectRuleDeterministic(t *testing.T) {
	part := &domain.Part{PartType: domain.PartTypePlateRoll, Thickness: `3/8"`, Width: "30"}
	rules := plateRules()
	first := SelectRule(part, rules)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SelectRule(part, rules))
	}
}
