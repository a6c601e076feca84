package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-steel/shop-api/internal/domain"
)

func minimumRules() []domain.LaborMinimumRule {
	return []domain.LaborMinimumRule{
		{PartType: domain.PartTypePlateRoll, Label: "Plate <= 3/8", MaxSize: fptr(0.375), Minimum: 125, IsActive: true},
		{PartType: domain.PartTypePlateRoll, Label: "Plate <= 3/8, 24-60 wide", MaxSize: fptr(0.375), MinWidth: fptr(24), MaxWidth: fptr(60), Minimum: 150, IsActive: true},
		{PartType: domain.PartTypePlateRoll, Label: "Plate > 3/8", MinSize: fptr(0.376), Minimum: 200, IsActive: true},
	}
}

func TestComputeTotalsMinimumApplies(t *testing.T) {
	est := &domain.Estimate{
		Parts: []domain.Part{
			{
				PartType:   domain.PartTypePlateRoll,
				Quantity:   1,
				Thickness:  `3/8"`,
				Width:      "30",
				LaborTotal: 80,
				PartTotal:  80,
			},
		},
	}

	bd := ComputeTotals(est, minimumRules(), DefaultRushConfig())

	assert.True(t, bd.MinimumApplies)
	assert.Equal(t, 150.0, bd.HighestMinimum)
	assert.Equal(t, "Plate <= 3/8, 24-60 wide", bd.MinimumRuleLabel)
	assert.Equal(t, 150.0, bd.AdjustedLabor)
	assert.Equal(t, 70.0, bd.LaborDifference)
	assert.Equal(t, 150.0, est.PartsSubtotal)
	assert.Equal(t, 150.0, est.GrandTotal)
}

func TestComputeTotalsMinimumNoOpWhenLaborCovers(t *testing.T) {
	est := &domain.Estimate{
		Parts: []domain.Part{
			{PartType: domain.PartTypePlateRoll, Quantity: 1, Thickness: `3/8"`, LaborTotal: 300, PartTotal: 300},
		},
	}
	bd := ComputeTotals(est, minimumRules(), DefaultRushConfig())

	assert.False(t, bd.MinimumApplies)
	assert.Equal(t, 300.0, bd.AdjustedLabor)
	assert.Equal(t, 0.0, bd.LaborDifference)
	assert.Equal(t, 300.0, est.PartsSubtotal)
}

func TestComputeTotalsMinimumOverride(t *testing.T) {
	est := &domain.Estimate{
		MinimumOverride: true,
		Parts: []domain.Part{
			{PartType: domain.PartTypePlateRoll, Quantity: 1, Thickness: `3/8"`, LaborTotal: 80, PartTotal: 80},
		},
	}
	bd := ComputeTotals(est, minimumRules(), DefaultRushConfig())

	assert.False(t, bd.MinimumApplies)
	assert.Equal(t, 80.0, est.PartsSubtotal)
}

func TestComputeTotalsMaterialRounding(t *testing.T) {
	est := &domain.Estimate{
		Parts: []domain.Part{
			{
				PartType:              domain.PartTypePlateRoll,
				Quantity:              2,
				Thickness:             `1/4"`,
				LaborTotal:            40,
				MaterialTotal:         101.30,
				MaterialMarkupPercent: 10,
				MaterialRounding:      domain.RoundingFiveDollar,
				PartTotal:             300,
			},
		},
	}
	bd := ComputeTotals(est, minimumRules(), DefaultRushConfig())

	// 101.30 * 1.1 = 111.43 -> ceil to $5 = 115 -> x2 = 230
	assert.Equal(t, 230.0, bd.TotalMaterial)
	assert.True(t, bd.MinimumApplies, "labor 80 below the 125 unconstrained-width tier")
	// 0 generic + 230 material + 125 adjusted labor
	assert.Equal(t, 355.0, est.PartsSubtotal)
}

func TestComputeTotalsMixedGenericAndEachPriced(t *testing.T) {
	est := &domain.Estimate{
		Parts: []domain.Part{
			{PartType: domain.PartTypePlateRoll, Quantity: 1, Thickness: `1/2"`, LaborTotal: 500, PartTotal: 650},
			{
				PartType:         domain.PartTypeFabrication,
				Quantity:         1,
				MaterialSource:   domain.MaterialSourceShop,
				MaterialUnitCost: 100,
				RollingCost:      50,
			},
		},
	}
	bd := ComputeTotals(est, minimumRules(), DefaultRushConfig())

	assert.False(t, bd.MinimumApplies, "500 labor exceeds the 200 thick-plate minimum")
	// each-priced partTotal 650 + generic (100 material + 50 rolling)
	assert.Equal(t, 800.0, est.PartsSubtotal)
}

func TestComputeTotalsRushPercentTier(t *testing.T) {
	est := &domain.Estimate{
		Parts: []domain.Part{
			{PartType: domain.PartTypeFabrication, Quantity: 1, MaterialSource: domain.MaterialSourceShop, MaterialUnitCost: 1000},
			{
				PartType: domain.PartTypeRushService,
				Quantity: 1,
				Details: domain.PartDetails{Rush: &domain.RushDetails{
					Mode:         domain.RushModePercent,
					Tier:         "priority",
					EmergencyDay: domain.EmergencyDaySaturdayNight,
				}},
			},
		},
	}
	bd := ComputeTotals(est, minimumRules(), DefaultRushConfig())

	assert.Equal(t, 200.0, bd.ExpediteFee, "20% of 1000")
	assert.Equal(t, 800.0, bd.EmergencyFee)
	assert.Equal(t, 2000.0, est.PartsSubtotal)
	assert.Equal(t, 1000.0, est.Parts[1].PartTotal, "rush line carries its own surcharge total")
}

func TestComputeTotalsRushFixedAmount(t *testing.T) {
	est := &domain.Estimate{
		Parts: []domain.Part{
			{PartType: domain.PartTypeFabrication, Quantity: 1, MaterialSource: domain.MaterialSourceShop, MaterialUnitCost: 500},
			{
				PartType: domain.PartTypeRushService,
				Quantity: 1,
				Details:  domain.PartDetails{Rush: &domain.RushDetails{Mode: domain.RushModeFixed, Amount: 350}},
			},
		},
	}
	bd := ComputeTotals(est, minimumRules(), DefaultRushConfig())

	assert.Equal(t, 350.0, bd.ExpediteFee)
	assert.Equal(t, 0.0, bd.EmergencyFee)
	assert.Equal(t, 850.0, est.PartsSubtotal)
}

func TestComputeTotalsDiscountPercentWins(t *testing.T) {
	est := &domain.Estimate{
		DiscountPercent: 10,
		DiscountAmount:  50,
		Parts: []domain.Part{
			{PartType: domain.PartTypeFabrication, Quantity: 1, MaterialSource: domain.MaterialSourceShop, MaterialUnitCost: 1000},
		},
	}
	bd := ComputeTotals(est, nil, DefaultRushConfig())

	assert.Equal(t, 100.0, bd.DiscountApplied)
	assert.Equal(t, 900.0, est.GrandTotal)
}

func TestComputeTotalsFixedDiscount(t *testing.T) {
	est := &domain.Estimate{
		DiscountAmount: 50,
		Parts: []domain.Part{
			{PartType: domain.PartTypeFabrication, Quantity: 1, MaterialSource: domain.MaterialSourceShop, MaterialUnitCost: 1000},
		},
	}
	bd := ComputeTotals(est, nil, DefaultRushConfig())

	assert.Equal(t, 50.0, bd.DiscountApplied)
	assert.Equal(t, 950.0, est.GrandTotal)
}

func TestComputeTotalsDiscountMayGoNegative(t *testing.T) {
	est := &domain.Estimate{
		DiscountAmount: 500,
		Parts: []domain.Part{
			{PartType: domain.PartTypeFabrication, Quantity: 1, MaterialSource: domain.MaterialSourceShop, MaterialUnitCost: 100},
		},
	}
	ComputeTotals(est, nil, DefaultRushConfig())
	assert.Equal(t, -400.0, est.GrandTotal, "negative totals pass through for caller-level validation")
}

func TestComputeTotalsTaxExempt(t *testing.T) {
	est := &domain.Estimate{
		TaxRate:   9.75,
		TaxExempt: true,
		Parts: []domain.Part{
			{PartType: domain.PartTypeFabrication, Quantity: 1, MaterialSource: domain.MaterialSourceShop, MaterialUnitCost: 1000},
		},
	}
	ComputeTotals(est, nil, DefaultRushConfig())

	assert.Equal(t, 0.0, est.TaxAmount)
	assert.Equal(t, 1000.0, est.GrandTotal)
}

func TestComputeTotalsTaxAndTrucking(t *testing.T) {
	est := &domain.Estimate{
		TaxRate:      9.75,
		TruckingCost: 150,
		Parts: []domain.Part{
			{PartType: domain.PartTypeFabrication, Quantity: 1, MaterialSource: domain.MaterialSourceShop, MaterialUnitCost: 1000},
		},
	}
	ComputeTotals(est, nil, DefaultRushConfig())

	assert.Equal(t, 97.50, est.TaxAmount)
	assert.Equal(t, 1247.50, est.GrandTotal)
}

func TestComputeTotalsIdempotent(t *testing.T) {
	est := &domain.Estimate{
		TaxRate:         8.25,
		DiscountPercent: 5,
		TruckingCost:    75,
		Parts: []domain.Part{
			{PartType: domain.PartTypePlateRoll, Quantity: 2, Thickness: `3/8"`, Width: "30", LaborTotal: 33.33, MaterialTotal: 47.77, MaterialMarkupPercent: 12.5, MaterialRounding: domain.RoundingDollar, PartTotal: 123.45},
			{PartType: domain.PartTypeFabrication, Quantity: 3, MaterialSource: domain.MaterialSourceShop, MaterialUnitCost: 19.99, MaterialMarkupPercent: 17, RollingCost: 42.42, HasCutting: true, CuttingCost: 13.13, OtherServicesCost: 9.99},
			{PartType: domain.PartTypeRushService, Quantity: 1, Details: domain.PartDetails{Rush: &domain.RushDetails{Mode: domain.RushModePercent, Percent: 12.5, EmergencyDay: domain.EmergencyDaySunday}}},
		},
	}

	ComputeTotals(est, minimumRules(), DefaultRushConfig())
	first := *est
	ComputeTotals(est, minimumRules(), DefaultRushConfig())

	assert.Equal(t, first.PartsSubtotal, est.PartsSubtotal)
	assert.Equal(t, first.TaxAmount, est.TaxAmount)
	assert.Equal(t, first.GrandTotal, est.GrandTotal)
}

func TestComputeTotalsEmptyEstimate(t *testing.T) {
	est := &domain.Estimate{TaxRate: 9.75}
	bd := ComputeTotals(est, minimumRules(), DefaultRushConfig())

	assert.False(t, bd.MinimumApplies)
	assert.Equal(t, 0.0, est.PartsSubtotal)
	assert.Equal(t, 0.0, est.GrandTotal)
}
