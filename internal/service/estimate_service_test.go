package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meridian-steel/shop-api/internal/domain"
	"github.com/meridian-steel/shop-api/internal/repository"
	"github.com/meridian-steel/shop-api/internal/testutil"
)

func newEstimateFixture(t *testing.T) (*EstimateService, *gorm.DB) {
	db := testutil.NewTestDB(t)
	estimateRepo := repository.NewEstimateRepository(db)
	ruleRepo := repository.NewLaborRuleRepository(db)
	require.NoError(t, NewLaborRuleService(ruleRepo, zap.NewNop()).SeedDefaults(context.Background()))
	return NewEstimateService(estimateRepo, ruleRepo, nil, zap.NewNop()), db
}

func TestCreateEstimate(t *testing.T) {
	svc, _ := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName: "Acme Tanks",
		ContactName:  "Pat",
		TaxRate:      8,
	}, "user-1", "Test User")
	require.NoError(t, err)

	assert.Equal(t, domain.EstimateStatusDraft, est.Status)
	assert.Equal(t, "user-1", est.CreatedByID)

	reloaded, err := svc.GetByID(ctx, est.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Tanks", reloaded.CustomerName)
	assert.Equal(t, 8.0, reloaded.TaxRate)
}

func TestAddPartComputesTotals(t *testing.T) {
	svc, _ := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName: "Acme Tanks",
		TaxRate:      8,
		TruckingCost: 25,
	}, "user-1", "Test User")
	require.NoError(t, err)

	est, err = svc.AddPart(ctx, est.ID, &domain.PartRequest{
		PartType:              domain.PartTypeFabrication,
		Quantity:              2,
		MaterialSource:        domain.MaterialSourceShop,
		MaterialUnitCost:      100,
		MaterialMarkupPercent: 10,
		RollingCost:           30,
		HasWelding:            true,
		WeldingCost:           50,
		OtherServicesCost:     100, // default 15% markup
	})
	require.NoError(t, err)

	require.Len(t, est.Parts, 1)
	part := est.Parts[0]
	assert.Equal(t, 1, part.PartNumber)
	assert.Equal(t, 220.0, part.MaterialTotal)
	assert.Equal(t, 115.0, part.OtherServicesTotal)
	assert.Equal(t, 415.0, part.PartTotal)

	assert.Equal(t, 415.0, est.PartsSubtotal)
	assert.Equal(t, 33.20, est.TaxAmount)
	assert.Equal(t, 473.20, est.GrandTotal)
}

func TestLaborMinimumAppliedToBreakdown(t *testing.T) {
	svc, _ := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName: "Acme Tanks",
		TaxExempt:    true,
	}, "user-1", "Test User")
	require.NoError(t, err)

	// Plate inside the 24-60" wide band: the $150 rule governs, not the
	// general $125 thin-plate rule.
	est, err = svc.AddPart(ctx, est.ID, &domain.PartRequest{
		PartType:      domain.PartTypePlateRoll,
		Quantity:      1,
		Thickness:     "0.25",
		Width:         "30",
		LaborTotal:    100,
		MaterialTotal: 40,
		PartTotal:     140,
	})
	require.NoError(t, err)

	_, bd, err := svc.Breakdown(ctx, est.ID)
	require.NoError(t, err)

	assert.True(t, bd.MinimumApplies)
	assert.Equal(t, 150.0, bd.HighestMinimum)
	assert.Equal(t, `Plate <= 3/8" (24-60" wide)`, bd.MinimumRuleLabel)
	assert.Equal(t, 150.0, bd.AdjustedLabor)
	assert.Equal(t, 50.0, bd.LaborDifference)

	// subtotal = material 40 + enforced labor 150
	assert.Equal(t, 190.0, est.PartsSubtotal)
	assert.Equal(t, 0.0, est.TaxAmount)
	assert.Equal(t, 190.0, est.GrandTotal)
}

func TestMinimumOverrideSkipsEnforcement(t *testing.T) {
	svc, _ := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName:    "Acme Tanks",
		TaxExempt:       true,
		MinimumOverride: true,
	}, "user-1", "Test User")
	require.NoError(t, err)

	est, err = svc.AddPart(ctx, est.ID, &domain.PartRequest{
		PartType:      domain.PartTypePlateRoll,
		Quantity:      1,
		Thickness:     "0.25",
		Width:         "30",
		LaborTotal:    100,
		MaterialTotal: 40,
		PartTotal:     140,
	})
	require.NoError(t, err)

	_, bd, err := svc.Breakdown(ctx, est.ID)
	require.NoError(t, err)
	assert.False(t, bd.MinimumApplies)

	// The caller-supplied part total stands untouched.
	assert.Equal(t, 140.0, est.PartsSubtotal)
}

func TestRemovePartRenumbers(t *testing.T) {
	svc, _ := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName: "Acme Tanks",
	}, "user-1", "Test User")
	require.NoError(t, err)

	for _, desc := range []string{"first", "second", "third"} {
		est, err = svc.AddPart(ctx, est.ID, &domain.PartRequest{
			PartType:    domain.PartTypeFabrication,
			Quantity:    1,
			Description: desc,
		})
		require.NoError(t, err)
	}
	require.Len(t, est.Parts, 3)

	est, err = svc.RemovePart(ctx, est.ID, est.Parts[1].ID)
	require.NoError(t, err)

	reloaded, err := svc.GetByID(ctx, est.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Parts, 2)
	assert.Equal(t, 1, reloaded.Parts[0].PartNumber)
	assert.Equal(t, "first", reloaded.Parts[0].Description)
	assert.Equal(t, 2, reloaded.Parts[1].PartNumber)
	assert.Equal(t, "third", reloaded.Parts[1].Description)
}

func TestUpdatePartRecomputes(t *testing.T) {
	svc, _ := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName: "Acme Tanks",
		TaxExempt:    true,
	}, "user-1", "Test User")
	require.NoError(t, err)

	est, err = svc.AddPart(ctx, est.ID, &domain.PartRequest{
		PartType:         domain.PartTypeFabrication,
		Quantity:         1,
		MaterialSource:   domain.MaterialSourceShop,
		MaterialUnitCost: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, est.GrandTotal)

	est, err = svc.UpdatePart(ctx, est.ID, est.Parts[0].ID, &domain.PartRequest{
		PartType:         domain.PartTypeFabrication,
		Quantity:         3,
		MaterialSource:   domain.MaterialSourceShop,
		MaterialUnitCost: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, est.GrandTotal)
	assert.Equal(t, 1, est.Parts[0].PartNumber, "part number survives the update")
}

func TestRecomputeIdempotent(t *testing.T) {
	svc, _ := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName:    "Acme Tanks",
		TaxRate:         8.25,
		DiscountPercent: 5,
		TruckingCost:    75,
	}, "user-1", "Test User")
	require.NoError(t, err)

	est, err = svc.AddPart(ctx, est.ID, &domain.PartRequest{
		PartType:          domain.PartTypeFabrication,
		Quantity:          3,
		MaterialSource:    domain.MaterialSourceShop,
		MaterialUnitCost:  33.33,
		RollingCost:       19.99,
		OtherServicesCost: 7.77,
	})
	require.NoError(t, err)

	first := est.GrandTotal
	for i := 0; i < 3; i++ {
		est, err = svc.Recompute(ctx, est.ID)
		require.NoError(t, err)
		assert.Equal(t, first, est.GrandTotal)
	}
}

func TestConvertedEstimateImmutable(t *testing.T) {
	svc, db := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName: "Acme Tanks",
	}, "user-1", "Test User")
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Estimate{}).
		Where("id = ?", est.ID).
		Update("status", domain.EstimateStatusConverted).Error)

	name := "Changed"
	_, err = svc.Update(ctx, est.ID, &domain.UpdateEstimateRequest{CustomerName: &name})
	assert.ErrorIs(t, err, ErrEstimateConverted)

	_, err = svc.AddPart(ctx, est.ID, &domain.PartRequest{
		PartType: domain.PartTypeFabrication,
		Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrEstimateConverted)

	err = svc.Delete(ctx, est.ID)
	assert.ErrorIs(t, err, ErrEstimateConverted)

	_, err = svc.SetStatus(ctx, est.ID, domain.EstimateStatusSent)
	assert.ErrorIs(t, err, ErrEstimateConverted)
}

func TestSetStatusRejectsConverted(t *testing.T) {
	svc, _ := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName: "Acme Tanks",
	}, "user-1", "Test User")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, est.ID, domain.EstimateStatusConverted)
	assert.ErrorIs(t, err, ErrInvalidStatus, "conversion goes through the work-order service")

	est, err = svc.SetStatus(ctx, est.ID, domain.EstimateStatusSent)
	require.NoError(t, err)
	assert.Equal(t, domain.EstimateStatusSent, est.Status)
}

func TestAddPartInvalidType(t *testing.T) {
	svc, _ := newEstimateFixture(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, &domain.CreateEstimateRequest{
		CustomerName: "Acme Tanks",
	}, "user-1", "Test User")
	require.NoError(t, err)

	_, err = svc.AddPart(ctx, est.ID, &domain.PartRequest{
		PartType: domain.PartType("gizmo"),
		Quantity: 1,
	})
	assert.ErrorIs(t, err, ErrInvalidPartType)
}
