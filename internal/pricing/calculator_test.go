package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meridian-steel/shop-api/internal/domain"
)

func TestPricePartGenericShopMaterial(t *testing.T) {
	part := &domain.Part{
		PartType:              domain.PartTypeFabrication,
		Quantity:              2,
		MaterialSource:        domain.MaterialSourceShop,
		MaterialUnitCost:      100,
		MaterialMarkupPercent: 25,
		RollingCost:           80,
		HasDrilling:           true,
		DrillingCost:          40,
		HasWelding:            false,
		WeldingCost:           60,
		OtherServicesCost:     100,
	}
	PricePart(part)

	// 100 * 2 * 1.25
	assert.Equal(t, 250.0, part.MaterialTotal)
	// default 15% markup
	assert.Equal(t, 115.0, part.OtherServicesTotal)
	// 250 + 80 rolling + 115 other + 40 drilling; welding flag off
	assert.Equal(t, 485.0, part.PartTotal)
}

func TestPricePartCustomerMaterialIsFree(t *testing.T) {
	part := &domain.Part{
		PartType:              domain.PartTypeOther,
		Quantity:              3,
		MaterialSource:        domain.MaterialSourceCustomer,
		MaterialUnitCost:      500,
		MaterialMarkupPercent: 25,
		RollingCost:           120,
	}
	PricePart(part)

	assert.Equal(t, 0.0, part.MaterialTotal)
	assert.Equal(t, 120.0, part.PartTotal)
}

func TestPricePartExplicitOtherServicesMarkup(t *testing.T) {
	markup := 0.0
	part := &domain.Part{
		PartType:          domain.PartTypeFabrication,
		Quantity:          1,
		MaterialSource:    domain.MaterialSourceCustomer,
		OtherServicesCost: 200,

		OtherServicesMarkupPercent: &markup,
	}
	PricePart(part)

	assert.Equal(t, 200.0, part.OtherServicesTotal, "explicit zero markup must not fall back to the default")
	assert.Equal(t, 200.0, part.PartTotal)
}

func TestPricePartDoesNotTouchEachPriced(t *testing.T) {
	for _, pt := range []domain.PartType{
		domain.PartTypePlateRoll,
		domain.PartTypeAngleRoll,
		domain.PartTypeConeRoll,
		domain.PartTypeBeamRoll,
		domain.PartTypePipeRoll,
		domain.PartTypeRushService,
	} {
		part := &domain.Part{
			PartType:         pt,
			Quantity:         4,
			MaterialSource:   domain.MaterialSourceShop,
			MaterialUnitCost: 999,
			MaterialTotal:    1234.56,
			PartTotal:        4321.99,
		}
		PricePart(part)
		assert.Equal(t, 1234.56, part.MaterialTotal, "type %s", pt)
		assert.Equal(t, 4321.99, part.PartTotal, "type %s", pt)
	}
}

func TestPricePartZeroQuantityTreatedAsOne(t *testing.T) {
	part := &domain.Part{
		PartType:         domain.PartTypeFabrication,
		Quantity:         0,
		MaterialSource:   domain.MaterialSourceShop,
		MaterialUnitCost: 50,
	}
	PricePart(part)
	assert.Equal(t, 50.0, part.MaterialTotal)
}

func TestPricePartRoundsToCents(t *testing.T) {
	part := &domain.Part{
		PartType:              domain.PartTypeFabrication,
		Quantity:              1,
		MaterialSource:        domain.MaterialSourceShop,
		MaterialUnitCost:      33.33,
		MaterialMarkupPercent: 10,
	}
	PricePart(part)
	// 33.33 * 1.1 = 36.663 -> 36.66
	assert.Equal(t, 36.66, part.MaterialTotal)
	assert.Equal(t, 36.66, part.PartTotal)
}
