package pricing

import (
	"math"

	"github.com/meridian-steel/shop-api/internal/domain"
)

// DefaultOtherServicesMarkupPercent applies when a part carries outside
// services with no explicit markup.
const DefaultOtherServicesMarkupPercent = 15.0

// round2 rounds a monetary value to cents.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundUpToDollar rounds up to the next whole dollar.
func roundUpToDollar(v float64) float64 {
	return math.Ceil(v)
}

// roundUpToFiveDollars rounds up to the next $5 increment.
func roundUpToFiveDollars(v float64) float64 {
	return math.Ceil(v/5) * 5
}

func applyRounding(v float64, policy domain.RoundingPolicy) float64 {
	switch policy {
	case domain.RoundingDollar:
		return roundUpToDollar(v)
	case domain.RoundingFiveDollar:
		return roundUpToFiveDollars(v)
	default:
		return v
	}
}

// PricePart computes and writes a generic part's material, other-services,
// and part totals. Each-priced parts arrive with PartTotal already set by
// their own specialized logic and are left untouched; rush-service lines are
// priced by the aggregator.
func PricePart(part *domain.Part) {
	switch part.PartType.Model() {
	case domain.PricingModelCallerSupplied, domain.PricingModelSurcharge:
		return
	case domain.PricingModelComputed:
	}

	qty := part.Quantity
	if qty < 1 {
		qty = 1
	}

	var materialTotal float64
	if part.MaterialSource == domain.MaterialSourceShop {
		materialTotal = part.MaterialUnitCost * float64(qty) * (1 + part.MaterialMarkupPercent/100)
	}

	var services float64
	if part.HasDrilling {
		services += part.DrillingCost
	}
	if part.HasCutting {
		services += part.CuttingCost
	}
	if part.HasFitting {
		services += part.FittingCost
	}
	if part.HasWelding {
		services += part.WeldingCost
	}

	markup := DefaultOtherServicesMarkupPercent
	if part.OtherServicesMarkupPercent != nil {
		markup = *part.OtherServicesMarkupPercent
	}
	otherServicesTotal := part.OtherServicesCost * (1 + markup/100)

	part.MaterialTotal = round2(materialTotal)
	part.OtherServicesTotal = round2(otherServicesTotal)
	part.PartTotal = round2(part.MaterialTotal + part.RollingCost + part.OtherServicesTotal + services)
}
