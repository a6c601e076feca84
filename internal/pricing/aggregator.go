package pricing

import (
	"github.com/meridian-steel/shop-api/internal/domain"
)

// RushConfig holds the expedite percent tiers and the per-day emergency fee
// schedule. Both are configuration, not algorithm: ops adjusts them without
// a code change.
type RushConfig struct {
	ExpediteTiers map[string]float64
	EmergencyFees map[domain.EmergencyDay]float64
}

// DefaultRushConfig returns the shop's standing rush schedule.
func DefaultRushConfig() RushConfig {
	return RushConfig{
		ExpediteTiers: map[string]float64{
			"standard": 10,
			"priority": 20,
			"critical": 35,
		},
		EmergencyFees: map[domain.EmergencyDay]float64{
			domain.EmergencyDaySaturday:      600,
			domain.EmergencyDaySaturdayNight: 800,
			domain.EmergencyDaySunday:        600,
			domain.EmergencyDaySundayNight:   800,
		},
	}
}

// ExpeditePercent resolves the percent for a rush line: a named tier wins
// over a custom percent.
func (c RushConfig) ExpeditePercent(d *domain.RushDetails) float64 {
	if d == nil {
		return 0
	}
	if d.Tier != "" {
		if pct, ok := c.ExpediteTiers[d.Tier]; ok {
			return pct
		}
		return 0
	}
	return d.Percent
}

// EmergencyFee resolves the fixed weekend fee for a rush line.
func (c RushConfig) EmergencyFee(d *domain.RushDetails) float64 {
	if d == nil || d.EmergencyDay == domain.EmergencyDayNone {
		return 0
	}
	return c.EmergencyFees[d.EmergencyDay]
}

// ComputeTotals prices every generic part, evaluates the labor minimum over
// the each-priced parts, applies the rush surcharge, discount, tax, and
// trucking, and writes PartsSubtotal, TaxAmount, and GrandTotal back onto the
// estimate. It is idempotent: recomputing from unchanged part data reproduces
// the same cent-exact totals, which callers rely on to self-heal stored
// totals after edits.
func ComputeTotals(est *domain.Estimate, rules []domain.LaborMinimumRule, rush RushConfig) domain.TotalsBreakdown {
	var bd domain.TotalsBreakdown

	var genericSum float64
	var rushPart *domain.Part

	for i := range est.Parts {
		part := &est.Parts[i]
		qty := part.Quantity
		if qty < 1 {
			qty = 1
		}

		switch part.PartType.Model() {
		case domain.PricingModelSurcharge:
			if rushPart == nil {
				rushPart = part
			}

		case domain.PricingModelCallerSupplied:
			bd.TotalLabor += part.LaborTotal * float64(qty)

			materialEach := part.MaterialTotal * (1 + part.MaterialMarkupPercent/100)
			materialEach = applyRounding(materialEach, part.MaterialRounding)
			bd.TotalMaterial += materialEach * float64(qty)

			if rule := SelectRule(part, rules); rule != nil && rule.Minimum > bd.HighestMinimum {
				bd.HighestMinimum = rule.Minimum
				bd.MinimumRuleLabel = rule.Label
			}

		case domain.PricingModelComputed:
			PricePart(part)
			genericSum += part.PartTotal
		}
	}

	bd.TotalLabor = round2(bd.TotalLabor)
	bd.TotalMaterial = round2(bd.TotalMaterial)

	bd.MinimumApplies = !est.MinimumOverride &&
		bd.HighestMinimum > 0 &&
		bd.TotalLabor > 0 &&
		bd.TotalLabor < bd.HighestMinimum

	if bd.MinimumApplies {
		bd.AdjustedLabor = bd.HighestMinimum
		bd.LaborDifference = round2(bd.HighestMinimum - bd.TotalLabor)
	} else {
		bd.AdjustedLabor = bd.TotalLabor
	}

	var subtotal float64
	if bd.MinimumApplies {
		subtotal = genericSum + bd.TotalMaterial + bd.AdjustedLabor
	} else {
		for i := range est.Parts {
			part := &est.Parts[i]
			if part.PartType.Model() == domain.PricingModelSurcharge {
				continue
			}
			subtotal += part.PartTotal
		}
	}
	subtotal = round2(subtotal)

	// The expedite percent is taken against the post-minimum subtotal so a
	// rush on a minimum-charged job pays its share of the enforced floor.
	if rushPart != nil {
		details := rushPart.Details.Rush
		var expedite float64
		if details != nil && details.Mode == domain.RushModeFixed {
			expedite = details.Amount
		} else {
			expedite = subtotal * rush.ExpeditePercent(details) / 100
		}
		bd.ExpediteFee = round2(expedite)
		bd.EmergencyFee = round2(rush.EmergencyFee(details))

		rushPart.PartTotal = round2(bd.ExpediteFee + bd.EmergencyFee)
		rushPart.MaterialTotal = 0
		rushPart.OtherServicesTotal = 0

		subtotal = round2(subtotal + bd.ExpediteFee + bd.EmergencyFee)
	}

	// Percent discount takes precedence over a fixed amount when both are set.
	if est.DiscountPercent > 0 {
		bd.DiscountApplied = round2(subtotal * est.DiscountPercent / 100)
	} else if est.DiscountAmount > 0 {
		bd.DiscountApplied = round2(est.DiscountAmount)
	}
	afterDiscount := round2(subtotal - bd.DiscountApplied)

	var taxAmount float64
	if !est.TaxExempt {
		taxAmount = round2(afterDiscount * est.TaxRate / 100)
	}

	est.PartsSubtotal = subtotal
	est.TaxAmount = taxAmount
	est.GrandTotal = round2(afterDiscount + taxAmount + est.TruckingCost)

	return bd
}
