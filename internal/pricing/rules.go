package pricing

import (
	"github.com/meridian-steel/shop-api/internal/domain"
)

// PartDimensions are the parsed measurements a rule is evaluated against.
// Size is the type-appropriate primary dimension (thickness for plate,
// section depth for angle and beam); Width is the second axis where the
// type has one.
type PartDimensions struct {
	Size  float64
	Width float64
}

// DimensionsFor parses the rule-relevant measurements out of a part's
// free-form size fields.
func DimensionsFor(part *domain.Part) PartDimensions {
	var d PartDimensions
	switch part.PartType {
	case domain.PartTypePlateRoll, domain.PartTypeConeRoll:
		d.Size = ParseDimension(part.Thickness)
		d.Width = ParseDimension(part.Width)
	case domain.PartTypeAngleRoll, domain.PartTypeBeamRoll:
		d.Size = ParseDimension(part.Thickness)
		if d.Size == 0 {
			d.Size = ParseDimension(part.Width)
		}
	case domain.PartTypePipeRoll:
		d.Size = ParseDimension(part.OutsideDiameter)
		if d.Size == 0 {
			d.Size = ParseDimension(part.InsideDiameter)
		}
	default:
		d.Size = ParseDimension(part.Thickness)
		d.Width = ParseDimension(part.Width)
	}
	return d
}

func constraintActive(v *float64) bool {
	return v != nil && *v > 0
}

func hasActiveConstraint(r *domain.LaborMinimumRule) bool {
	return constraintActive(r.MinSize) || constraintActive(r.MaxSize) ||
		constraintActive(r.MinWidth) || constraintActive(r.MaxWidth)
}

// ruleMatches reports whether every active constraint on the rule is
// satisfied by the part's dimensions. A constrained axis requires the part's
// measurement to be parseable (> 0).
func ruleMatches(r *domain.LaborMinimumRule, d PartDimensions) bool {
	sizeConstrained := constraintActive(r.MinSize) || constraintActive(r.MaxSize)
	if sizeConstrained {
		if d.Size <= 0 {
			return false
		}
		if constraintActive(r.MinSize) && d.Size < *r.MinSize {
			return false
		}
		if constraintActive(r.MaxSize) && d.Size > *r.MaxSize {
			return false
		}
	}

	widthConstrained := constraintActive(r.MinWidth) || constraintActive(r.MaxWidth)
	if widthConstrained {
		if d.Width <= 0 {
			return false
		}
		if constraintActive(r.MinWidth) && d.Width < *r.MinWidth {
			return false
		}
		if constraintActive(r.MaxWidth) && d.Width > *r.MaxWidth {
			return false
		}
	}

	return true
}

// SelectRule picks the single minimum-charge rule governing a part.
// Preference order: the best fully-matching constrained rule, then the best
// unconstrained rule, then the highest-minimum rule of the part's type as a
// fallback. Ties within a tier go to the largest minimum so the shop never
// under-charges.
func SelectRule(part *domain.Part, rules []domain.LaborMinimumRule) *domain.LaborMinimumRule {
	d := DimensionsFor(part)

	var specific, general, fallback *domain.LaborMinimumRule
	for i := range rules {
		r := &rules[i]
		if r.PartType != part.PartType || !r.IsActive {
			continue
		}

		if fallback == nil || r.Minimum > fallback.Minimum {
			fallback = r
		}

		if !hasActiveConstraint(r) {
			if general == nil || r.Minimum > general.Minimum {
				general = r
			}
			continue
		}

		if ruleMatches(r, d) {
			if specific == nil || r.Minimum > specific.Minimum {
				specific = r
			}
		}
	}

	switch {
	case specific != nil:
		return specific
	case general != nil:
		return general
	default:
		return fallback
	}
}
