package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// gaugeInches maps sheet-metal gauge numbers to decimal inches.
var gaugeInches = map[int]float64{
	24: 0.025,
	22: 0.030,
	20: 0.036,
	18: 0.048,
	16: 0.060,
	14: 0.075,
	12: 0.105,
	11: 0.120,
	10: 0.135,
}

var (
	gaugeRe    = regexp.MustCompile(`^(\d+)\s*ga(?:uge)?\.?$`)
	mixedRe    = regexp.MustCompile(`^(\d+)[-\s](\d+)\s*/\s*(\d+)$`)
	fractionRe = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)
	prefixRe   = regexp.MustCompile(`^(\d+(?:\.\d+)?)`)
)

// inchMarkReplacer strips straight and curly inch marks before parsing.
var inchMarkReplacer = strings.NewReplacer(`"`, "", "“", "", "”", "", "″", "")

// ParseDimension converts a free-form size string into decimal inches.
// Recognized notations, in order: plain decimal ("0.375"), gauge ("24 ga"),
// mixed fraction ("1-1/2"), simple fraction ("3/8"), and a bare numeric
// prefix ("30 in OD"). Anything else, including empty input, yields 0. The
// function never fails: malformed part data degrades to 0 so callers can
// price what they can.
func ParseDimension(raw string) float64 {
	s := strings.TrimSpace(inchMarkReplacer.Replace(raw))
	if s == "" {
		return 0
	}
	lower := strings.ToLower(s)

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	}

	if m := gaugeRe.FindStringSubmatch(lower); m != nil {
		gauge, err := strconv.Atoi(m[1])
		if err != nil {
			return 0
		}
		return gaugeInches[gauge]
	}

	if m := mixedRe.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.ParseFloat(m[1], 64)
		num, _ := strconv.ParseFloat(m[2], 64)
		den, _ := strconv.ParseFloat(m[3], 64)
		if den == 0 {
			return 0
		}
		return whole + num/den
	}

	if m := fractionRe.FindStringSubmatch(s); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den == 0 {
			return 0
		}
		return num / den
	}

	if m := prefixRe.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0
		}
		return v
	}

	return 0
}
