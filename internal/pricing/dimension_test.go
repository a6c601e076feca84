package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDimension(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
	}{
		{"empty string", "", 0},
		{"whitespace only", "   ", 0},
		{"plain decimal", "0.375", 0.375},
		{"plain integer", "30", 30},
		{"decimal with inch mark", `0.5"`, 0.5},
		{"integer with curly inch mark", "24”", 24},
		{"simple fraction", "3/8", 0.375},
		{"simple fraction with inch mark", `3/8"`, 0.375},
		{"fraction with spaces", "3 / 8", 0.375},
		{"mixed fraction", "1-1/2", 1.5},
		{"mixed fraction with inch mark", `1-1/2"`, 1.5},
		{"mixed fraction space separated", "2 3/4", 2.75},
		{"gauge 24", "24 ga", 0.025},
		{"gauge 22", "22 ga", 0.030},
		{"gauge 20", "20 ga", 0.036},
		{"gauge 18", "18 ga", 0.048},
		{"gauge 16", "16 ga", 0.060},
		{"gauge 14", "14 ga", 0.075},
		{"gauge 12", "12 ga", 0.105},
		{"gauge 11", "11 ga", 0.120},
		{"gauge 10", "10 ga", 0.135},
		{"gauge no space", "16ga", 0.060},
		{"gauge uppercase", "16 GA", 0.060},
		{"gauge spelled out", "16 gauge", 0.060},
		{"unknown gauge", "99 ga", 0},
		{"numeric prefix with text", "30 in OD", 30},
		{"decimal prefix with text", "1.25 inches", 1.25},
		{"pure text", "heavy plate", 0},
		{"negative number", "-5", 0},
		{"zero denominator fraction", "3/0", 0},
		{"zero denominator mixed", "1-1/0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseDimension(tt.input), 1e-9)
		})
	}
}

func TestParseDimensionNeverPanics(t *testing.T) {
	hostile := []string{"/", "-", "ga", `"""`, "1-", "/8", "1-1/", "．", "NaN", "Inf"}
	for _, s := range hostile {
		assert.NotPanics(t, func() { _ = ParseDimension(s) }, "input %q", s)
		assert.GreaterOrEqual(t, ParseDimension(s), 0.0, "input %q", s)
	}
}
