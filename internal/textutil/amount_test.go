package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"500", 500, true},
		{"1,5", 1.5, true},
		{"2.75", 2.75, true},
		{" 42 ", 42, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAmount(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)
	}
}

func TestScaleAmount(t *testing.T) {
	assert.InDelta(t, 500.0, ScaleAmount(500, "mayor a 500"), 1e-9)
	assert.InDelta(t, 500_000.0, ScaleAmount(500, "mayor a 500 mil"), 1e-9)
	assert.InDelta(t, 500_000_000.0, ScaleAmount(500, "mayor a 500 millones"), 1e-9)
	assert.InDelta(t, 2_000_000.0, ScaleAmount(2, "2 MILLÓN"), 1e-9)
	// Substring detection: "familia" contains "mil".
	assert.InDelta(t, 3_000.0, ScaleAmount(3, "3 para la familia"), 1e-9)
}
