package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestPlaceholder(t *testing.T) {
	a := Placeholder("inf_V1StGXR8_Z5jdHi6")
	assert.Regexp(t, hexColor, a)
	assert.Equal(t, a, Placeholder("inf_V1StGXR8_Z5jdHi6"), "same id, same color")
	assert.Regexp(t, hexColor, Placeholder(""))
}

func TestHSLToRGB(t *testing.T) {
	tests := []struct {
		hue, s, l float64
		r, g, b   uint8
	}{
		{0, 1, 0.5, 255, 0, 0},
		{120, 1, 0.5, 0, 255, 0},
		{240, 1, 0.5, 0, 0, 255},
		{0, 0, 1, 255, 255, 255},
		{200, 0, 0.5, 128, 128, 128},
	}
	for _, tt := range tests {
		r, g, b := hslToRGB(tt.hue, tt.s, tt.l)
		assert.Equal(t, []uint8{tt.r, tt.g, tt.b}, []uint8{r, g, b}, "hsl(%v,%v,%v)", tt.hue, tt.s, tt.l)
	}
}
