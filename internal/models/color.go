package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB colour.
type Color struct {
	R uint8
	G uint8
	B uint8
}

var (
	ColorRed   = Color{R: 0xFF}
	ColorGreen = Color{G: 0xFF}
	ColorBlue  = Color{B: 0xFF}
)

// String renders the colour as #RRGGBB.
func (c Color) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseColor accepts #RRGGBB (case-insensitive) or a decimal RGB integer.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		if len(s) != 7 {
			return Color{}, fmt.Errorf("invalid colour %q", s)
		}
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		return colorFromRGB(v), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return colorFromRGB(uint64(v) & 0xFFFFFF), nil
}

func colorFromRGB(v uint64) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}
