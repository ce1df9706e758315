// Package color assigns display colours to blame lines: a rotating palette
// per author and a green to red heat map by commit age.
package color

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an opaque 24-bit colour.
type RGB struct {
	R, G, B uint8
}

// DefaultPalette is the author assignment sequence. Order matters.
var DefaultPalette = []RGB{
	{0x00, 0x96, 0x88}, // teal
	{0xE9, 0x1E, 0x63}, // pink
	{0x9C, 0x27, 0xB0}, // purple
	{0x67, 0x3A, 0xB7}, // deep purple
	{0x3F, 0x51, 0xB5}, // indigo
	{0x21, 0x96, 0xF3}, // blue
	{0x00, 0xBC, 0xD4}, // cyan
	{0x4C, 0xAF, 0x50}, // green
	{0x8B, 0xC3, 0x4A}, // light green
	{0xFF, 0x98, 0x00}, // orange
	{0xFF, 0x57, 0x22}, // deep orange
	{0x79, 0x55, 0x48}, // brown
}

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: r, G: g, B: b}
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	return c.colorful().Hex()
}

func (c RGB) String() string {
	return c.Hex()
}

// ParseHex parses "#RRGGBB" (case-insensitive).
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return fromColorful(c), nil
}

// ParsePalette parses a list of hex colours. An empty list yields
// DefaultPalette.
func ParsePalette(hexes []string) ([]RGB, error) {
	if len(hexes) == 0 {
		return clonePalette(DefaultPalette), nil
	}
	palette := make([]RGB, 0, len(hexes))
	for i, h := range hexes {
		c, err := ParseHex(h)
		if err != nil {
			return nil, fmt.Errorf("palette[%d]: %w", i, err)
		}
		palette = append(palette, c)
	}
	return palette, nil
}

func clonePalette(p []RGB) []RGB {
	out := make([]RGB, len(p))
	copy(out, p)
	return out
}
