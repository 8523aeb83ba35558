// Package colorutil provides the brush palette and colour parsing shared by the
// engine and the UI.
package colorutil

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Palette colours offered by the swatch bar, X11 values.
var (
	Red    = color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	Orange = color.NRGBA{R: 255, G: 165, B: 0, A: 255}
	Yellow = color.NRGBA{R: 255, G: 255, B: 0, A: 255}
	Green  = color.NRGBA{R: 0, G: 255, B: 0, A: 255}
	Blue   = color.NRGBA{R: 0, G: 0, B: 255, A: 255}
	Purple = color.NRGBA{R: 160, G: 32, B: 240, A: 255}
	Black  = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White  = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// ErrUnknownColor is returned by Parse for names outside the palette.
var ErrUnknownColor = errors.New("unknown colour")

// Swatch pairs a palette name with its colour.
type Swatch struct {
	Name  string
	Color color.NRGBA
}

// Palette returns the swatches in display order.
func Palette() []Swatch {
	return []Swatch{
		{"red", Red},
		{"orange", Orange},
		{"yellow", Yellow},
		{"green", Green},
		{"blue", Blue},
		{"purple", Purple},
		{"black", Black},
		{"white", White},
	}
}

// Parse accepts a palette name or a #rrggbb / #rrggbbaa hex string.
func Parse(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sw := range Palette() {
		if sw.Name == s {
			return sw.Color, nil
		}
	}
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	hex := s[1:]
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats a colour as #rrggbb, or #rrggbbaa when not opaque.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// Name returns the palette name for c, or its hex form.
func Name(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	for _, sw := range Palette() {
		if sw.Color == n {
			return sw.Name
		}
	}
	return Hex(n)
}
