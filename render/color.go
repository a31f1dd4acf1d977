package render

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"
)

var ErrUnknownColor = errors.New("render: unknown colour")

// ParseColor accepts an SVG colour name ("crimson") or a hex triple in any
// of the forms #rgb, #rgba, #rrggbb, #rrggbbaa.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColor, s)
		}
	}
	return gg.Hex(hex).Color(), nil
}

// Palette hands out relation colours in a fixed cycle.
type Palette struct {
	colors []color.Color
	next   int
}

// NewPalette cycles through colors, or a default set readable on the light
// plot background when none are given.
func NewPalette(colors ...color.Color) *Palette {
	if len(colors) == 0 {
		colors = []color.Color{
			colornames.Crimson,
			colornames.Royalblue,
			colornames.Seagreen,
			colornames.Darkorange,
			colornames.Darkviolet,
			colornames.Teal,
		}
	}
	return &Palette{colors: colors}
}

func (p *Palette) Next() color.Color {
	c := p.colors[p.next%len(p.colors)]
	p.next++
	return c
}
