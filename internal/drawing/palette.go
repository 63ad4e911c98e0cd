// Package drawing holds the painter's per-session drawing state: the selected
// color and brush radius, and the ordered history of strokes.
package drawing

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Swatch is one selectable palette entry.
type Swatch struct {
	Name  string     `json:"name"`
	Color color.RGBA `json:"-"`
	// Eraser swatches paint the canvas background, which composites as
	// transparent.
	Eraser bool `json:"eraser,omitempty"`
}

// Background is the canvas's empty color.
var Background = color.RGBA{A: 255}

// Ink returns the color the swatch puts on the canvas.
func (s Swatch) Ink() color.RGBA {
	if s.Eraser {
		return Background
	}
	return s.Color
}

type swatchJSON struct {
	Name   string `json:"name"`
	Color  string `json:"color,omitempty"`
	Eraser bool   `json:"eraser,omitempty"`
}

// MarshalJSON encodes the color as #rrggbb.
func (s Swatch) MarshalJSON() ([]byte, error) {
	out := swatchJSON{Name: s.Name, Eraser: s.Eraser}
	if !s.Eraser {
		out.Color = fmt.Sprintf("#%02x%02x%02x", s.Color.R, s.Color.G, s.Color.B)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a swatch written by MarshalJSON.
func (s *Swatch) UnmarshalJSON(data []byte) error {
	var in swatchJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Name = in.Name
	s.Eraser = in.Eraser
	s.Color = Background
	if in.Eraser {
		return nil
	}
	c, err := ParseHex(in.Color)
	if err != nil {
		return fmt.Errorf("swatch %q: %w", in.Name, err)
	}
	s.Color = c
	return nil
}

// ErrBadColor is returned for colors that are not #rrggbb.
var ErrBadColor = errors.New("color must be #rrggbb")

// ParseHex parses a #rrggbb color.
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, ErrBadColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, ErrBadColor
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// DefaultPalette is red, blue, green and an eraser.
func DefaultPalette() []Swatch {
	return []Swatch{
		{Name: "red", Color: color.RGBA{R: 255, A: 255}},
		{Name: "blue", Color: color.RGBA{B: 255, A: 255}},
		{Name: "green", Color: color.RGBA{G: 255, A: 255}},
		{Name: "eraser", Color: Background, Eraser: true},
	}
}
