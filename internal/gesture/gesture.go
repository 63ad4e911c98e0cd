// Package gesture classifies a single frame's hand landmarks into one of the
// painter's discrete gestures.
package gesture

import (
	"fmt"
	"image"
)

// Gesture is the per-frame classification of a hand pose.
type Gesture int

const (
	// None means no hand, or a pose that maps to nothing.
	None Gesture = iota
	// SelectColor picks the palette entry under the thumb tip.
	SelectColor
	// AdjustBrushSize sets the brush radius from the index/middle tip spread.
	AdjustBrushSize
	// Undo removes the most recent stroke.
	Undo
	// ClearCanvas removes every stroke.
	ClearCanvas
	// Draw extends the current stroke to the index fingertip.
	Draw
)

var names = [...]string{
	None:            "none",
	SelectColor:     "select_color",
	AdjustBrushSize: "adjust_brush_size",
	Undo:            "undo",
	ClearCanvas:     "clear_canvas",
	Draw:            "draw",
}

func (g Gesture) String() string {
	if g < 0 || int(g) >= len(names) {
		return fmt.Sprintf("gesture(%d)", int(g))
	}
	return names[g]
}

// MarshalText implements encoding.TextMarshaler so gestures read well in JSON.
func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// Result is one frame's classification. Only the fields belonging to Gesture
// are meaningful:
//
//	SelectColor      Band, Point (thumb tip)
//	AdjustBrushSize  Size, Distance, Point (midpoint of the two tips)
//	Draw             Point (index tip)
type Result struct {
	Gesture  Gesture     `json:"gesture"`
	Band     int         `json:"band,omitempty"`
	Size     float64     `json:"size,omitempty"`
	Distance float64     `json:"distance,omitempty"`
	Point    image.Point `json:"point"`
}

// Config holds the classifier's geometric thresholds. Every ratio is relative
// to the hand itself, never a fixed pixel count.
type Config struct {
	// ExtensionRatio is how much farther than its middle joint a fingertip
	// must be from the palm base to count as extended.
	ExtensionRatio float64

	// SpreadRatio is the minimum index/middle tip separation, in palm
	// lengths, for AdjustBrushSize. Closer tips are a neutral hover.
	SpreadRatio float64

	// BrushSizeScale converts the tip separation in pixels into a brush radius.
	BrushSizeScale float64

	// BandBoundaries are ascending normalized x positions splitting the
	// frame into len(BandBoundaries)+1 palette bands.
	BandBoundaries []float64
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		ExtensionRatio: 1.1,
		SpreadRatio:    0.45,
		BrushSizeScale: 0.25,
		BandBoundaries: []float64{0.25, 0.5, 0.75},
	}
}

// Band returns the index of the band containing normalized x.
func Band(x float64, boundaries []float64) int {
	band := 0
	for _, b := range boundaries {
		if x >= b {
			band++
		}
	}
	return band
}
