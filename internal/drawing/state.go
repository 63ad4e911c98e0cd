package drawing

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/google/uuid"

	"github.com/ayusman/airpaint/internal/gesture"
)

// Config holds the drawing options.
type Config struct {
	Palette            []Swatch
	MinBrushRadius     int
	MaxBrushRadius     int
	DefaultBrushRadius int
}

// MaxRadiusLimit bounds MaxBrushRadius; segments are drawn 2*radius wide and
// OpenCV rejects line thicknesses above 32767.
const MaxRadiusLimit = 1000

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Palette:            DefaultPalette(),
		MinBrushRadius:     4,
		MaxBrushRadius:     40,
		DefaultBrushRadius: 10,
	}
}

// Validate reports the first problem with c.
func (c Config) Validate() error {
	if len(c.Palette) == 0 {
		return errors.New("palette is empty")
	}
	for _, s := range c.Palette {
		if !s.Eraser && s.Color == Background {
			return fmt.Errorf("swatch %q uses the background color; mark it as an eraser instead", s.Name)
		}
	}
	if c.MinBrushRadius < 1 {
		return fmt.Errorf("min brush radius %d must be at least 1", c.MinBrushRadius)
	}
	if c.MaxBrushRadius > MaxRadiusLimit {
		return fmt.Errorf("max brush radius %d is above the limit %d", c.MaxBrushRadius, MaxRadiusLimit)
	}
	if c.MaxBrushRadius < c.MinBrushRadius {
		return fmt.Errorf("max brush radius %d is below min %d", c.MaxBrushRadius, c.MinBrushRadius)
	}
	if c.DefaultBrushRadius < c.MinBrushRadius || c.DefaultBrushRadius > c.MaxBrushRadius {
		return fmt.Errorf("default brush radius %d is outside [%d, %d]",
			c.DefaultBrushRadius, c.MinBrushRadius, c.MaxBrushRadius)
	}
	return nil
}

// Stroke is one pen-down to pen-up line of a single swatch and radius.
type Stroke struct {
	ID     string        `json:"id"`
	Swatch Swatch        `json:"swatch"`
	Radius int           `json:"radius"`
	Points []image.Point `json:"points"`
}

// Ink is the color the stroke leaves on the canvas.
func (s *Stroke) Ink() color.RGBA {
	return s.Swatch.Ink()
}

func (s *Stroke) clone() Stroke {
	c := *s
	c.Points = append([]image.Point(nil), s.Points...)
	return c
}

// ChangeKind says what a canvas has to do to follow a state change.
type ChangeKind int

const (
	// ChangeNone leaves the canvas alone.
	ChangeNone ChangeKind = iota
	// ChangeDot starts Stroke with a dot at To.
	ChangeDot
	// ChangeSegment extends Stroke from From to To.
	ChangeSegment
	// ChangeRebuild replays the whole history.
	ChangeRebuild
)

// Change is the canvas work resulting from one Apply.
type Change struct {
	Kind   ChangeKind
	Stroke *Stroke
	From   image.Point
	To     image.Point
}

// State is one session's drawing state. It is owned by a single frame loop
// and is not safe for concurrent use.
type State struct {
	config    Config
	color     int
	radius    int
	history   []*Stroke
	lastPoint *image.Point
	undoArmed bool
}

// NewState creates an empty state using the first swatch and the default radius.
func NewState(config Config) *State {
	return &State{
		config:    config,
		radius:    config.DefaultBrushRadius,
		undoArmed: true,
	}
}

// Apply advances the state by one classified frame and returns the canvas
// work it implies.
func (s *State) Apply(r gesture.Result) Change {
	if r.Gesture != gesture.Draw {
		s.lastPoint = nil
	}
	if r.Gesture != gesture.Undo {
		s.undoArmed = true
	}

	switch r.Gesture {
	case gesture.SelectColor:
		if r.Band >= 0 && r.Band < len(s.config.Palette) {
			s.color = r.Band
		}

	case gesture.AdjustBrushSize:
		s.radius = s.clampRadius(r.Size)

	case gesture.ClearCanvas:
		if len(s.history) > 0 {
			s.history = nil
			return Change{Kind: ChangeRebuild}
		}

	case gesture.Undo:
		// A held fist undoes once; the hand has to leave the pose to undo again.
		if !s.undoArmed {
			return Change{}
		}
		s.undoArmed = false
		if len(s.history) > 0 {
			s.history[len(s.history)-1] = nil
			s.history = s.history[:len(s.history)-1]
			return Change{Kind: ChangeRebuild}
		}

	case gesture.Draw:
		return s.draw(r.Point)
	}

	return Change{}
}

func (s *State) draw(p image.Point) Change {
	if s.lastPoint == nil {
		stroke := &Stroke{
			ID:     uuid.NewString(),
			Swatch: s.config.Palette[s.color],
			Radius: s.radius,
			Points: []image.Point{p},
		}
		s.history = append(s.history, stroke)
		s.lastPoint = &p
		return Change{Kind: ChangeDot, Stroke: stroke, From: p, To: p}
	}

	from := *s.lastPoint
	stroke := s.history[len(s.history)-1]
	stroke.Points = append(stroke.Points, p)
	s.lastPoint = &p
	return Change{Kind: ChangeSegment, Stroke: stroke, From: from, To: p}
}

func (s *State) clampRadius(size float64) int {
	r := int(size + 0.5)
	if r < s.config.MinBrushRadius {
		return s.config.MinBrushRadius
	}
	if r > s.config.MaxBrushRadius {
		return s.config.MaxBrushRadius
	}
	return r
}

// Swatch returns the selected palette entry.
func (s *State) Swatch() Swatch {
	return s.config.Palette[s.color]
}

// ColorIndex returns the selected palette index.
func (s *State) ColorIndex() int {
	return s.color
}

// Radius returns the current brush radius.
func (s *State) Radius() int {
	return s.radius
}

// Palette returns the configured palette.
func (s *State) Palette() []Swatch {
	return s.config.Palette
}

// LastPoint returns the last drawn point while a stroke is in progress.
func (s *State) LastPoint() (image.Point, bool) {
	if s.lastPoint == nil {
		return image.Point{}, false
	}
	return *s.lastPoint, true
}

// Len returns the number of strokes in the history.
func (s *State) Len() int {
	return len(s.history)
}

// History returns a copy of the strokes in drawing order.
func (s *State) History() []Stroke {
	out := make([]Stroke, len(s.history))
	for i, st := range s.history {
		out[i] = st.clone()
	}
	return out
}

// Snapshot is a read-only summary of the state.
type Snapshot struct {
	Palette    []Swatch `json:"palette"`
	ColorIndex int      `json:"color_index"`
	Radius     int      `json:"radius"`
	Strokes    int      `json:"strokes"`
	Drawing    bool     `json:"drawing"`
}

// Snapshot summarizes the state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Palette:    s.config.Palette,
		ColorIndex: s.color,
		Radius:     s.radius,
		Strokes:    len(s.history),
		Drawing:    s.lastPoint != nil,
	}
}
