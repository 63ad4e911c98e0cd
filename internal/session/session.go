// Package session ties one painter's classifier, drawing state, canvas and
// compositor together. Every frame loop owns its own Session, so independent
// sessions never share state.
package session

import (
	"fmt"
	"image"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/airpaint/internal/canvas"
	"github.com/ayusman/airpaint/internal/compositor"
	"github.com/ayusman/airpaint/internal/detector"
	"github.com/ayusman/airpaint/internal/drawing"
	"github.com/ayusman/airpaint/internal/gesture"
)

// Config holds everything a session needs.
type Config struct {
	Width      int
	Height     int
	Gesture    gesture.Config
	Drawing    drawing.Config
	Compositor compositor.Config
}

// DefaultConfig returns a Config for a 1280x720 frame.
func DefaultConfig() Config {
	return Config{
		Width:      1280,
		Height:     720,
		Gesture:    gesture.DefaultConfig(),
		Drawing:    drawing.DefaultConfig(),
		Compositor: compositor.DefaultConfig(),
	}
}

// Session is not safe for concurrent use; only the frame loop calls it.
type Session struct {
	id         string
	classifier *gesture.Classifier
	state      *drawing.State
	canvas     *canvas.Canvas
	compositor *compositor.Compositor

	frames uint64
	last   gesture.Result
	hand   *detector.HandLandmarks
}

// New creates a session with an empty canvas of the configured size.
func New(config Config) (*Session, error) {
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", config.Width, config.Height)
	}
	if err := config.Drawing.Validate(); err != nil {
		return nil, fmt.Errorf("drawing config: %w", err)
	}
	return &Session{
		id:         uuid.NewString(),
		classifier: gesture.NewClassifier(config.Gesture, config.Width),
		state:      drawing.NewState(config.Drawing),
		canvas:     canvas.New(config.Width, config.Height),
		compositor: compositor.New(config.Compositor),
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Step classifies one frame's hand, nil when none was found, applies the
// result to the drawing state and brings the canvas up to date.
func (s *Session) Step(hand *detector.HandLandmarks) gesture.Result {
	r := s.classifier.Classify(hand)
	s.canvas.Apply(s.state.Apply(r), s.state)

	s.frames++
	s.last = r
	s.hand = nil
	if hand != nil {
		h := *hand
		s.hand = &h
	}
	return r
}

// Render composites the canvas and overlays for the last step onto frame.
// The caller owns the returned Mat.
func (s *Session) Render(frame gocv.Mat, fps float64) (gocv.Mat, error) {
	return s.compositor.Render(frame, s.canvas, compositor.View{
		Palette:    s.state.Palette(),
		ColorIndex: s.state.ColorIndex(),
		Radius:     s.state.Radius(),
		Result:     s.last,
		Hand:       s.hand,
		FPS:        fps,
	})
}

// History returns a copy of the stroke history.
func (s *Session) History() []drawing.Stroke {
	return s.state.History()
}

// Len returns the number of strokes in the history without copying it.
func (s *Session) Len() int {
	return s.state.Len()
}

// CanvasAt returns the canvas color at p as B, G, R.
func (s *Session) CanvasAt(p image.Point) [3]uint8 {
	return s.canvas.At(p)
}

// CanvasBytes returns a copy of the canvas pixels.
func (s *Session) CanvasBytes() []byte {
	return s.canvas.Bytes()
}

// Snapshot is the session state published to viewers.
type Snapshot struct {
	SessionID string          `json:"session_id"`
	Frame     uint64          `json:"frame"`
	Gesture   gesture.Gesture `json:"gesture"`
	drawing.Snapshot
}

// Snapshot summarizes the session after the last step.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID: s.id,
		Frame:     s.frames,
		Gesture:   s.last.Gesture,
		Snapshot:  s.state.Snapshot(),
	}
}

// Close releases the canvas.
func (s *Session) Close() error {
	return s.canvas.Close()
}
