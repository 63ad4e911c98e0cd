// Package compositor renders the output frame: video, canvas strokes, the
// palette selection bar and per-frame pointer overlays.
package compositor

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/ayusman/airpaint/internal/canvas"
	"github.com/ayusman/airpaint/internal/detector"
	"github.com/ayusman/airpaint/internal/drawing"
	"github.com/ayusman/airpaint/internal/gesture"
)

var (
	white      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	eraserFill = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	skeleton   = color.RGBA{R: 0, G: 200, B: 255, A: 255}
	joint      = color.RGBA{R: 255, G: 0, B: 255, A: 255}
)

// Config controls the overlays.
type Config struct {
	// BandBoundaries split the bar into one band per palette entry, as
	// fractions of the frame width.
	BandBoundaries []float64
	BarHeight      int
	ShowLandmarks  bool
	ShowFPS        bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		BandBoundaries: gesture.DefaultConfig().BandBoundaries,
		BarHeight:      80,
		ShowLandmarks:  true,
		ShowFPS:        true,
	}
}

// View is the per-frame input to Render besides the video and canvas.
type View struct {
	Palette    []drawing.Swatch
	ColorIndex int
	Radius     int
	Result     gesture.Result
	// Hand is nil when no hand was detected.
	Hand *detector.HandLandmarks
	FPS  float64
}

// Compositor renders output frames. It keeps no per-frame state.
type Compositor struct {
	config Config
}

// New creates a Compositor.
func New(config Config) *Compositor {
	return &Compositor{config: config}
}

// Render returns a new frame with the canvas overlaid on frame and the
// overlays drawn on top. frame is not modified; the caller owns the result.
func (c *Compositor) Render(frame gocv.Mat, cv *canvas.Canvas, v View) (gocv.Mat, error) {
	out := frame.Clone()
	if err := cv.OverlayOnto(&out); err != nil {
		out.Close()
		return gocv.NewMat(), fmt.Errorf("overlay canvas: %w", err)
	}

	c.drawBar(&out, v)
	c.drawPointer(&out, v)
	if c.config.ShowLandmarks && v.Hand != nil {
		drawSkeleton(&out, v.Hand)
	}
	if c.config.ShowFPS {
		gocv.PutText(&out, fmt.Sprintf("FPS: %d", int(math.Round(v.FPS))),
			image.Pt(10, out.Rows()-20), gocv.FontHersheySimplex, 1, white, 2)
	}
	return out, nil
}

// Bands returns the pixel rectangle of every palette band for a frame width.
func (c *Compositor) Bands(width, count int) []image.Rectangle {
	bands := make([]image.Rectangle, 0, count)
	x0 := 0
	for i := 0; i < count; i++ {
		x1 := width
		if i < len(c.config.BandBoundaries) && i < count-1 {
			x1 = int(c.config.BandBoundaries[i] * float64(width))
		}
		bands = append(bands, image.Rect(x0, 0, x1, c.config.BarHeight))
		x0 = x1
	}
	return bands
}

func (c *Compositor) drawBar(img *gocv.Mat, v View) {
	bands := c.Bands(img.Cols(), len(v.Palette))
	for i, r := range bands {
		s := v.Palette[i]
		fill := s.Color
		if s.Eraser {
			fill = eraserFill
		}
		gocv.Rectangle(img, r, fill, -1)
		if s.Eraser {
			gocv.PutText(img, "ERASER", image.Pt(r.Min.X+10, r.Max.Y/2+10),
				gocv.FontHersheySimplex, 1, white, 2)
		}
	}
	if v.ColorIndex >= 0 && v.ColorIndex < len(bands) {
		r := bands[v.ColorIndex]
		gocv.Rectangle(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X-1, r.Max.Y-1), white, 4)
	}
}

func (c *Compositor) drawPointer(img *gocv.Mat, v View) {
	ink := white
	if v.ColorIndex >= 0 && v.ColorIndex < len(v.Palette) && !v.Palette[v.ColorIndex].Eraser {
		ink = v.Palette[v.ColorIndex].Color
	}

	switch v.Result.Gesture {
	case gesture.Draw:
		gocv.Circle(img, v.Result.Point, v.Radius, ink, -1)
	case gesture.AdjustBrushSize:
		gocv.Circle(img, v.Result.Point, v.Radius, ink, 2)
	case gesture.SelectColor, gesture.None:
		// Hover marker between the index and middle tips.
		if v.Hand == nil {
			return
		}
		a := v.Hand.Points[detector.IndexTip].Image()
		b := v.Hand.Points[detector.MiddleTip].Image()
		gocv.Rectangle(img, image.Rectangle{Min: a, Max: b}.Canon(), ink, 2)
	}
}

func drawSkeleton(img *gocv.Mat, hand *detector.HandLandmarks) {
	for _, conn := range detector.Connections {
		gocv.Line(img, hand.Points[conn[0]].Image(), hand.Points[conn[1]].Image(), skeleton, 2)
	}
	for _, p := range hand.Points {
		gocv.Circle(img, p.Image(), 4, joint, -1)
	}
}
