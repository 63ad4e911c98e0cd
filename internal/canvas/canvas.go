// Package canvas provides the persistent stroke raster composited over video.
package canvas

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/airpaint/internal/drawing"
)

// ErrSizeMismatch is returned when a frame does not match the canvas size.
var ErrSizeMismatch = errors.New("frame size does not match canvas")

// Canvas is a BGR raster the size of the video frame. Its content always
// equals the in-order rasterization of a drawing.State's history: Apply
// draws new segments directly and replays the history when strokes were
// removed. The underlying Mat is never handed out.
type Canvas struct {
	mat  gocv.Mat
	size image.Point
}

// New creates an empty canvas of width x height pixels.
func New(width, height int) *Canvas {
	return &Canvas{
		mat:  gocv.Zeros(height, width, gocv.MatTypeCV8UC3),
		size: image.Pt(width, height),
	}
}

// Close releases the raster.
func (c *Canvas) Close() error {
	return c.mat.Close()
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() image.Point {
	return c.size
}

// Apply performs the canvas work of one state change. A rebuild reads the
// current history from s.
func (c *Canvas) Apply(ch drawing.Change, s *drawing.State) {
	switch ch.Kind {
	case drawing.ChangeDot:
		c.DrawDot(ch.Stroke, ch.To)
	case drawing.ChangeSegment:
		c.DrawSegment(ch.Stroke, ch.From, ch.To)
	case drawing.ChangeRebuild:
		c.Rebuild(s.History())
	}
}

// DrawDot marks the first vertex of a stroke.
func (c *Canvas) DrawDot(s *drawing.Stroke, p image.Point) {
	gocv.Circle(&c.mat, p, s.Radius, s.Ink(), -1)
}

// DrawSegment draws a line of the stroke's ink and radius from one vertex to the next.
func (c *Canvas) DrawSegment(s *drawing.Stroke, from, to image.Point) {
	gocv.Line(&c.mat, from, to, s.Ink(), 2*s.Radius)
}

// Rebuild clears the canvas and replays every stroke in order.
func (c *Canvas) Rebuild(history []drawing.Stroke) {
	c.mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
	for i := range history {
		s := &history[i]
		if len(s.Points) == 0 {
			continue
		}
		c.DrawDot(s, s.Points[0])
		for j := 1; j < len(s.Points); j++ {
			c.DrawSegment(s, s.Points[j-1], s.Points[j])
		}
	}
}

// OverlayOnto copies every non-background canvas pixel onto dst, leaving
// the rest of dst untouched. Strokes stay fully opaque.
func (c *Canvas) OverlayOnto(dst *gocv.Mat) error {
	if dst.Cols() != c.size.X || dst.Rows() != c.size.Y {
		return fmt.Errorf("%w: frame %dx%d, canvas %dx%d",
			ErrSizeMismatch, dst.Cols(), dst.Rows(), c.size.X, c.size.Y)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(c.mat, &gray, gocv.ColorBGRToGray)

	// White wherever the canvas is empty.
	inv := gocv.NewMat()
	defer inv.Close()
	gocv.Threshold(gray, &inv, 0, 255, gocv.ThresholdBinaryInv)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.CvtColor(inv, &mask, gocv.ColorGrayToBGR)

	gocv.BitwiseAnd(*dst, mask, dst)
	gocv.BitwiseOr(*dst, c.mat, dst)
	return nil
}

// Bytes returns a copy of the raw BGR pixels.
func (c *Canvas) Bytes() []byte {
	return c.mat.ToBytes()
}

// InkedPixels counts pixels that differ from the background.
func (c *Canvas) InkedPixels() int {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(c.mat, &gray, gocv.ColorBGRToGray)
	return gocv.CountNonZero(gray)
}

// At returns the canvas color at p as B, G, R.
func (c *Canvas) At(p image.Point) [3]uint8 {
	v := c.mat.GetVecbAt(p.Y, p.X)
	return [3]uint8{v[0], v[1], v[2]}
}
