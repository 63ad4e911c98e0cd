// Package detector provides the hand landmark boundary: the types a hand
// tracker produces and the interface the frame loop consumes them through.
package detector

import (
	"image"
	"math"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Connections lists the landmark pairs joined when drawing a hand skeleton.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D represents a landmark position. X and Y are in frame pixels once a
// detector hands the landmarks out; Z is the tracker's relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Image returns the point rounded to integer pixel coordinates.
func (p Point3D) Image() image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

// HandLandmarks represents the 21 landmarks of one detected hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Fingers records which fingers of a hand are extended.
type Fingers struct {
	Thumb, Index, Middle, Ring, Pinky bool
}

// Common poses.
var (
	PoseOpenPalm  = Fingers{Thumb: true, Index: true, Middle: true, Ring: true, Pinky: true}
	PoseFist      = Fingers{}
	PoseThumbOnly = Fingers{Thumb: true}
	PosePointing  = Fingers{Index: true}
	PoseTwo       = Fingers{Index: true, Middle: true}
)

// Distance2D returns the Euclidean distance between two landmarks in the image plane.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PalmSize is the wrist to middle-finger-MCP distance in the image plane.
// It is the unit geometric thresholds are expressed in, so they hold at any
// distance from the camera.
func (h *HandLandmarks) PalmSize() float64 {
	return Distance2D(h.Points[Wrist], h.Points[MiddleMCP])
}

// Scaled maps landmarks from the tracker's normalized [0,1] space into a
// width x height pixel frame.
func (h *HandLandmarks) Scaled(width, height int) HandLandmarks {
	out := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	for i, p := range h.Points {
		out.Points[i] = Point3D{
			X: p.X * float64(width),
			Y: p.Y * float64(height),
			Z: p.Z * float64(width),
		}
	}
	return out
}
