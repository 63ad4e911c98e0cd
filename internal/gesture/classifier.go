package gesture

import (
	"image"

	"github.com/ayusman/airpaint/internal/detector"
)

// pose is one hand with its finger extension already resolved.
type pose struct {
	hand    *detector.HandLandmarks
	fingers detector.Fingers
}

// rule maps a pose to a result; ok is false when the rule does not apply.
type rule struct {
	gesture Gesture
	match   func(c *Classifier, p *pose) (r Result, ok bool)
}

// rules are evaluated in order and the first match wins, so at most one
// gesture fires per frame.
var rules = []rule{
	{ClearCanvas, matchClearCanvas},
	{Undo, matchUndo},
	{SelectColor, matchSelectColor},
	{AdjustBrushSize, matchAdjustBrushSize},
	{Draw, matchDraw},
}

// Classifier turns landmarks into gestures. It keeps no per-frame state, so
// a misclassified frame has no effect on the next one.
type Classifier struct {
	config     Config
	frameWidth int
}

// NewClassifier creates a classifier for frames frameWidth pixels wide.
func NewClassifier(config Config, frameWidth int) *Classifier {
	return &Classifier{
		config:     config,
		frameWidth: frameWidth,
	}
}

// Classify returns the gesture for hand. A nil hand is None.
func (c *Classifier) Classify(hand *detector.HandLandmarks) Result {
	if hand == nil {
		return Result{Gesture: None}
	}

	p := &pose{hand: hand, fingers: c.Fingers(hand)}
	for _, r := range rules {
		if res, ok := r.match(c, p); ok {
			res.Gesture = r.gesture
			return res
		}
	}
	return Result{Gesture: None}
}

// Fingers reports which fingers of hand are extended.
//
// A finger is extended when its tip is farther from the wrist than
// ExtensionRatio times its PIP joint's distance. The thumb bends across the
// palm instead of toward the wrist, so it is measured from the pinky MCP
// against its IP joint.
func (c *Classifier) Fingers(hand *detector.HandLandmarks) detector.Fingers {
	pts := &hand.Points
	extended := func(tip, joint, base int) bool {
		return detector.Distance2D(pts[tip], pts[base]) >
			c.config.ExtensionRatio*detector.Distance2D(pts[joint], pts[base])
	}

	return detector.Fingers{
		Thumb:  extended(detector.ThumbTip, detector.ThumbIP, detector.PinkyMCP),
		Index:  extended(detector.IndexTip, detector.IndexPIP, detector.Wrist),
		Middle: extended(detector.MiddleTip, detector.MiddlePIP, detector.Wrist),
		Ring:   extended(detector.RingTip, detector.RingPIP, detector.Wrist),
		Pinky:  extended(detector.PinkyTip, detector.PinkyPIP, detector.Wrist),
	}
}

func matchClearCanvas(c *Classifier, p *pose) (Result, bool) {
	return Result{}, p.fingers == detector.PoseOpenPalm
}

func matchUndo(c *Classifier, p *pose) (Result, bool) {
	return Result{}, p.fingers == detector.PoseFist
}

func matchSelectColor(c *Classifier, p *pose) (Result, bool) {
	if p.fingers != detector.PoseThumbOnly {
		return Result{}, false
	}
	tip := p.hand.Points[detector.ThumbTip]
	x := 0.0
	if c.frameWidth > 0 {
		x = tip.X / float64(c.frameWidth)
	}
	return Result{
		Band:  Band(x, c.config.BandBoundaries),
		Point: tip.Image(),
	}, true
}

func matchAdjustBrushSize(c *Classifier, p *pose) (Result, bool) {
	if p.fingers != detector.PoseTwo {
		return Result{}, false
	}
	index := p.hand.Points[detector.IndexTip]
	middle := p.hand.Points[detector.MiddleTip]
	dist := detector.Distance2D(index, middle)
	if dist < c.config.SpreadRatio*p.hand.PalmSize() {
		return Result{}, false
	}
	return Result{
		Size:     dist * c.config.BrushSizeScale,
		Distance: dist,
		Point:    midpoint(index.Image(), middle.Image()),
	}, true
}

func matchDraw(c *Classifier, p *pose) (Result, bool) {
	if p.fingers != detector.PosePointing {
		return Result{}, false
	}
	return Result{Point: p.hand.Points[detector.IndexTip].Image()}, true
}

func midpoint(a, b image.Point) image.Point {
	return a.Add(b).Div(2)
}
