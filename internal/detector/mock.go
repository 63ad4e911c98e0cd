package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It returns either a fixed result or, when a sequence is set, one entry of
// the sequence per Detect call.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	calls    int
	err      error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence makes Detect walk through frames, one entry per call. A nil
// entry is a frame without a hand. Once exhausted, Detect reports no hands.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.calls
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if m.sequence != nil {
		if call >= len(m.sequence) {
			return nil, nil
		}
		return m.sequence[call], nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// SyntheticHand builds an upright hand in pixel coordinates with the wrist at
// (wristX, wristY) and a palm (wrist to middle MCP) of length size. Extended
// fingers point straight up; retracted ones fold back over the palm, and a
// retracted thumb folds across toward the pinky.
func SyntheticHand(f Fingers, wristX, wristY, size float64) HandLandmarks {
	h := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	at := func(dx, dy float64) Point3D {
		return Point3D{X: wristX + dx*size, Y: wristY + dy*size}
	}

	h.Points[Wrist] = at(0, 0)

	h.Points[ThumbCMC] = at(0.25, -0.2)
	h.Points[ThumbMCP] = at(0.5, -0.4)
	h.Points[ThumbIP] = at(0.7, -0.55)
	if f.Thumb {
		h.Points[ThumbTip] = at(1.0, -0.8)
	} else {
		h.Points[ThumbTip] = at(0.1, -0.6)
	}

	finger := func(mcp int, baseX, baseY float64, extended bool) {
		h.Points[mcp] = at(baseX, baseY)
		if extended {
			h.Points[mcp+1] = at(baseX, baseY-0.45)
			h.Points[mcp+2] = at(baseX, baseY-0.75)
			h.Points[mcp+3] = at(baseX, baseY-1.0)
			return
		}
		h.Points[mcp+1] = at(baseX, baseY-0.3)
		h.Points[mcp+2] = at(baseX, baseY-0.1)
		h.Points[mcp+3] = at(baseX, baseY+0.2)
	}

	finger(IndexMCP, 0.35, -0.95, f.Index)
	finger(MiddleMCP, 0, -1.0, f.Middle)
	finger(RingMCP, -0.3, -0.95, f.Ring)
	finger(PinkyMCP, -0.55, -0.9, f.Pinky)

	return h
}

// ThumbsUpLandmarks returns a normalized-space hand with only the thumb extended.
func ThumbsUpLandmarks() HandLandmarks {
	return SyntheticHand(PoseThumbOnly, 0.5, 0.8, 0.12)
}

// OpenPalmLandmarks returns a normalized-space hand with every finger extended.
func OpenPalmLandmarks() HandLandmarks {
	return SyntheticHand(PoseOpenPalm, 0.5, 0.8, 0.12)
}
