package capture

import (
	"errors"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoMoreFrames is returned by a non-looping MockCamera after its last frame.
var ErrNoMoreFrames = errors.New("no more frames")

// MockCamera plays back prepared frames. It stands in for the device in
// tests and when no camera is attached.
type MockCamera struct {
	frames  []*gocv.Mat
	size    image.Point
	mirror  bool
	index   int
	loop    bool
	fps     int
	reads   int
	mu      sync.Mutex
	running bool
}

// NewMockCamera plays frames in order, from the start again if loop is set.
// All frames must share one size.
func NewMockCamera(frames []*gocv.Mat, loop bool) *MockCamera {
	c := &MockCamera{frames: frames, loop: loop, fps: DefaultFPS}
	if len(frames) > 0 {
		c.size = image.Pt(frames[0].Cols(), frames[0].Rows())
	}
	return c
}

// SolidFrames creates n frames of width x height filled with the given BGR
// shade, each a little brighter than the last. The caller closes them.
func SolidFrames(n, width, height int, b, g, r uint8) []*gocv.Mat {
	frames := make([]*gocv.Mat, n)
	for i := range frames {
		step := float64(i % 8)
		m := gocv.NewMatWithSizeFromScalar(
			gocv.NewScalar(float64(b)+step, float64(g)+step, float64(r)+step, 0),
			height, width, gocv.MatTypeCV8UC3)
		frames[i] = &m
	}
	return frames
}

// SetMirror makes ReadFrame flip frames the way a mirrored Camera does.
func (c *MockCamera) SetMirror(mirror bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mirror = mirror
}

func (c *MockCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.index = 0
	return nil
}

func (c *MockCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
	return nil
}

func (c *MockCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil, ErrCameraNotOpen
	}
	if len(c.frames) == 0 {
		return nil, ErrNoFrame
	}

	if c.index >= len(c.frames) {
		if !c.loop {
			return nil, ErrNoMoreFrames
		}
		c.index = 0
	}

	// Clone the frame so the original isn't modified
	frame := c.frames[c.index].Clone()
	c.index++
	c.reads++

	conform(&frame, c.size, c.mirror)
	return &frame, nil
}

// Reads returns how many frames were delivered.
func (c *MockCamera) Reads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reads
}

func (c *MockCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fps = fps
}

func (c *MockCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

func (c *MockCamera) Size() image.Point { return c.size }

func (c *MockCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
