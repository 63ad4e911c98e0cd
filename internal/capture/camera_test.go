package capture

import (
	"errors"
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name     string
		config   CameraConfig
		wantFPS  int
		wantSize image.Point
	}{
		{
			name:     "defaults",
			config:   DefaultCameraConfig(),
			wantFPS:  DefaultFPS,
			wantSize: image.Pt(1280, 720),
		},
		{
			name:     "zero values take defaults",
			config:   CameraConfig{DeviceID: 1},
			wantFPS:  DefaultFPS,
			wantSize: image.Pt(DefaultWidth, DefaultHeight),
		},
		{
			name:     "custom resolution",
			config:   CameraConfig{DeviceID: 2, Width: 640, Height: 480, FPS: 30},
			wantFPS:  30,
			wantSize: image.Pt(640, 480),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.config)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			if got := cam.Size(); got != tt.wantSize {
				t.Errorf("Size() = %v, want %v", got, tt.wantSize)
			}
			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(DefaultCameraConfig())

	tests := []struct {
		fps     int
		wantFPS int
	}{
		{fps: 15, wantFPS: 15},
		{fps: 1, wantFPS: 1},
		{fps: 0, wantFPS: 1},
		{fps: -5, wantFPS: 1},
	}

	for _, tt := range tests {
		cam.SetFPS(tt.fps)
		if got := cam.FPS(); got != tt.wantFPS {
			t.Errorf("SetFPS(%d): FPS() = %d, want %d", tt.fps, got, tt.wantFPS)
		}
	}
}

func TestCamera_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultCameraConfig())

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestConform(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	// Left half black, right half white.
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()
	right := frame.Region(image.Rect(160, 0, 320, 240))
	right.SetTo(gocv.NewScalar(255, 255, 255, 0))
	right.Close()

	conform(&frame, image.Pt(640, 480), true)

	if frame.Cols() != 640 || frame.Rows() != 480 {
		t.Fatalf("size = %dx%d, want 640x480", frame.Cols(), frame.Rows())
	}
	if v := frame.GetVecbAt(240, 20); v[0] != 255 {
		t.Errorf("mirrored left edge = %v, want white", v)
	}
	if v := frame.GetVecbAt(240, 620); v[0] != 0 {
		t.Errorf("mirrored right edge = %v, want black", v)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(CameraConfig{Width: 640, Height: 480})

	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Cols() != 640 || mat.Rows() != 480 {
			t.Errorf("frame is %dx%d, want 640x480", mat.Cols(), mat.Rows())
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
