package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func solid(v float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(v, v, v, 0), 720, 1280, gocv.MatTypeCV8UC3)
}

func TestNewMotionDetector(t *testing.T) {
	for _, threshold := range []float64{0.5, 1.0, 5.0} {
		md := NewMotionDetector(threshold)
		if md.threshold != threshold {
			t.Errorf("threshold = %f, want %f", md.threshold, threshold)
		}
		if md.primed {
			t.Error("motion detector should not be primed initially")
		}
		md.Close()
	}
}

func TestMotionDetector_Detect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	tests := []struct {
		name       string
		first      float64
		second     float64
		threshold  float64
		want       bool
		minPercent float64
	}{
		{name: "identical frames", first: 0, second: 0, threshold: 1, want: false},
		{name: "black to white", first: 0, second: 255, threshold: 1, want: true, minPercent: 50},
		{name: "small brightness drift", first: 100, second: 110, threshold: 1, want: false},
		{name: "change below a high threshold", first: 0, second: 255, threshold: 100, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			a, b := solid(tt.first), solid(tt.second)
			defer a.Close()
			defer b.Close()

			if detected, pct := md.Detect(&a); detected || pct != 0 {
				t.Errorf("priming frame = %v, %f, want false, 0", detected, pct)
			}
			detected, pct := md.Detect(&b)
			if detected != tt.want {
				t.Errorf("Detect() = %v (%.1f%%), want %v", detected, pct, tt.want)
			}
			if pct < tt.minPercent {
				t.Errorf("changed = %.1f%%, want at least %.1f%%", pct, tt.minPercent)
			}
		})
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black, white := solid(0), solid(255)
	defer black.Close()
	defer white.Close()

	md.Detect(&black)
	if !md.primed {
		t.Fatal("detector should be primed after first Detect")
	}

	md.Reset()
	if md.primed || !md.prev.Empty() {
		t.Error("Reset should drop the previous frame")
	}

	// The next frame primes again instead of comparing against black.
	if detected, _ := md.Detect(&white); detected {
		t.Error("first frame after Reset should not detect motion")
	}
}

func TestMotionDetector_EmptyFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if detected, pct := md.Detect(&empty); detected || pct != 0 {
		t.Errorf("Detect(empty) = %v, %f", detected, pct)
	}
	if detected, _ := md.Detect(nil); detected {
		t.Error("Detect(nil) should not detect motion")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0 after SetThreshold", md.threshold)
	}

	md.SetThreshold(-1.0)
	if md.threshold != 5.0 {
		t.Errorf("negative threshold should be ignored, got %f", md.threshold)
	}
}

func TestMotionDetector_CloseTwice(t *testing.T) {
	md := NewMotionDetector(1.0)
	md.Close()
	md.Close()
}
