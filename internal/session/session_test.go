package session

import (
	"bytes"
	"encoding/json"
	"image"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gocv.io/x/gocv"

	"github.com/ayusman/airpaint/internal/canvas"
	"github.com/ayusman/airpaint/internal/detector"
	"github.com/ayusman/airpaint/internal/gesture"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// pointingAt returns a drawing hand whose index tip sits on (x, y).
func pointingAt(x, y float64) *detector.HandLandmarks {
	h := detector.SyntheticHand(detector.PosePointing, 0, 0, 60)
	tip := h.Points[detector.IndexTip]
	for i := range h.Points {
		h.Points[i].X += x - tip.X
		h.Points[i].Y += y - tip.Y
	}
	return &h
}

func hand(f detector.Fingers) *detector.HandLandmarks {
	h := detector.SyntheticHand(f, 320, 400, 60)
	return &h
}

func step(t *testing.T, s *Session, want gesture.Gesture, h *detector.HandLandmarks) {
	t.Helper()
	if got := s.Step(h); got.Gesture != want {
		t.Fatalf("Step() = %v, want %v", got.Gesture, want)
	}
}

func TestNew(t *testing.T) {
	t.Run("rejects empty frame", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Width = 0
		if _, err := New(cfg); err == nil {
			t.Error("expected error for zero width")
		}
	})

	t.Run("rejects invalid drawing config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Drawing.Palette = nil
		if _, err := New(cfg); err == nil {
			t.Error("expected error for empty palette")
		}
	})

	t.Run("sessions are independent", func(t *testing.T) {
		a := newTestSession(t)
		b := newTestSession(t)
		if a.ID() == b.ID() {
			t.Error("expected distinct session IDs")
		}

		step(t, a, gesture.Draw, pointingAt(100, 200))
		if len(b.History()) != 0 {
			t.Error("drawing in one session changed the other")
		}
	})
}

func TestSession_DrawClearDraw(t *testing.T) {
	s := newTestSession(t)

	step(t, s, gesture.Draw, pointingAt(100, 200))
	step(t, s, gesture.Draw, pointingAt(300, 250))
	step(t, s, gesture.ClearCanvas, hand(detector.PoseOpenPalm))
	step(t, s, gesture.ClearCanvas, hand(detector.PoseOpenPalm))
	step(t, s, gesture.Draw, pointingAt(500, 300))

	h := s.History()
	if len(h) != 1 {
		t.Fatalf("len(History()) = %d, want 1", len(h))
	}
	if diff := cmp.Diff([]image.Point{{500, 300}}, h[0].Points); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}
	if got := s.CanvasAt(image.Pt(200, 225)); got != [3]uint8{} {
		t.Errorf("cleared segment still on canvas: %v", got)
	}
	if got := s.CanvasAt(image.Pt(500, 300)); got != [3]uint8{0, 0, 255} {
		t.Errorf("pixel at new dot = %v, want red", got)
	}
}

func TestSession_Len(t *testing.T) {
	s := newTestSession(t)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d on a new session", s.Len())
	}

	steps := []struct {
		g    gesture.Gesture
		h    *detector.HandLandmarks
		want int
	}{
		{gesture.Draw, pointingAt(100, 200), 1},
		{gesture.Draw, pointingAt(150, 200), 1},
		{gesture.None, nil, 1},
		{gesture.Draw, pointingAt(300, 300), 2},
		{gesture.Undo, hand(detector.PoseFist), 1},
		{gesture.ClearCanvas, hand(detector.PoseOpenPalm), 0},
	}
	for i, st := range steps {
		step(t, s, st.g, st.h)
		if got := s.Len(); got != st.want {
			t.Errorf("step %d: Len() = %d, want %d", i, got, st.want)
		}
		if got := len(s.History()); got != s.Len() {
			t.Errorf("step %d: Len() = %d disagrees with History() length %d", i, s.Len(), got)
		}
	}
}

func TestSession_UndoRoundTrip(t *testing.T) {
	s := newTestSession(t)

	step(t, s, gesture.Draw, pointingAt(100, 200))
	step(t, s, gesture.Draw, pointingAt(150, 260))
	step(t, s, gesture.None, nil)
	before := s.History()
	beforePixels := s.CanvasBytes()

	step(t, s, gesture.Draw, pointingAt(400, 200))
	step(t, s, gesture.Draw, pointingAt(450, 300))
	step(t, s, gesture.Draw, pointingAt(500, 350))
	step(t, s, gesture.Undo, hand(detector.PoseFist))
	step(t, s, gesture.Undo, hand(detector.PoseFist))

	if diff := cmp.Diff(before, s.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Equal(beforePixels, s.CanvasBytes()) {
		t.Error("canvas after undo differs from canvas before the stroke")
	}
}

func TestSession_CanvasMatchesRebuild(t *testing.T) {
	s := newTestSession(t)

	frames := []*detector.HandLandmarks{
		pointingAt(50, 150), pointingAt(200, 300), nil,
		hand(detector.PoseThumbOnly),
		pointingAt(600, 100), pointingAt(100, 450), pointingAt(620, 460),
		hand(detector.PoseFist), nil,
		pointingAt(320, 120), pointingAt(330, 420),
	}
	for _, h := range frames {
		s.Step(h)
	}

	rebuilt := canvas.New(640, 480)
	defer rebuilt.Close()
	rebuilt.Rebuild(s.History())

	if !bytes.Equal(rebuilt.Bytes(), s.CanvasBytes()) {
		t.Error("session canvas differs from a rebuild of its history")
	}
}

func TestSession_BrushSizeClampsToMin(t *testing.T) {
	s := newTestSession(t)

	// Tips just far enough apart to count as a spread on a small hand.
	h := detector.SyntheticHand(detector.PoseTwo, 320, 400, 20)
	h.Points[detector.IndexTip].X += 0.2 * h.PalmSize()

	step(t, s, gesture.AdjustBrushSize, &h)

	if got, want := s.Snapshot().Radius, DefaultConfig().Drawing.MinBrushRadius; got != want {
		t.Errorf("Radius = %d, want %d", got, want)
	}
}

func TestSession_Snapshot(t *testing.T) {
	s := newTestSession(t)
	step(t, s, gesture.Draw, pointingAt(100, 200))

	snap := s.Snapshot()
	if snap.SessionID != s.ID() || snap.Frame != 1 || snap.Gesture != gesture.Draw || snap.Strokes != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, field := range []string{`"gesture":"draw"`, `"strokes":1`, `"drawing":true`, `"palette":[`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("snapshot JSON %s missing %s", data, field)
		}
	}
}

func TestSession_Render(t *testing.T) {
	s := newTestSession(t)
	step(t, s, gesture.Draw, pointingAt(100, 300))
	step(t, s, gesture.Draw, pointingAt(500, 300))

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 20, 30, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	out, err := s.Render(frame, 30)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	defer out.Close()

	if out.Cols() != 640 || out.Rows() != 480 {
		t.Errorf("Render() size = %dx%d, want 640x480", out.Cols(), out.Rows())
	}
	v := out.GetVecbAt(300, 300)
	if v[0] != 0 || v[1] != 0 || v[2] != 255 {
		t.Errorf("stroke pixel = %v, want red", v)
	}
}
