package app

import (
	"testing"
	"time"

	"github.com/ayusman/airpaint/internal/config"
	"github.com/ayusman/airpaint/internal/gesture"
	"github.com/ayusman/airpaint/internal/store"
)

func TestMode(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newMode(5, 15, start)

	if !m.active || m.fps() != 15 {
		t.Fatalf("new mode active=%v fps=%d, want active at 15", m.active, m.fps())
	}
	if m.interval() != time.Second/15 {
		t.Errorf("interval = %v", m.interval())
	}

	m.check(start.Add(IdleTimeout))
	if !m.active {
		t.Error("went idle at exactly the timeout")
	}

	m.check(start.Add(IdleTimeout + time.Millisecond))
	if m.active || m.fps() != 5 {
		t.Errorf("after timeout active=%v fps=%d, want idle at 5", m.active, m.fps())
	}

	m.wake(start.Add(3 * time.Second))
	if !m.active {
		t.Error("wake did not return to active mode")
	}
	m.check(start.Add(4 * time.Second))
	if !m.active {
		t.Error("went idle before the timeout since the last wake")
	}
}

func TestFPSMeter(t *testing.T) {
	var f fpsMeter
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	if got := f.tick(now); got != 0 {
		t.Errorf("first tick = %v, want 0", got)
	}
	for i := 1; i <= 50; i++ {
		f.tick(now.Add(time.Duration(i) * 100 * time.Millisecond))
	}
	if got := f.rate; got < 9.9 || got > 10.1 {
		t.Errorf("rate = %v, want about 10", got)
	}
}

func TestTally(t *testing.T) {
	tests := []struct {
		name          string
		g             gesture.Gesture
		before, after int
		want          store.SessionRecord
	}{
		{name: "new stroke", g: gesture.Draw, before: 2, after: 3, want: store.SessionRecord{Strokes: 1}},
		{name: "extend stroke", g: gesture.Draw, before: 3, after: 3},
		{name: "undo", g: gesture.Undo, before: 3, after: 2, want: store.SessionRecord{Undos: 1}},
		{name: "undo on empty", g: gesture.Undo, before: 0, after: 0},
		{name: "clear", g: gesture.ClearCanvas, before: 4, after: 0, want: store.SessionRecord{Clears: 1}},
		{name: "clear when empty", g: gesture.ClearCanvas, before: 0, after: 0},
		{name: "no hand", g: gesture.None, before: 1, after: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &App{config: Config{Settings: config.Default()}, record: &store.SessionRecord{}}
			a.tally(tt.g, tt.before, tt.after)
			got := *a.record
			if got.Strokes != tt.want.Strokes || got.Undos != tt.want.Undos || got.Clears != tt.want.Clears {
				t.Errorf("counters = %+v, want %+v", got, tt.want)
			}
		})
	}
}
