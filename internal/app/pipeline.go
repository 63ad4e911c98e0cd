package app

import (
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airpaint/internal/detector"
	"github.com/ayusman/airpaint/internal/gesture"
	"github.com/ayusman/airpaint/internal/store"
)

// tick processes one frame.
//
// Pipeline logic:
//  1. Read a frame (already mirrored and sized by the camera).
//  2. In idle mode, run the motion gate; motion switches to active mode.
//  3. Detect hands and classify the first one.
//  4. Apply the gesture to the session and render.
//  5. 2s without a hand switches back to idle mode.
func (a *App) tick(now time.Time) error {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	var hand *detector.HandLandmarks
	if a.IsEnabled() && a.shouldDetect(frame, now) {
		hands, err := a.detector.Detect(frame)
		if err != nil {
			return fmt.Errorf("detect hands: %w", err)
		}
		hand = detector.First(hands)
	}

	before := a.session.Len()
	result := a.session.Step(hand)
	a.tally(result.Gesture, before, a.session.Len())

	if hand != nil {
		a.mode.wake(now)
	} else {
		a.mode.check(now)
	}

	if result.Gesture != a.last {
		a.last = result.Gesture
		if a.config.OnGesture != nil {
			a.config.OnGesture(result.Gesture)
		}
	}

	if err := a.show(frame, now); err != nil {
		return err
	}

	if a.config.Publisher != nil {
		if err := a.config.Publisher.Publish(a.session.Snapshot()); err != nil {
			log.Printf("Failed to publish state: %v", err)
		}
	}
	return nil
}

// shouldDetect reports whether this frame goes to the detector. Active mode
// always detects; in idle mode motion wakes the loop up first.
func (a *App) shouldDetect(frame *gocv.Mat, now time.Time) bool {
	if a.mode.active {
		return true
	}
	if moved, _ := a.motion.Detect(frame); !moved {
		return false
	}
	a.mode.wake(now)
	return true
}

// tally updates the session record's counters from one step. A stroke
// counts when the history grows, an undo when it shrinks by one, a clear
// when it empties.
func (a *App) tally(g gesture.Gesture, before, after int) {
	rec := a.record
	changed := true
	switch {
	case after > before:
		rec.Strokes++
	case g == gesture.Undo && after < before:
		rec.Undos++
	case g == gesture.ClearCanvas && before > 0 && after == 0:
		rec.Clears++
	default:
		changed = false
	}
	if changed {
		a.persist(rec)
	}
}

func (a *App) persist(rec *store.SessionRecord) {
	if a.config.Store == nil {
		return
	}
	if err := a.config.Store.Sessions().Update(rec); err != nil {
		log.Printf("Failed to update session %s: %v", rec.ID, err)
	}
}

// mode tracks the idle/active frame rate state.
type mode struct {
	idleFPS   int
	activeFPS int
	active    bool
	lastHand  time.Time
}

// newMode starts active so the first hand is not gated on motion.
func newMode(idleFPS, activeFPS int, now time.Time) mode {
	return mode{idleFPS: idleFPS, activeFPS: activeFPS, active: true, lastHand: now}
}

func (m *mode) wake(now time.Time) {
	m.lastHand = now
	m.active = true
}

func (m *mode) check(now time.Time) {
	if m.active && now.Sub(m.lastHand) > IdleTimeout {
		m.active = false
	}
}

func (m *mode) fps() int {
	if m.active {
		return m.activeFPS
	}
	return m.idleFPS
}

func (m *mode) interval() time.Duration {
	return time.Second / time.Duration(m.fps())
}

// fpsMeter is an exponentially smoothed frame rate.
type fpsMeter struct {
	last time.Time
	rate float64
}

func (f *fpsMeter) tick(now time.Time) float64 {
	if !f.last.IsZero() {
		if dt := now.Sub(f.last).Seconds(); dt > 0 {
			if f.rate == 0 {
				f.rate = 1 / dt
			} else {
				f.rate = 0.9*f.rate + 0.1/dt
			}
		}
	}
	f.last = now
	return f.rate
}
