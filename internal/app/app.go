// Package app runs the airpaint frame loop: capture, hand tracking, gesture
// classification, drawing and composition, then display.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/airpaint/internal/capture"
	"github.com/ayusman/airpaint/internal/config"
	"github.com/ayusman/airpaint/internal/detector"
	"github.com/ayusman/airpaint/internal/display"
	"github.com/ayusman/airpaint/internal/gesture"
	"github.com/ayusman/airpaint/internal/session"
	"github.com/ayusman/airpaint/internal/store"
)

// IdleTimeout is how long the loop waits without a hand before dropping to
// the idle frame rate.
const IdleTimeout = 2 * time.Second

// Publisher receives a session snapshot after every processed frame.
type Publisher interface {
	Publish(v any) error
}

// Config holds the application's collaborators. Camera and Detector are
// built from Settings when nil. Run closes Camera, Detector and Sink.
type Config struct {
	Settings  config.Config
	Camera    capture.Camera
	Detector  detector.Detector
	Sink      display.Sink
	Publisher Publisher
	Store     *store.Store

	// OnGesture is called from the loop whenever the classified gesture
	// changes.
	OnGesture func(g gesture.Gesture)
}

// App owns one painting session and the loop that drives it.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	detector detector.Detector
	sink     display.Sink

	mu      sync.RWMutex
	enabled bool

	session *session.Session
	record  *store.SessionRecord
	last    gesture.Gesture
	mode    mode
	fps     fpsMeter
}

// New creates an App. If no detector is given, the MediaPipe bridge is tried
// first and the mock detector is used when it is unavailable.
func New(cfg Config) (*App, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		config:   cfg,
		camera:   cfg.Camera,
		motion:   capture.NewMotionDetector(cfg.Settings.MotionThreshold),
		detector: cfg.Detector,
		sink:     cfg.Sink,
		enabled:  true,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(capture.CameraConfig{
			DeviceID: cfg.Settings.CameraDevice,
			Width:    cfg.Settings.Width,
			Height:   cfg.Settings.Height,
			FPS:      cfg.Settings.ActiveFPS,
			Mirror:   cfg.Settings.Mirror,
		})
	}

	if a.detector == nil {
		if mp, err := detector.NewMediaPipeDetector(cfg.Settings.Detector()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	if a.sink == nil {
		a.sink = display.Multi()
	}

	return a, nil
}

// SetEnabled turns gesture processing on or off. Frames keep flowing to the
// sinks while disabled.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether gesture processing is on.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Run opens the camera and processes frames until ctx is cancelled or a sink
// asks to quit. Camera and detector failures end the loop with an error.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
		a.motion.Close()
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}()

	if err := a.begin(); err != nil {
		return err
	}
	defer a.end()

	a.mode = newMode(a.config.Settings.IdleFPS, a.config.Settings.ActiveFPS, time.Now())
	a.camera.SetFPS(a.mode.fps())

	ticker := time.NewTicker(a.mode.interval())
	defer ticker.Stop()

	log.Printf("Painting session %s started", a.session.ID())
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			wasActive := a.mode.active
			if err := a.tick(now); err != nil {
				if errors.Is(err, display.ErrQuit) {
					return nil
				}
				return err
			}
			if a.mode.active != wasActive {
				a.camera.SetFPS(a.mode.fps())
				ticker.Reset(a.mode.interval())
				if a.mode.active {
					log.Println("Switched to active mode")
				} else {
					a.motion.Reset()
					log.Println("Switched to idle mode")
				}
			}
		}
	}
}

// begin creates the session and its log record.
func (a *App) begin() error {
	sess, err := session.New(a.config.Settings.Session())
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	a.session = sess
	a.record = &store.SessionRecord{
		ID:     sess.ID(),
		Width:  a.config.Settings.Width,
		Height: a.config.Settings.Height,
	}
	if a.config.Store != nil {
		if err := a.config.Store.Sessions().Start(a.record); err != nil {
			log.Printf("Failed to record session start: %v", err)
		}
	}
	return nil
}

// end closes the session and finishes its log record.
func (a *App) end() {
	if a.config.Store != nil {
		if err := a.config.Store.Sessions().Finish(a.record); err != nil {
			log.Printf("Failed to record session end: %v", err)
		}
	}
	if err := a.sink.Close(); err != nil {
		log.Printf("Error closing display: %v", err)
	}
	a.session.Close()
	log.Printf("Painting session %s ended: %d strokes, %d undos, %d clears",
		a.record.ID, a.record.Strokes, a.record.Undos, a.record.Clears)
}

// show renders the current session state over frame and hands it to the sink.
func (a *App) show(frame *gocv.Mat, now time.Time) error {
	out, err := a.session.Render(*frame, a.fps.tick(now))
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	defer out.Close()
	return a.sink.Show(out)
}
