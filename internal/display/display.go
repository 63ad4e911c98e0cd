// Package display delivers composited frames to their viewers.
package display

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrQuit is returned by a sink when its viewer asked to stop the program.
var ErrQuit = errors.New("quit requested")

// Sink receives every composited frame. Show must not keep frame past the
// call; sinks that need it later copy what they need.
type Sink interface {
	Show(frame gocv.Mat) error
	Close() error
}

// Window shows frames in a native OpenCV window. Pressing q or Esc in the
// window makes Show return ErrQuit.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays frame and polls the keyboard for 1 ms.
func (w *Window) Show(frame gocv.Mat) error {
	w.win.IMShow(frame)
	switch w.win.WaitKey(1) {
	case 'q', 27:
		return ErrQuit
	}
	return nil
}

// Close closes the window.
func (w *Window) Close() error {
	return w.win.Close()
}

type multi []Sink

// Multi returns a Sink that shows each frame on every sink in order. A
// failing sink does not stop the others; the first error is returned.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Show(frame gocv.Mat) error {
	var first error
	for _, s := range m {
		if err := s.Show(frame); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
