package display

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

type recorder struct {
	shown  int
	closed bool
	err    error
}

func (r *recorder) Show(frame gocv.Mat) error {
	r.shown++
	return r.err
}

func (r *recorder) Close() error {
	r.closed = true
	return r.err
}

func TestMulti(t *testing.T) {
	quitter := &recorder{err: ErrQuit}
	viewer := &recorder{}
	sink := Multi(quitter, viewer)

	frame := gocv.NewMat()
	defer frame.Close()

	if err := sink.Show(frame); !errors.Is(err, ErrQuit) {
		t.Errorf("Show() error = %v, want ErrQuit", err)
	}
	if viewer.shown != 1 {
		t.Errorf("second sink shown %d frames, want 1", viewer.shown)
	}

	if err := sink.Close(); !errors.Is(err, ErrQuit) {
		t.Errorf("Close() error = %v, want the joined sink error", err)
	}
	if !quitter.closed || !viewer.closed {
		t.Error("expected every sink to be closed")
	}
}

func TestMulti_Empty(t *testing.T) {
	sink := Multi()
	frame := gocv.NewMat()
	defer frame.Close()

	if err := sink.Show(frame); err != nil {
		t.Errorf("Show() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
